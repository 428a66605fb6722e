/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package dates

import (
    "errors"
    "fmt"
    "regexp"
    "strconv"
    "strings"
    "time"
)

// ErrUnparsable is returned by Parse when none of the supported formats match.
var ErrUnparsable = errors.New("dates: unparsable date string")

// layouts are tried in order. The set is exactly what this JIRA deployment
// emits plus our own display format. DD/MM wins over MM/DD when both could
// match; the order is part of the contract.
var layouts = []string{
    "2006-01-02T15:04:05.000-0700", // ISO with timezone and fractional seconds
    "2006-01-02T15:04:05.999999999-0700",
    "2006-01-02T15:04:05.999999999Z07:00",
    "2006-01-02T15:04:05-0700", // ISO with timezone
    "2006-01-02T15:04:05Z07:00",
    "2006-01-02T15:04:05", // ISO without timezone
    "2006-01-02",
    "02/01/2006", // DD/MM/YYYY
    "01/02/2006", // MM/DD/YYYY
    "02/Jan/2006", // DD/Mon/YYYY (display format)
}

var monAbbrevRe = regexp.MustCompile(`^(\d{1,2})/([A-Za-z]{3})/(\d{2,4})$`)

var monByAbbrev = map[string]time.Month{
    "jan": time.January, "feb": time.February, "mar": time.March,
    "apr": time.April, "may": time.May, "jun": time.June,
    "jul": time.July, "aug": time.August, "sep": time.September,
    "oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse converts one of the supported date strings into a timezone-naive
// calendar instant. The time-of-day and zone of the source are irrelevant for
// slip math; only the calendar day carries meaning.
func Parse(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" { return time.Time{}, ErrUnparsable }
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil { return t, nil }
    }
    // Manual fallback for DD/Mon/YYYY and DD/Mon/YY with arbitrary month
    // casing ("13/jun/25"), which time.Parse rejects.
    if m := monAbbrevRe.FindStringSubmatch(s); m != nil {
        day, _ := strconv.Atoi(m[1])
        mon, ok := monByAbbrev[strings.ToLower(m[2])]
        if !ok { return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s) }
        year, _ := strconv.Atoi(m[3])
        if len(m[3]) == 2 {
            // Two-digit years are windowed: <50 -> 20xx, else 19xx.
            if year < 50 { year += 2000 } else { year += 1900 }
        }
        t := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
        if t.Day() != day || t.Month() != mon {
            return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
        }
        return t, nil
    }
    return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsable, s)
}

// NormalizeForComparison reduces a date string to its YYYY-MM-DD comparison
// key. Two strings naming the same calendar day under different source
// formats normalize to equal keys; history reconciliation leans on this to
// exclude the current value. Returns "" when the string cannot be parsed.
func NormalizeForComparison(s string) string {
    t, err := Parse(s)
    if err != nil { return "" }
    return t.Format("2006-01-02")
}

// FormatDisplay renders a date string in the display format dd/Mmm/yyyy
// (e.g. 15/Jan/2026). The original string is returned unchanged when it
// cannot be parsed, so callers never lose the raw value.
func FormatDisplay(s string) string {
    if strings.TrimSpace(s) == "" { return "" }
    t, err := Parse(s)
    if err != nil { return s }
    return t.Format("02/Jan/2006")
}
