/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package slip

import (
    "fmt"
    "math"
    "time"

    "github.com/ntnxnam/ndb-date-mover/internal/dates"
    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

// DifferenceLabel renders the delta between two date strings for display.
// Deltas under a week read as days ("+3 days"), a week or more as banded
// weeks ("+1.5 weeks"). The second return is the unit: "days", "weeks", or
// "unknown" when either input fails to parse, in which case the label is
// "N/A". Positive means the current date moved later than the original.
func DifferenceLabel(original, current string) (string, string) {
    days, ok := dayDelta(original, current)
    if !ok { return "N/A", "unknown" }

    sign := "+"
    if days < 0 { sign = "-" }
    abs := days
    if abs < 0 { abs = -abs }

    if abs < 7 {
        switch abs {
        case 0:
            return "0 days", "days"
        case 1:
            return sign + "1 day", "days"
        default:
            return fmt.Sprintf("%s%d days", sign, abs), "days"
        }
    }

    w := bandedWeeks(abs)
    if w == 1 { return sign + "1 week", "weeks" }
    if w == math.Trunc(w) {
        return fmt.Sprintf("%s%d weeks", sign, int(w)), "weeks"
    }
    return fmt.Sprintf("%s%.1f weeks", sign, w), "weeks"
}

// Weeks is the integer week count round(days/7), kept alongside the banded
// label because sorting and coloring key off it. Returns 0 when either date
// fails to parse.
func Weeks(original, current string) int {
    days, ok := dayDelta(original, current)
    if !ok { return 0 }
    return int(math.Round(float64(days) / 7))
}

// Color maps an integer week slip to its display color. Positive slips are
// delays (red), negative ones mean the date moved earlier (green).
func Color(weeks int) domain.SlipColor {
    if weeks > 0 { return domain.SlipRed }
    if weeks < 0 { return domain.SlipGreen }
    return domain.SlipGray
}

// Compute bundles the integer weeks, display label, and color for one
// original/current pair.
func Compute(original, current string) domain.SlipResult {
    label, _ := DifferenceLabel(original, current)
    w := Weeks(original, current)
    return domain.SlipResult{Weeks: w, Display: label, Color: Color(w)}
}

func dayDelta(original, current string) (int, bool) {
    if original == "" || current == "" { return 0, false }
    orig, err := dates.Parse(original)
    if err != nil { return 0, false }
    curr, err := dates.Parse(current)
    if err != nil { return 0, false }
    // Diff on the calendar day alone so time-of-day and zone never shift
    // the bucket a delta lands in.
    od := time.Date(orig.Year(), orig.Month(), orig.Day(), 0, 0, 0, 0, time.UTC)
    cd := time.Date(curr.Year(), curr.Month(), curr.Day(), 0, 0, 0, 0, time.UTC)
    return int(cd.Sub(od).Hours() / 24), true
}

// bandedWeeks maps an absolute day count of 7 or more to a half-week band.
// For integer N >= 2 the band [7N-1, 7N+1] reads as N weeks and
// [7N+2, 7(N+1)-2] as N.5 weeks; 7 or 8 days is always 1 week. Day counts
// that land between bands fall back to rounding to the nearest half week.
func bandedWeeks(days int) float64 {
    if days < 7 { return 0 }
    if days <= 8 { return 1 }

    exact := float64(days) / 7
    n := days / 7

    if n*7-1 <= days && days <= n*7+1 { return float64(n) }
    if n*7+2 <= days && days <= (n+1)*7-2 { return float64(n) + 0.5 }

    return math.Round(exact*2) / 2
}
