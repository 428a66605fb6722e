/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package dates

import "testing"

func TestParseSupportedFormats(t *testing.T) {
    cases := []struct {
        in   string
        want string // comparison key
    }{
        {"2024-12-25T10:30:00.000+0000", "2024-12-25"},
        {"2024-12-25T10:30:00.123456+0000", "2024-12-25"},
        {"2024-12-25T10:30:00.1+0530", "2024-12-25"},
        {"2024-12-25T10:30:00+0000", "2024-12-25"},
        {"2024-12-25T10:30:00", "2024-12-25"},
        {"2024-12-25", "2024-12-25"},
        {"25/12/2024", "2024-12-25"},
        {"12/25/2024", "2024-12-25"},
        {"25/Dec/2024", "2024-12-25"},
        {"25/Dec/24", "2024-12-25"},
        {"13/jun/25", "2025-06-13"},
        {"13/JUN/2025", "2025-06-13"},
        {" 2024-12-25 ", "2024-12-25"},
    }
    for _, c := range cases {
        got, err := Parse(c.in)
        if err != nil { t.Fatalf("Parse(%q): %v", c.in, err) }
        if key := got.Format("2006-01-02"); key != c.want {
            t.Errorf("Parse(%q) = %s, want %s", c.in, key, c.want)
        }
    }
}

func TestParseRejectsGarbage(t *testing.T) {
    for _, in := range []string{"", "not a date", "99/Zzz/2024", "32/Jan/2024", "2024-13-45"} {
        if _, err := Parse(in); err == nil {
            t.Errorf("Parse(%q) succeeded, want error", in)
        }
    }
}

func TestTwoDigitYearWindow(t *testing.T) {
    cases := map[string]string{
        "01/Jan/49": "2049-01-01",
        "01/Jan/00": "2000-01-01",
        "01/Jan/50": "1950-01-01",
        "01/Jan/99": "1999-01-01",
    }
    for in, want := range cases {
        if got := NormalizeForComparison(in); got != want {
            t.Errorf("NormalizeForComparison(%q) = %q, want %q", in, got, want)
        }
    }
}

// Same calendar day under any two supported formats must share a key; the
// reconciliation engine's current-date exclusion depends on it.
func TestNormalizeForComparisonAgreesAcrossFormats(t *testing.T) {
    same := []string{
        "2025-06-13T00:00:00.000+0000",
        "2025-06-13T00:00:00",
        "2025-06-13",
        "13/06/2025",
        "13/Jun/2025",
        "13/Jun/25",
    }
    want := NormalizeForComparison(same[0])
    if want == "" { t.Fatal("reference key empty") }
    for _, s := range same[1:] {
        if got := NormalizeForComparison(s); got != want {
            t.Errorf("NormalizeForComparison(%q) = %q, want %q", s, got, want)
        }
    }
    if NormalizeForComparison("junk") != "" {
        t.Error("unparsable input should yield empty key")
    }
}

func TestFormatDisplay(t *testing.T) {
    cases := map[string]string{
        "2026-01-15":                    "15/Jan/2026",
        "2024-12-25T10:30:00.000+0000":  "25/Dec/2024",
        "13/Jun/25":                     "13/Jun/2025",
        "not-a-date":                    "not-a-date", // unchanged on failure
        "":                              "",
    }
    for in, want := range cases {
        if got := FormatDisplay(in); got != want {
            t.Errorf("FormatDisplay(%q) = %q, want %q", in, got, want)
        }
    }
}
