/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package slip

import (
    "testing"
    "time"

    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

func TestDifferenceLabelDays(t *testing.T) {
    cases := []struct {
        orig, curr string
        label, unit string
    }{
        {"2025-01-01", "2025-01-01", "0 days", "days"},
        {"2025-01-01", "2025-01-02", "+1 day", "days"},
        {"2025-01-02", "2025-01-01", "-1 day", "days"},
        {"2025-01-01", "2025-01-04", "+3 days", "days"},
        {"2025-01-01", "2025-01-07", "+6 days", "days"},
    }
    for _, c := range cases {
        label, unit := DifferenceLabel(c.orig, c.curr)
        if label != c.label || unit != c.unit {
            t.Errorf("DifferenceLabel(%s, %s) = (%q, %q), want (%q, %q)",
                c.orig, c.curr, label, unit, c.label, c.unit)
        }
    }
}

func TestDifferenceLabelWeekBands(t *testing.T) {
    cases := []struct {
        days  int
        label string
    }{
        {7, "+1 week"},
        {8, "+1 week"},
        {9, "+1.5 weeks"},
        {12, "+1.5 weeks"},
        {13, "+2 weeks"},
        {15, "+2 weeks"},
        {16, "+2.5 weeks"},
        {19, "+2.5 weeks"},
        {20, "+3 weeks"},
        {22, "+3 weeks"},
        {23, "+3.5 weeks"},
        {26, "+3.5 weeks"},
        {27, "+4 weeks"},
        {70, "+10 weeks"},
    }
    for _, c := range cases {
        curr := addDays(t, "2025-01-01", c.days)
        label, unit := DifferenceLabel("2025-01-01", curr)
        if label != c.label || unit != "weeks" {
            t.Errorf("%d days: got (%q, %q), want (%q, weeks)", c.days, label, unit, c.label)
        }
    }
}

// The label is sign-symmetric: swapping the two dates flips the sign and
// nothing else.
func TestDifferenceLabelSignSymmetry(t *testing.T) {
    for _, days := range []int{1, 6, 7, 10, 13, 25} {
        curr := addDays(t, "2025-03-01", days)
        fwd, _ := DifferenceLabel("2025-03-01", curr)
        back, _ := DifferenceLabel(curr, "2025-03-01")
        if fwd[0] != '+' || back[0] != '-' || fwd[1:] != back[1:] {
            t.Errorf("%d days: forward %q vs backward %q", days, fwd, back)
        }
    }
}

func TestDifferenceLabelUnparsable(t *testing.T) {
    for _, pair := range [][2]string{
        {"", "2025-01-01"},
        {"2025-01-01", ""},
        {"garbage", "2025-01-01"},
        {"2025-01-01", "garbage"},
    } {
        label, unit := DifferenceLabel(pair[0], pair[1])
        if label != "N/A" || unit != "unknown" {
            t.Errorf("DifferenceLabel(%q, %q) = (%q, %q), want (N/A, unknown)",
                pair[0], pair[1], label, unit)
        }
    }
}

func TestWeeksRounding(t *testing.T) {
    cases := []struct {
        days, weeks int
    }{
        {0, 0}, {3, 0}, {4, 1}, {7, 1}, {10, 1}, {11, 2}, {14, 2}, {-7, -1}, {-10, -1},
    }
    for _, c := range cases {
        curr := addDays(t, "2025-01-01", c.days)
        if got := Weeks("2025-01-01", curr); got != c.weeks {
            t.Errorf("Weeks over %d days = %d, want %d", c.days, got, c.weeks)
        }
    }
    if Weeks("junk", "2025-01-01") != 0 {
        t.Error("unparsable input should yield 0 weeks")
    }
}

func TestColor(t *testing.T) {
    if Color(3) != domain.SlipRed { t.Error("positive slip should be red") }
    if Color(-1) != domain.SlipGreen { t.Error("negative slip should be green") }
    if Color(0) != domain.SlipGray { t.Error("zero slip should be gray") }
}

func TestCompute(t *testing.T) {
    got := Compute("2024-12-01", "2024-12-22")
    want := domain.SlipResult{Weeks: 3, Display: "+3 weeks", Color: domain.SlipRed}
    if got != want { t.Errorf("Compute = %+v, want %+v", got, want) }
}

// A non-zero delta must never label as "0 weeks"; mixed units are how
// sub-week slips stay visible.
func TestNonZeroDeltaNeverZeroWeeks(t *testing.T) {
    for days := 1; days <= 60; days++ {
        curr := addDays(t, "2025-01-01", days)
        label, _ := DifferenceLabel("2025-01-01", curr)
        if label == "0 weeks" || label == "0 days" {
            t.Errorf("%d days collapsed to %q", days, label)
        }
    }
}

func addDays(t *testing.T, base string, days int) string {
    t.Helper()
    bt, err := time.Parse("2006-01-02", base)
    if err != nil { t.Fatalf("bad base %q: %v", base, err) }
    return bt.AddDate(0, 0, days).Format("2006-01-02")
}
