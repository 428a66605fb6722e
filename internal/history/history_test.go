/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package history

import (
    "testing"

    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

func event(fieldID, to, ts string) domain.ChangeEvent {
    return domain.ChangeEvent{FieldID: fieldID, FieldOriginal: fieldID, To: to, Timestamp: ts}
}

func TestReconcileBasicTimeline(t *testing.T) {
    events := []domain.ChangeEvent{
        event("customfield_11067", "2024-12-25", "2024-12-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-10-01", "2024-10-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-11-15", "2024-11-01T10:00:00.000+0000"),
        event("status", "In Progress", "2024-10-15T10:00:00.000+0000"),
    }
    got := Reconcile("2024-12-25T00:00:00.000+0000", events, "customfield_11067")

    if got.Current != "25/Dec/2024" { t.Errorf("current = %q", got.Current) }
    // Newest first, current value excluded, other-field events ignored.
    want := []string{"15/Nov/2024", "01/Oct/2024"}
    if len(got.History) != 2 || got.History[0] != want[0] || got.History[1] != want[1] {
        t.Errorf("history = %v, want %v", got.History, want)
    }
    if got.HistoryRaw[0] != "2024-11-15" || got.HistoryRaw[1] != "2024-10-01" {
        t.Errorf("history_raw = %v", got.HistoryRaw)
    }
    if got.ChangeCount != 2 { t.Errorf("change_count = %d, want 2", got.ChangeCount) }
    // Slip from the earliest value (2024-10-01) to current (2024-12-25): 85
    // days later.
    if got.WeekSlip.Weeks != 12 || got.WeekSlip.Color != domain.SlipRed {
        t.Errorf("week_slip = %+v", got.WeekSlip)
    }
}

// The current value must be excluded regardless of which supported format
// the changelog recorded it in.
func TestReconcileExcludesCurrentAcrossFormats(t *testing.T) {
    for _, changelogForm := range []string{
        "2024-12-25",
        "2024-12-25T00:00:00.000+0000",
        "25/12/2024",
        "25/Dec/2024",
        "25/Dec/24",
    } {
        events := []domain.ChangeEvent{
            event("customfield_11067", "2024-11-15", "2024-11-01T10:00:00.000+0000"),
            event("customfield_11067", changelogForm, "2024-12-01T10:00:00.000+0000"),
        }
        got := Reconcile("2024-12-25T00:00:00.000+0000", events, "customfield_11067")
        if got.ChangeCount != 1 || len(got.History) != 1 {
            t.Errorf("changelog form %q: history = %v, want only the November value", changelogForm, got.History)
        }
    }
}

// A revert A -> B -> A with current value A leaves only the transition to B
// in the history: both A events match the current value and are excluded.
func TestReconcileRevertCountsSurvivors(t *testing.T) {
    events := []domain.ChangeEvent{
        event("customfield_11067", "2024-10-01", "2024-09-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-11-15", "2024-10-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-10-01", "2024-11-01T10:00:00.000+0000"),
    }
    got := Reconcile("2024-10-01", events, "customfield_11067")
    if got.ChangeCount != 1 { t.Errorf("change_count = %d, want 1", got.ChangeCount) }
    if len(got.History) != 1 || got.History[0] != "15/Nov/2024" {
        t.Errorf("history = %v, want only 15/Nov/2024", got.History)
    }
    // The revert means no net movement: slip runs from the earliest value,
    // which equals current.
    if got.WeekSlip.Weeks != 0 || got.WeekSlip.Color != domain.SlipGray {
        t.Errorf("week_slip = %+v, want zero/gray", got.WeekSlip)
    }
}

func TestReconcileDeduplicatesByDay(t *testing.T) {
    events := []domain.ChangeEvent{
        event("customfield_11067", "2024-11-15", "2024-10-01T10:00:00.000+0000"),
        event("customfield_11067", "15/11/2024", "2024-10-15T10:00:00.000+0000"),
        event("customfield_11067", "2024-11-15T00:00:00.000+0000", "2024-11-01T10:00:00.000+0000"),
    }
    got := Reconcile("2024-12-25", events, "customfield_11067")
    if got.ChangeCount != 1 { t.Errorf("change_count = %d, want 1 after dedupe", got.ChangeCount) }
    if len(got.HistoryRaw) != 1 || got.HistoryRaw[0] != "2024-11-15" {
        t.Errorf("first occurrence should win: %v", got.HistoryRaw)
    }
}

func TestReconcileEmptyHistory(t *testing.T) {
    got := Reconcile("2024-12-25", nil, "customfield_11067")
    if got.ChangeCount != 0 { t.Errorf("change_count = %d", got.ChangeCount) }
    if len(got.History) != 0 || got.History == nil {
        t.Errorf("history should be empty non-nil, got %v", got.History)
    }
    want := domain.SlipResult{Weeks: 0, Display: "0 weeks", Color: domain.SlipGray}
    if got.WeekSlip != want { t.Errorf("week_slip = %+v, want %+v", got.WeekSlip, want) }
}

func TestReconcileIgnoresEmptyToValues(t *testing.T) {
    events := []domain.ChangeEvent{
        event("customfield_11067", "", "2024-09-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-11-15", "2024-10-01T10:00:00.000+0000"),
    }
    got := Reconcile("2024-12-25", events, "customfield_11067")
    if got.ChangeCount != 1 { t.Errorf("change_count = %d, want 1", got.ChangeCount) }
}

// Events arriving with numeric-only field IDs still match a canonical
// customfield target.
func TestReconcileMatchesNumericFieldID(t *testing.T) {
    events := []domain.ChangeEvent{
        {FieldID: "customfield_11067", FieldOriginal: "11067", To: "2024-11-15", Timestamp: "2024-10-01T10:00:00.000+0000"},
    }
    got := Reconcile("2024-12-25", events, "11067")
    if got.ChangeCount != 1 { t.Errorf("numeric target did not match: %+v", got) }
}

func TestReconcileSlipFromEarliestPreExclusion(t *testing.T) {
    // The earliest event matches current and is excluded from the displayed
    // history, but the slip still runs from it.
    events := []domain.ChangeEvent{
        event("customfield_11067", "2024-10-01", "2024-09-01T10:00:00.000+0000"),
        event("customfield_11067", "2024-12-25", "2024-10-01T10:00:00.000+0000"),
    }
    got := Reconcile("2024-10-01", events, "customfield_11067")
    if got.WeekSlip.Weeks != 0 { t.Errorf("weeks = %d, want 0", got.WeekSlip.Weeks) }
    if len(got.History) != 1 || got.History[0] != "25/Dec/2024" {
        t.Errorf("history = %v", got.History)
    }
}
