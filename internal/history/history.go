/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */

// Package history reconstructs the timeline of a tracked date field from an
// issue changelog: it orders the raw change events, drops the one matching
// the field's current value, deduplicates, and computes the schedule slip
// from the earliest recorded value.
package history

import (
    "sort"
    "strings"

    "github.com/ntnxnam/ndb-date-mover/internal/adapters/jira"
    "github.com/ntnxnam/ndb-date-mover/internal/dates"
    "github.com/ntnxnam/ndb-date-mover/internal/domain"
    "github.com/ntnxnam/ndb-date-mover/internal/slip"
)

// datedEvent is one surviving (value, timestamp) pair in chronological order.
type datedEvent struct {
    value     string
    timestamp string
}

// Reconcile builds the field history for one issue/field pair. Events are
// filtered to the target field, ordered oldest-first, stripped of the event
// matching the current value, deduplicated by calendar day (first occurrence
// wins), then reversed so the most recent historical change comes first.
// The slip runs from the earliest recorded value to the current one.
func Reconcile(currentRaw string, events []domain.ChangeEvent, fieldID string) domain.FieldHistory {
    out := domain.FieldHistory{
        Current:    dates.FormatDisplay(currentRaw),
        CurrentRaw: currentRaw,
        History:    []string{},
        HistoryRaw: []string{},
    }

    chronological := extractDated(events, fieldID)
    if len(chronological) == 0 {
        out.WeekSlip = domain.SlipResult{Weeks: 0, Display: "0 weeks", Color: domain.SlipGray}
        return out
    }

    currentKey := dates.NormalizeForComparison(currentRaw)
    currentTrimmed := strings.TrimSpace(currentRaw)
    seen := map[string]bool{}

    for _, ev := range chronological {
        if isCurrent(ev.value, currentTrimmed, currentKey) { continue }
        key := dates.NormalizeForComparison(ev.value)
        if key == "" { key = strings.TrimSpace(ev.value) }
        if seen[key] { continue }
        seen[key] = true
        out.History = append(out.History, dates.FormatDisplay(ev.value))
        out.HistoryRaw = append(out.HistoryRaw, ev.value)
    }

    reverse(out.History)
    reverse(out.HistoryRaw)
    out.ChangeCount = len(out.History)

    // Slip is measured from the earliest value the field ever held, before
    // any exclusion, against the current value.
    out.WeekSlip = slip.Compute(chronological[0].value, currentRaw)
    return out
}

// extractDated keeps events for the target field with a non-empty "to" value
// and sorts them oldest-first by timestamp. Timestamps are ISO strings, so
// lexical order is chronological order.
func extractDated(events []domain.ChangeEvent, fieldID string) []datedEvent {
    var dated []datedEvent
    for _, ev := range events {
        if !jira.MatchesField(ev.FieldID, ev.FieldOriginal, fieldID) { continue }
        if ev.To == "" { continue }
        dated = append(dated, datedEvent{value: ev.To, timestamp: ev.Timestamp})
    }
    sort.SliceStable(dated, func(i, j int) bool { return dated[i].timestamp < dated[j].timestamp })
    return dated
}

// isCurrent applies the three exclusion checks in order of reliability:
// comparison-key equality, raw string equality, then formatted-display
// equality including normalized formatted forms. The last one catches pairs
// like 13/Jun/2025 vs 13/Jun/25 where one side fails normalization but both
// render identically.
func isCurrent(value, currentTrimmed, currentKey string) bool {
    valueKey := dates.NormalizeForComparison(value)
    if valueKey != "" && currentKey != "" && valueKey == currentKey { return true }

    valueTrimmed := strings.TrimSpace(value)
    if valueTrimmed == currentTrimmed { return true }

    fv := dates.FormatDisplay(value)
    fc := dates.FormatDisplay(currentTrimmed)
    if fv != "" && fv == fc { return true }
    fvKey := dates.NormalizeForComparison(fv)
    fcKey := dates.NormalizeForComparison(fc)
    return fvKey != "" && fcKey != "" && fvKey == fcKey
}

func reverse(s []string) {
    for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
        s[i], s[j] = s[j], s[i]
    }
}
