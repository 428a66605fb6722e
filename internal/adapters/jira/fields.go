/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "fmt"
    "strings"
)

// fieldIDString flattens the fieldId value of a changelog item, which JIRA
// reports as a string, a bare number, or not at all.
func fieldIDString(v any) string {
    switch t := v.(type) {
    case nil:
        return ""
    case string:
        return t
    case float64:
        return fmt.Sprintf("%.0f", t)
    default:
        return fmt.Sprint(t)
    }
}

// NormalizeFieldID maps a numeric custom-field identifier of 4 or more
// digits to its canonical customfield_<digits> form. Everything else,
// including standard field names like "status" and already-canonical IDs,
// passes through unchanged.
func NormalizeFieldID(id string) string {
    id = strings.TrimSpace(id)
    if id == "" { return "" }
    if strings.HasPrefix(id, "customfield_") { return id }
    if len(id) >= 4 && numericRe.MatchString(id) { return "customfield_" + id }
    return id
}

// ResolveFieldID produces the canonical field key for a changelog item. A
// present identifier is normalized; a missing one is looked up by field name
// in the metadata map, falling back to the raw name as a best-effort key.
// Never fails: the worst case is a key that matches nothing.
func ResolveFieldID(id, name string, meta map[string]string) string {
    if id != "" { return NormalizeFieldID(id) }
    if resolved, ok := meta[name]; ok { return resolved }
    return name
}

// MatchesField reports whether a changelog event belongs to the target
// field, tolerating whichever representation either side carries: the
// normalized ID, the raw ID, or a bare numeric suffix.
func MatchesField(eventID, eventOriginal, target string) bool {
    if target == "" { return false }
    nt := NormalizeFieldID(target)
    if eventID == nt || eventID == target { return true }
    if eventOriginal != "" && (eventOriginal == target || NormalizeFieldID(eventOriginal) == nt) { return true }
    if suffix, ok := strings.CutPrefix(nt, "customfield_"); ok {
        if eventID == suffix || eventOriginal == suffix { return true }
    }
    return false
}
