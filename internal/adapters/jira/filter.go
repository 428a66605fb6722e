/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "regexp"
    "strings"
)

var filterShorthandRe = regexp.MustCompile(`(?i)^\s*filter\s*=\s*(.+)$`)

var numericRe = regexp.MustCompile(`^\d+$`)

// trailingKeywords are scanned in order. ORDER BY wins over AND/OR when both
// appear, since it typically terminates the filter portion. This is a
// heuristic split, not a JQL grammar: a filter name that itself contains
// " and " can mis-split. Quote the name to avoid it.
var trailingKeywords = []string{" ORDER BY ", " AND ", " OR "}

// NormalizeJQL rewrites the "filter=<ref>" shorthand into canonical JQL:
// "filter = 12345" for numeric IDs, `filter = "name"` for names, with any
// trailing clause reattached and its keyword upper-cased. Queries that are
// not filter shorthand pass through unchanged.
func NormalizeJQL(query string) (string, error) {
    m := filterShorthandRe.FindStringSubmatch(query)
    if m == nil { return query, nil }

    ref, trailing := splitTrailingClause(m[1])
    ref = strings.TrimSpace(ref)
    if ref == "" {
        return "", &Error{Kind: KindJQLSyntax, Message: "invalid filter reference: empty"}
    }

    var canonical string
    switch {
    case numericRe.MatchString(ref):
        canonical = "filter = " + ref
    case len(ref) >= 2 && (ref[0] == '"' || ref[0] == '\'') && ref[len(ref)-1] == ref[0]:
        canonical = `filter = "` + ref[1:len(ref)-1] + `"`
    default:
        canonical = `filter = "` + ref + `"`
    }
    if trailing != "" { canonical += " " + trailing }
    return canonical, nil
}

// splitTrailingClause separates a filter reference from an appended JQL
// clause. The returned trailing clause starts with its keyword upper-cased.
func splitTrailingClause(s string) (string, string) {
    upper := strings.ToUpper(s)
    for _, kw := range trailingKeywords {
        if i := strings.Index(upper, kw); i >= 0 {
            keyword := strings.TrimSpace(kw)
            rest := strings.TrimSpace(s[i+len(kw):])
            return s[:i], keyword + " " + rest
        }
    }
    return s, ""
}
