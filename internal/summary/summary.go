/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */

// Package summary condenses free-form status text into an executive-friendly
// one-liner. The rule-based path needs no external service; callers with an
// OpenAI key can route through the LLM adapter instead.
package summary

import "strings"

const maxLength = 200

// prefixes that carry no information once the text is shown under a
// "status" column.
var strippedPrefixes = []string{"Status:", "Update:", "Note:", "Comment:"}

// ForExecutives trims text to at most maxLen characters: whitespace is
// collapsed, short text passes through, otherwise the first sentence is
// used when it fits, else the text is cut at a word boundary with an
// ellipsis.
func ForExecutives(text string, maxLen int) string {
    if maxLen <= 0 { maxLen = maxLength }
    text = strings.Join(strings.Fields(text), " ")
    if len(text) <= maxLen { return text }

    if i := strings.Index(text, ". "); i >= 0 && i+1 <= maxLen {
        return text[:i+1]
    }

    cut := text[:maxLen-3]
    if j := strings.LastIndex(cut, " "); j > 0 { cut = cut[:j] }
    return cut + "..."
}

// StatusUpdate cleans a status-update field and summarizes it: known
// prefixes like "Status:" are stripped before trimming.
func StatusUpdate(text string) string {
    text = strings.TrimSpace(text)
    if text == "" { return "" }
    for _, p := range strippedPrefixes {
        if strings.HasPrefix(text, p) {
            text = strings.TrimSpace(text[len(p):])
            break
        }
    }
    return ForExecutives(text, maxLength)
}
