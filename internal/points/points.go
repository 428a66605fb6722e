/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */

// Package points aggregates story points across every ticket related to a
// set of issue keys, split by Dev/QA and by resolution outcome.
package points

import (
    "context"
    "fmt"
    "strconv"
    "strings"

    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/adapters/jira"
)

// PositiveResolutions are the outcomes counted as positive. Everything else
// with a resolution is negative; no resolution means unresolved.
var PositiveResolutions = map[string]bool{
    "fixed": true, "done": true, "resolved": true, "complete": true,
}

// nonWorkItemTypes never carry their own story points; their children do.
var nonWorkItemTypes = []string{"epic", "feature", "initiative", "x-feat", "capability"}

// storyPointsFieldIDs are the custom fields commonly holding story points,
// probed in order when no explicit field is configured.
var storyPointsFieldIDs = []string{"customfield_10002", "customfield_10016", "customfield_10020"}

// Searcher is the single JIRA call this package needs.
type Searcher interface {
    Search(ctx context.Context, jql string, startAt, maxResults int) (*jira.SearchResult, error)
}

// Bucket holds summed story points for one resolution outcome.
type Bucket struct {
    Dev float64 `json:"Dev"`
    QA  float64 `json:"QA"`
}

// Breakdown is the full report: story points per Dev/QA per resolution
// outcome. Error carries a human-readable message when the search failed.
type Breakdown struct {
    Positive   Bucket `json:"positive"`
    Negative   Bucket `json:"negative"`
    Unresolved Bucket `json:"unresolved"`
    Error      string `json:"error,omitempty"`
}

// BuildRelatedTicketsJQL expands a set of issue keys into the JQL that
// captures the whole related tree: direct keys, Parent Link, FEAT
// references, portfolio children, issues in epics, and subtasks.
func BuildRelatedTicketsJQL(keys []string) string {
    if len(keys) == 0 { return "" }
    keyList := strings.Join(keys, ", ")

    parts := []string{
        fmt.Sprintf("key IN (%s)", keyList),
        fmt.Sprintf(`("Parent Link" IN (%s))`, keyList),
        fmt.Sprintf(`("FEAT ID" ~ "%s")`, keyList),
        fmt.Sprintf(`("FEAT Number" IN (%s))`, keyList),
    }
    for _, key := range keys {
        parts = append(parts,
            fmt.Sprintf(`(issueFunction in portfolioChildrenOf("key=%s"))`, key),
            fmt.Sprintf(`(issueFunction in issuesInEpics("issueFunction in portfolioChildrenOf('key=%s')"))`, key),
            fmt.Sprintf(`(issueFunction in subtasksOf("key=%s"))`, key),
        )
    }
    return strings.Join(parts, " OR ")
}

// IsWorkItem reports whether an issue type participates in story-point
// sums. Unknown types are included.
func IsWorkItem(issueType string) bool {
    if issueType == "" { return true }
    lower := strings.ToLower(issueType)
    for _, t := range nonWorkItemTypes {
        if strings.Contains(lower, t) { return false }
    }
    return true
}

// DevQACategory splits issue types into Dev and QA. Test and Test Plan
// tickets are QA; everything else is Dev.
func DevQACategory(issueType string) string {
    lower := strings.ToLower(strings.TrimSpace(issueType))
    if lower == "test" || lower == "test plan" { return "QA" }
    if strings.Contains(lower, "test") && strings.Contains(lower, "plan") { return "QA" }
    return "Dev"
}

// ResolutionCategory maps a resolution name to positive, negative, or
// unresolved.
func ResolutionCategory(name string) string {
    if strings.TrimSpace(name) == "" { return "unresolved" }
    if PositiveResolutions[strings.ToLower(name)] { return "positive" }
    return "negative"
}

// StoryPoints extracts the story-point value of an issue, trying the
// configured field first and then the common candidates. Returns 0 when no
// field holds a usable number.
func StoryPoints(issue map[string]any, fieldID string) float64 {
    fields, _ := issue["fields"].(map[string]any)
    if fields == nil { return 0 }

    candidates := storyPointsFieldIDs
    if fieldID != "" { candidates = append([]string{fieldID}, candidates...) }
    for _, id := range candidates {
        if v, ok := numeric(fields[id]); ok { return v }
    }
    return 0
}

func numeric(v any) (float64, bool) {
    switch t := v.(type) {
    case float64:
        return t, true
    case int:
        return float64(t), true
    case string:
        if t == "" { return 0, false }
        f, err := strconv.ParseFloat(t, 64)
        if err != nil { return 0, false }
        return f, true
    default:
        return 0, false
    }
}

// Calculate fetches all tickets related to the given keys and sums their
// story points per Dev/QA and resolution outcome. A search failure yields a
// zero breakdown with the error message set; it never panics.
func Calculate(ctx context.Context, client Searcher, keys []string, fieldID string, maxResults int, log zerolog.Logger) Breakdown {
    var out Breakdown
    if len(keys) == 0 { return out }
    if maxResults <= 0 { maxResults = 1000 }

    page, err := client.Search(ctx, BuildRelatedTicketsJQL(keys), 0, maxResults)
    if err != nil {
        log.Warn().Err(err).Int("keys", len(keys)).Msg("related tickets search failed")
        out.Error = err.Error()
        return out
    }
    log.Debug().Int("related", len(page.Issues)).Msg("related tickets fetched")

    for _, issue := range page.Issues {
        fields, _ := issue["fields"].(map[string]any)
        if fields == nil { continue }

        issueType := objectName(fields["issuetype"])
        if !IsWorkItem(issueType) { continue }

        sp := StoryPoints(issue, fieldID)
        bucket := out.bucket(ResolutionCategory(objectName(fields["resolution"])))
        if DevQACategory(issueType) == "QA" { bucket.QA += sp } else { bucket.Dev += sp }
    }
    return out
}

func (b *Breakdown) bucket(category string) *Bucket {
    switch category {
    case "positive":
        return &b.Positive
    case "negative":
        return &b.Negative
    default:
        return &b.Unresolved
    }
}

func objectName(v any) string {
    if m, ok := v.(map[string]any); ok {
        if s, _ := m["name"].(string); s != "" { return s }
        return ""
    }
    if s, ok := v.(string); ok { return s }
    return ""
}
