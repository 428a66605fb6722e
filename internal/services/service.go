/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"

    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"

    "github.com/ntnxnam/ndb-date-mover/internal/adapters/jira"
    "github.com/ntnxnam/ndb-date-mover/internal/config"
    "github.com/ntnxnam/ndb-date-mover/internal/dates"
    "github.com/ntnxnam/ndb-date-mover/internal/domain"
    "github.com/ntnxnam/ndb-date-mover/internal/history"
    "github.com/ntnxnam/ndb-date-mover/internal/points"
)

// JiraAPI is the slice of the JIRA client the service layer consumes.
type JiraAPI interface {
    ServerInfo(ctx context.Context) (map[string]any, error)
    Myself(ctx context.Context) (map[string]any, error)
    Search(ctx context.Context, jql string, startAt, maxResults int) (*jira.SearchResult, error)
    Fields(ctx context.Context) ([]map[string]any, error)
    FieldMetadata(ctx context.Context) (map[string]string, error)
    IssueChangelog(ctx context.Context, key string, meta map[string]string) ([]domain.ChangeEvent, error)
}

type Service struct {
    jira    JiraAPI
    fields  *config.FieldsConfig
    workers int
    log     zerolog.Logger
}

func New(client JiraAPI, fields *config.FieldsConfig, workers int, log zerolog.Logger) *Service {
    if workers <= 0 { workers = 10 }
    return &Service{jira: client, fields: fields, workers: workers, log: log}
}

// TestConnection pings the instance and, when reachable, decorates the
// result with the authenticated user.
func (s *Service) TestConnection(ctx context.Context) map[string]any {
    info, err := s.jira.ServerInfo(ctx)
    if err != nil {
        s.log.Warn().Err(err).Msg("connection test failed")
        return map[string]any{"success": false, "message": userMessage(err)}
    }
    out := map[string]any{
        "success":         true,
        "message":         "Connection successful",
        "server_title":    info["serverTitle"],
        "version":         info["version"],
        "deployment_type": info["deploymentType"],
    }
    if user, err := s.jira.Myself(ctx); err == nil && user != nil {
        out["user"] = map[string]any{
            "display_name": user["displayName"],
            "email":        user["emailAddress"],
            "account_id":   user["accountId"],
        }
    }
    s.log.Info().Msg("connection test successful")
    return out
}

// ExecuteQuery runs a JQL search and enriches every tracked date field of
// every returned issue with its formatted value, reconciled history, and
// week slip. Errors come back inside the result as a human-readable message;
// no raw error crosses this boundary.
func (s *Service) ExecuteQuery(ctx context.Context, jql string, startAt, maxResults int, includeHistory bool) domain.QueryResult {
    page, err := s.jira.Search(ctx, jql, startAt, maxResults)
    if err != nil {
        s.log.Warn().Err(err).Str("jql", jql).Msg("jql search failed")
        return domain.QueryResult{Success: false, Issues: []map[string]any{}, Error: userMessage(err)}
    }

    issues := page.Issues
    if includeHistory { issues = s.enrichIssues(ctx, issues) }

    return domain.QueryResult{
        Success:    true,
        Issues:     issues,
        Total:      page.Total,
        StartAt:    page.StartAt,
        MaxResults: page.MaxResults,
    }
}

// enrichIssues fetches all changelogs through a bounded worker pool, then
// enriches issue by issue, synchronously, from the request-scoped cache. An
// issue whose enrichment fails is emitted with its raw fields; the batch
// always returns len(issues) results.
func (s *Service) enrichIssues(ctx context.Context, issues []map[string]any) []map[string]any {
    tracked := s.fields.DateFields()
    if len(tracked) == 0 { return issues }

    needHistory := false
    for _, tf := range tracked {
        if tf.TrackHistory { needHistory = true; break }
    }

    var cache map[string][]domain.ChangeEvent
    if needHistory {
        meta, err := s.jira.FieldMetadata(ctx)
        if err != nil {
            s.log.Warn().Err(err).Msg("field metadata unavailable, resolving by raw IDs only")
            meta = nil
        }
        cache = s.fetchChangelogs(ctx, issueKeys(issues), meta)
    }

    out := make([]map[string]any, 0, len(issues))
    for _, issue := range issues {
        key, _ := issue["key"].(string)
        out = append(out, s.enrichIssue(issue, key, cache[key], tracked))
    }
    return out
}

type fetchResult struct {
    key    string
    events []domain.ChangeEvent
}

// fetchChangelogs fans out one changelog fetch per issue across the pool.
// Each worker writes only its own result; the merge into the cache happens
// sequentially after all workers finish, so the map needs no lock. A failed
// fetch is logged and recorded as an empty changelog.
func (s *Service) fetchChangelogs(ctx context.Context, keys []string, meta map[string]string) map[string][]domain.ChangeEvent {
    results := make(chan fetchResult, len(keys))
    var g errgroup.Group
    g.SetLimit(s.workers)
    for _, key := range keys {
        g.Go(func() error {
            events, err := s.jira.IssueChangelog(ctx, key, meta)
            if err != nil {
                s.log.Warn().Err(err).Str("issue", key).Msg("changelog fetch failed, continuing with empty history")
                events = nil
            }
            results <- fetchResult{key: key, events: events}
            return nil
        })
    }
    _ = g.Wait()
    close(results)

    cache := make(map[string][]domain.ChangeEvent, len(keys))
    for r := range results { cache[r.key] = r.events }
    return cache
}

// enrichIssue computes the per-field keys for one issue, staged first and
// merged into the field map in one step at the end. Keys are additive only;
// the raw field map is never rewritten. A panic during computation is caught
// before the merge, so the issue always comes back exactly as it arrived or
// fully enriched, never in between. Untracked date fields get only their
// formatted display value.
func (s *Service) enrichIssue(issue map[string]any, key string, events []domain.ChangeEvent, tracked []domain.TrackedField) (out map[string]any) {
    out = issue
    defer func() {
        if r := recover(); r != nil {
            s.log.Error().Str("issue", key).Interface("panic", r).Msg("enrichment failed, emitting raw issue")
            out = issue
        }
    }()

    fields, _ := issue["fields"].(map[string]any)
    if fields == nil { return issue }

    staged := make(map[string]any)
    for _, tf := range tracked {
        raw := valueString(fields[tf.ID])
        if raw == "" { continue }

        if !tf.TrackHistory {
            staged[tf.ID+"_formatted"] = dates.FormatDisplay(raw)
            continue
        }
        h := history.Reconcile(raw, events, tf.ID)
        staged[tf.ID+"_formatted"] = h.Current
        staged[tf.ID+"_history"] = h.History
        staged[tf.ID+"_history_raw"] = h.HistoryRaw
        staged[tf.ID+"_change_count"] = h.ChangeCount
        staged[tf.ID+"_week_slip"] = h.WeekSlip
    }
    for k, v := range staged { fields[k] = v }
    return out
}

// StoryPoints sums story points across every ticket related to the given
// keys.
func (s *Service) StoryPoints(ctx context.Context, keys []string, fieldID string, maxResults int) points.Breakdown {
    return points.Calculate(ctx, s.jira, keys, fieldID, maxResults, s.log)
}

// FieldList returns the raw field catalog of the instance.
func (s *Service) FieldList(ctx context.Context) ([]map[string]any, error) {
    return s.jira.Fields(ctx)
}

func issueKeys(issues []map[string]any) []string {
    keys := make([]string, 0, len(issues))
    for _, issue := range issues {
        if k, _ := issue["key"].(string); k != "" { keys = append(keys, k) }
    }
    return keys
}

// valueString flattens a JIRA field value to a string: scalars directly,
// objects by their display name.
func valueString(v any) string {
    switch t := v.(type) {
    case nil:
        return ""
    case string:
        return t
    case map[string]any:
        for _, k := range []string{"displayName", "name", "value"} {
            if s, ok := t[k].(string); ok && s != "" { return s }
        }
        return ""
    case float64:
        return fmt.Sprintf("%v", t)
    default:
        return fmt.Sprint(t)
    }
}

// userMessage maps a client failure to the message shown to the user.
func userMessage(err error) string {
    switch jira.KindOf(err) {
    case jira.KindUnreachable:
        return "JIRA server unreachable. Please check your network connection and JIRA_URL."
    default:
        return err.Error()
    }
}

