/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "sync"
    "sync/atomic"
    "time"

    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

const bodyPreviewLimit = 500

// backoff is the fixed sleep schedule between retry attempts.
var backoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Client is a bearer-token JIRA API client. The underlying transport is
// shared across goroutines; when a worker hits a connection-level failure it
// marks the session stale and the next attempt rebuilds the transport before
// sending. Recreation is idempotent, so two workers racing to renew is
// harmless.
type Client struct {
    baseURL          string
    token            string
    timeout          time.Duration
    changelogTimeout time.Duration
    log              zerolog.Logger

    mu    sync.Mutex
    httpc *http.Client
    stale atomic.Bool

    // sleep is swapped out in tests so retries do not take real seconds.
    sleep func(time.Duration)
}

// Options configures NewClient. Zero timeouts fall back to the defaults
// (10s general, 30s for changelog fetches, which are observed to be slower).
type Options struct {
    BaseURL          string
    Token            string
    Timeout          time.Duration
    ChangelogTimeout time.Duration
}

func NewClient(opts Options, log zerolog.Logger) (*Client, error) {
    base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
    if base == "" { return nil, errors.New("jira: base URL is required") }
    u, err := url.Parse(base)
    if err != nil || u.Scheme == "" || u.Host == "" {
        return nil, fmt.Errorf("jira: invalid base URL %q", opts.BaseURL)
    }
    if opts.Token == "" { return nil, errors.New("jira: PAT token is required") }
    c := &Client{
        baseURL:          base,
        token:            opts.Token,
        timeout:          opts.Timeout,
        changelogTimeout: opts.ChangelogTimeout,
        log:              log,
        sleep:            time.Sleep,
    }
    if c.timeout <= 0 { c.timeout = 10 * time.Second }
    if c.changelogTimeout <= 0 { c.changelogTimeout = 30 * time.Second }
    c.httpc = newTransport()
    log.Info().Str("base_url", base).Msg("jira client initialized")
    return c, nil
}

func newTransport() *http.Client {
    return &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
}

// renew replaces the HTTP transport and clears the stale flag. Safe to call
// concurrently; the second caller just installs an equivalent fresh client.
func (c *Client) renew() {
    c.mu.Lock()
    c.httpc = newTransport()
    c.mu.Unlock()
    c.stale.Store(false)
    c.log.Debug().Msg("jira session renewed")
}

func (c *Client) transport() *http.Client {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.httpc
}

func (c *Client) apiURL(path string, q url.Values) string {
    u := c.baseURL + path
    if len(q) > 0 { u += "?" + q.Encode() }
    return u
}

// get runs one GET with up to 3 attempts. Transport failures and 5xx are
// retried with the fixed backoff schedule; everything else terminates the
// loop immediately and is classified by the caller. A transport failure marks
// the session stale so the next attempt starts on a fresh connection.
func (c *Client) get(ctx context.Context, u string, timeout time.Duration) (int, string, []byte, error) {
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        if attempt > 0 {
            c.sleep(backoff[attempt-1])
        }
        if c.stale.Load() { c.renew() }

        rctx, cancel := context.WithTimeout(ctx, timeout)
        req, err := http.NewRequestWithContext(rctx, http.MethodGet, u, nil)
        if err != nil {
            cancel()
            return 0, "", nil, err
        }
        req.Header.Set("Authorization", "Bearer "+c.token)
        req.Header.Set("Accept", "application/json")

        resp, err := c.transport().Do(req)
        if err != nil {
            cancel()
            c.stale.Store(true)
            lastErr = &Error{Kind: KindUnreachable, Message: "unable to reach JIRA server", cause: err}
            c.log.Warn().Err(err).Int("attempt", attempt+1).Str("url", u).Msg("jira request failed")
            continue
        }
        body, readErr := io.ReadAll(resp.Body)
        resp.Body.Close()
        cancel()
        if readErr != nil {
            c.stale.Store(true)
            lastErr = &Error{Kind: KindUnreachable, Message: "connection broken while reading response", cause: readErr}
            continue
        }
        if resp.StatusCode >= 500 {
            lastErr = &Error{
                Kind:    KindServer,
                Status:  resp.StatusCode,
                Message: fmt.Sprintf("jira server error status=%d", resp.StatusCode),
            }
            c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("url", u).Msg("jira server error")
            continue
        }
        return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
    }
    return 0, "", nil, lastErr
}

// decodeJSON validates the content type before touching the body. An HTML
// response means the upstream redirected to a login page or the URL is wrong;
// the body is never JSON-decoded in that case. A decode failure on anything
// else carries a bounded body prefix for diagnosis.
func decodeJSON(contentType string, body []byte, out any) error {
    if strings.Contains(strings.ToLower(contentType), "text/html") {
        return &Error{Kind: KindHTML, Message: htmlDiagnostic}
    }
    if err := json.Unmarshal(body, out); err != nil {
        return &Error{
            Kind:    KindBadResponse,
            Message: fmt.Sprintf("invalid JSON response: %s", bodyPreview(body)),
            cause:   err,
        }
    }
    return nil
}

func bodyPreview(body []byte) string {
    s := strings.TrimSpace(string(body))
    if len(s) > bodyPreviewLimit { s = s[:bodyPreviewLimit] }
    if s == "" { return "(empty body)" }
    return s
}

// classifyStatus maps a terminal non-2xx status to its failure kind. The
// message for 400 is pulled from the error payload when present because JIRA
// puts JQL syntax problems there.
func classifyStatus(status int, body []byte) error {
    switch {
    case status == http.StatusUnauthorized:
        return &Error{Kind: KindAuth, Status: status, Message: "authentication failed: invalid or expired token"}
    case status == http.StatusForbidden:
        return &Error{Kind: KindForbidden, Status: status, Message: "authorization failed: token lacks required permissions"}
    case status == http.StatusBadRequest:
        return &Error{Kind: KindJQLSyntax, Status: status, Message: "invalid JQL query: " + errorPayloadMessage(body)}
    default:
        return &Error{Kind: KindServer, Status: status, Message: fmt.Sprintf("jira request failed status=%d: %s", status, bodyPreview(body))}
    }
}

func errorPayloadMessage(body []byte) string {
    var payload struct {
        ErrorMessages []string          `json:"errorMessages"`
        Errors        map[string]string `json:"errors"`
        Message       string            `json:"message"`
    }
    if err := json.Unmarshal(body, &payload); err == nil {
        if len(payload.ErrorMessages) > 0 { return strings.Join(payload.ErrorMessages, "; ") }
        if payload.Message != "" { return payload.Message }
        for _, v := range payload.Errors { return v }
    }
    return bodyPreview(body)
}

// ServerInfo pings the instance and returns its server metadata.
func (c *Client) ServerInfo(ctx context.Context) (map[string]any, error) {
    status, ctype, body, err := c.get(ctx, c.apiURL("/rest/api/2/serverInfo", nil), c.timeout)
    if err != nil { return nil, err }
    if status != http.StatusOK { return nil, classifyStatus(status, body) }
    var out map[string]any
    if err := decodeJSON(ctype, body, &out); err != nil { return nil, err }
    return out, nil
}

// Myself returns the authenticated user, or nil without error when the call
// fails for a non-auth reason; connection probes treat the user block as
// optional decoration.
func (c *Client) Myself(ctx context.Context) (map[string]any, error) {
    status, ctype, body, err := c.get(ctx, c.apiURL("/rest/api/2/myself", nil), c.timeout)
    if err != nil { return nil, err }
    if status != http.StatusOK { return nil, classifyStatus(status, body) }
    var out map[string]any
    if err := decodeJSON(ctype, body, &out); err != nil { return nil, err }
    return out, nil
}

// SearchResult is one page of a JQL search.
type SearchResult struct {
    Issues     []map[string]any
    Total      int
    StartAt    int
    MaxResults int
}

// Search runs a JQL query. Filter shorthand ("filter=12345") is normalized
// to canonical JQL before the request goes out.
func (c *Client) Search(ctx context.Context, jql string, startAt, maxResults int) (*SearchResult, error) {
    if strings.TrimSpace(jql) == "" {
        return nil, &Error{Kind: KindJQLSyntax, Message: "invalid JQL query: empty query"}
    }
    normalized, err := NormalizeJQL(jql)
    if err != nil { return nil, err }
    q := url.Values{}
    q.Set("jql", normalized)
    q.Set("startAt", fmt.Sprint(startAt))
    if maxResults > 0 { q.Set("maxResults", fmt.Sprint(maxResults)) }
    q.Set("fields", "*all")

    status, ctype, body, err := c.get(ctx, c.apiURL("/rest/api/2/search", q), c.timeout)
    if err != nil { return nil, err }
    if status != http.StatusOK { return nil, classifyStatus(status, body) }

    var page struct {
        Issues     []map[string]any `json:"issues"`
        Total      int              `json:"total"`
        StartAt    int              `json:"startAt"`
        MaxResults int              `json:"maxResults"`
    }
    if err := decodeJSON(ctype, body, &page); err != nil { return nil, err }
    c.log.Debug().Str("jql", normalized).Int("total", page.Total).Msg("jql search completed")
    return &SearchResult{Issues: page.Issues, Total: page.Total, StartAt: page.StartAt, MaxResults: page.MaxResults}, nil
}

// Fields lists all field definitions of the instance.
func (c *Client) Fields(ctx context.Context) ([]map[string]any, error) {
    status, ctype, body, err := c.get(ctx, c.apiURL("/rest/api/2/field", nil), c.timeout)
    if err != nil { return nil, err }
    if status != http.StatusOK { return nil, classifyStatus(status, body) }
    var out []map[string]any
    if err := decodeJSON(ctype, body, &out); err != nil { return nil, err }
    return out, nil
}

// FieldMetadata builds the name-to-ID map used to backfill changelog items
// that carry only a human-readable field name.
func (c *Client) FieldMetadata(ctx context.Context) (map[string]string, error) {
    fields, err := c.Fields(ctx)
    if err != nil { return nil, err }
    meta := make(map[string]string, len(fields))
    for _, f := range fields {
        name, _ := f["name"].(string)
        id, _ := f["id"].(string)
        if name != "" && id != "" { meta[name] = id }
    }
    return meta, nil
}

// IssueChangelog fetches the full changelog of one issue via expand=changelog
// and flattens it into change events. Field IDs are normalized; items missing
// an ID are resolved through meta by field name. A 404 yields an empty slice,
// not an error. Uses the longer changelog timeout.
func (c *Client) IssueChangelog(ctx context.Context, key string, meta map[string]string) ([]domain.ChangeEvent, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    q := url.Values{}
    q.Set("expand", "changelog")
    q.Set("fields", "key")
    u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), q)

    status, ctype, body, err := c.get(ctx, u, c.changelogTimeout)
    if err != nil { return nil, err }
    if status == http.StatusNotFound {
        c.log.Warn().Str("issue", key).Msg("issue not found for changelog fetch")
        return nil, nil
    }
    if status != http.StatusOK { return nil, classifyStatus(status, body) }

    var payload struct {
        Changelog struct {
            Histories []struct {
                Created string `json:"created"`
                Items   []struct {
                    FieldID    any    `json:"fieldId"`
                    Field      string `json:"field"`
                    FieldType  string `json:"fieldtype"`
                    FromString string `json:"fromString"`
                    ToString   string `json:"toString"`
                } `json:"items"`
            } `json:"histories"`
        } `json:"changelog"`
    }
    if err := decodeJSON(ctype, body, &payload); err != nil { return nil, err }

    var events []domain.ChangeEvent
    for _, h := range payload.Changelog.Histories {
        for _, it := range h.Items {
            original := fieldIDString(it.FieldID)
            events = append(events, domain.ChangeEvent{
                FieldID:       ResolveFieldID(original, it.Field, meta),
                FieldOriginal: original,
                FieldName:     it.Field,
                FieldType:     it.FieldType,
                From:          it.FromString,
                To:            it.ToString,
                Timestamp:     h.Created,
            })
        }
    }
    return events, nil
}
