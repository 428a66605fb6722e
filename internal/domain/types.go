package domain

// Issue is one JIRA issue as returned by a JQL search: a key plus the raw
// field map. Enrichment adds keys ({field}_formatted, {field}_history, ...)
// and never removes or rewrites existing ones.
type Issue struct {
    Key    string
    Fields map[string]any
}

// ChangeEvent is a single changelog item for one field. FieldID may start out
// empty when JIRA omits the identifier; the field resolver backfills it from
// FieldName using field metadata.
type ChangeEvent struct {
    FieldID       string
    FieldOriginal string
    FieldName     string
    FieldType     string
    From          string
    To            string
    Timestamp     string
}

// TrackedField is one entry of config/fields.json.
type TrackedField struct {
    ID           string `json:"id" validate:"required"`
    Name         string `json:"name"`
    Type         string `json:"type"`
    TrackHistory bool   `json:"track_history"`
}

// SlipColor classifies a slip for display: red = delayed, green = ahead,
// gray = unchanged.
type SlipColor string

const (
    SlipRed   SlipColor = "red"
    SlipGreen SlipColor = "green"
    SlipGray  SlipColor = "gray"
)

// SlipResult carries both the legacy rounded week count (used for sorting and
// coloring) and the banded display string.
type SlipResult struct {
    Weeks   int       `json:"weeks"`
    Display string    `json:"display"`
    Color   SlipColor `json:"color"`
}

// FieldHistory is the reconciled history of one issue/field pair.
type FieldHistory struct {
    Current     string     `json:"current"`
    CurrentRaw  string     `json:"current_raw"`
    History     []string   `json:"history"`
    HistoryRaw  []string   `json:"history_raw"`
    ChangeCount int        `json:"change_count"`
    WeekSlip    SlipResult `json:"week_slip"`
}

// QueryResult is the structured outcome of a JQL search. Error is a
// human-readable message; no raw exception crosses this boundary.
type QueryResult struct {
    Success    bool             `json:"success"`
    Issues     []map[string]any `json:"issues"`
    Total      int              `json:"total"`
    StartAt    int              `json:"startAt"`
    MaxResults int              `json:"maxResults"`
    Error      string           `json:"error,omitempty"`
}
