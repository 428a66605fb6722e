/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "bytes"
    "context"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/config"
    "github.com/ntnxnam/ndb-date-mover/internal/domain"
    "github.com/ntnxnam/ndb-date-mover/internal/export"
    "github.com/ntnxnam/ndb-date-mover/internal/points"
    "github.com/ntnxnam/ndb-date-mover/internal/summary"
)

type service interface {
    TestConnection(ctx context.Context) map[string]any
    ExecuteQuery(ctx context.Context, jql string, startAt, maxResults int, includeHistory bool) domain.QueryResult
    StoryPoints(ctx context.Context, keys []string, fieldID string, maxResults int) points.Breakdown
    FieldList(ctx context.Context) ([]map[string]any, error)
}

type summarizer interface {
    Enabled() bool
    Summarize(ctx context.Context, text string, maxLen int) (string, error)
}

type Handlers struct {
    cfg    config.Config
    fields *config.FieldsConfig
    log    zerolog.Logger
    svc    service
    ai     summarizer
}

func NewHandlers(cfg config.Config, fields *config.FieldsConfig, log zerolog.Logger, svc service, ai summarizer) *Handlers {
    return &Handlers{cfg: cfg, fields: fields, log: log, svc: svc, ai: ai}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ndb-date-mover"})
}

func (h *Handlers) TestConnection(c *gin.Context) {
    out := h.svc.TestConnection(c.Request.Context())
    status := http.StatusOK
    if out["success"] != true { status = http.StatusBadRequest }
    c.JSON(status, out)
}

type queryRequest struct {
    JQL            string `json:"jql" binding:"required"`
    StartAt        int    `json:"start_at"`
    MaxResults     int    `json:"max_results"`
    IncludeHistory *bool  `json:"include_history"`
}

func (h *Handlers) Query(c *gin.Context) {
    var req queryRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "jql is required"})
        return
    }
    if req.MaxResults <= 0 { req.MaxResults = 100 }
    includeHistory := req.IncludeHistory == nil || *req.IncludeHistory

    res := h.svc.ExecuteQuery(c.Request.Context(), req.JQL, req.StartAt, req.MaxResults, includeHistory)
    status := http.StatusOK
    if !res.Success { status = http.StatusBadRequest }
    c.JSON(status, res)
}

func (h *Handlers) Fields(c *gin.Context) {
    fields, err := h.svc.FieldList(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"success": true, "fields": fields, "configured": h.fields.CustomFields})
}

type exportRequest struct {
    JQL        string `json:"jql" binding:"required"`
    Format     string `json:"format"`
    MaxResults int    `json:"max_results"`
}

func (h *Handlers) Export(c *gin.Context) {
    var req exportRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "jql is required"})
        return
    }
    if req.MaxResults <= 0 { req.MaxResults = 1000 }

    res := h.svc.ExecuteQuery(c.Request.Context(), req.JQL, 0, req.MaxResults, true)
    if !res.Success {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": res.Error})
        return
    }

    names := map[string]string{}
    for _, f := range h.fields.CustomFields { names[f.ID] = f.Name }
    table := export.BuildTable(res.Issues, h.fields.DisplayColumns, names)

    var buf bytes.Buffer
    switch req.Format {
    case "", "csv":
        if err := export.WriteCSV(&buf, table); err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
            return
        }
        c.Header("Content-Disposition", `attachment; filename="issues.csv"`)
        c.Data(http.StatusOK, "text/csv", buf.Bytes())
    case "xlsx":
        if err := export.WriteXLSX(&buf, table); err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
            return
        }
        c.Header("Content-Disposition", `attachment; filename="issues.xlsx"`)
        c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
    default:
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unsupported format: " + req.Format})
    }
}

type storyPointsRequest struct {
    IssueKeys        []string `json:"issue_keys" binding:"required,min=1"`
    StoryPointsField string   `json:"story_points_field"`
    MaxResults       int      `json:"max_results"`
}

func (h *Handlers) StoryPoints(c *gin.Context) {
    var req storyPointsRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "issue_keys is required"})
        return
    }
    breakdown := h.svc.StoryPoints(c.Request.Context(), req.IssueKeys, req.StoryPointsField, req.MaxResults)
    if breakdown.Error != "" {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": breakdown.Error, "breakdown": breakdown})
        return
    }
    c.JSON(http.StatusOK, gin.H{"success": true, "breakdown": breakdown})
}

type summarizeRequest struct {
    Text string `json:"text" binding:"required"`
}

// Summarize prefers the LLM path when a key is configured and falls back to
// the rule-based trim on any failure.
func (h *Handlers) Summarize(c *gin.Context) {
    var req summarizeRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "text is required"})
        return
    }
    if h.ai != nil && h.ai.Enabled() {
        if s, err := h.ai.Summarize(c.Request.Context(), req.Text, 200); err == nil {
            c.JSON(http.StatusOK, gin.H{"success": true, "summary": s, "source": "llm"})
            return
        } else {
            h.log.Warn().Err(err).Msg("llm summarization failed, using rule-based fallback")
        }
    }
    c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary.StatusUpdate(req.Text), "source": "rules"})
}
