/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package openai

import (
    "context"
    "errors"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/config"
)

// Client wraps the OpenAI chat API for status-text summarization. It is
// optional: without an API key every call returns an error and callers fall
// back to the rule-based summarizer.
type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4o-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
    return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return strings.TrimSpace(c.key) != "" }

// Summarize produces an executive summary of status text, at most maxLen
// characters.
func (c *Client) Summarize(ctx context.Context, text string, maxLen int) (string, error) {
    if !c.Enabled() { return "", errors.New("openai: missing key") }
    c.log.Debug().Str("model", c.model).Msg("openai summarize call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You summarize JIRA status updates for executives. Reply with one plain sentence, no markup, at most the requested length."),
            openai.UserMessage(text),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    out := strings.TrimSpace(resp.Choices[0].Message.Content)
    if maxLen > 0 && len(out) > maxLen { out = out[:maxLen] }
    return out, nil
}
