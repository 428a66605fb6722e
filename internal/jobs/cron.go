/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
    "context"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/config"
)

type service interface {
    TestConnection(ctx context.Context) map[string]any
    FieldList(ctx context.Context) ([]map[string]any, error)
}

// Cron runs the periodic connection probe. Every tick pings the JIRA
// instance and refreshes the field catalog, so the connection log shows a
// continuous health record even when no user is querying.
type Cron struct {
    cfg config.Config
    log zerolog.Logger
    svc service
    c   *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
    c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
    _, _ = c.AddFunc(cfg.ProbeCron, cr.probe)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) probe() {
    ctx, cancel := context.WithTimeout(context.Background(), time.Minute); defer cancel()
    out := cr.svc.TestConnection(ctx)
    if out["success"] != true {
        cr.log.Warn().Interface("message", out["message"]).Msg("cron: connection probe failed")
        return
    }
    fields, err := cr.svc.FieldList(ctx)
    if err != nil { cr.log.Warn().Err(err).Msg("cron: field catalog refresh failed"); return }
    cr.log.Info().Int("fields", len(fields)).Msg("cron: connection probe ok")
}
