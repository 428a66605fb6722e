/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/ntnxnam/ndb-date-mover/internal/adapters/jira"
    "github.com/ntnxnam/ndb-date-mover/internal/adapters/openai"
    "github.com/ntnxnam/ndb-date-mover/internal/config"
    httpapi "github.com/ntnxnam/ndb-date-mover/internal/http"
    "github.com/ntnxnam/ndb-date-mover/internal/jobs"
    "github.com/ntnxnam/ndb-date-mover/internal/logger"
    "github.com/ntnxnam/ndb-date-mover/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)

    fields, err := config.LoadFields(cfg.FieldsFile)
    if err != nil {
        log.Fatal().Err(err).Str("path", cfg.FieldsFile).Msg("fields config load failed")
    }

    // Adapters
    jc, err := jira.NewClient(jira.Options{
        BaseURL:          cfg.JiraURL,
        Token:            cfg.JiraPAT,
        Timeout:          cfg.HTTPTimeout,
        ChangelogTimeout: cfg.ChangelogTimeout,
    }, log)
    if err != nil { log.Fatal().Err(err).Msg("jira client init failed") }
    llm := openai.NewClient(cfg, log)

    // Services
    svc := services.New(jc, fields, cfg.Workers, log)

    // HTTP server (Gin)
    router := httpapi.NewRouter(cfg, fields, log, svc, llm)

    // Cron
    cron := jobs.NewCron(cfg, log, svc)
    cron.Start()
    defer cron.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("ndb-date-mover listening")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
