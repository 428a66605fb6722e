/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "net/http"
    "os"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/ntnxnam/ndb-date-mover/internal/config"
)

func NewRouter(cfg config.Config, fields *config.FieldsConfig, log zerolog.Logger, svc service, ai summarizer) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, fields, log, svc, ai)

    r.GET("/healthz", h.Healthz)

    api := r.Group("/api")
    api.POST("/test-connection", h.TestConnection)
    api.POST("/query", h.Query)
    api.GET("/fields", h.Fields)
    api.POST("/export", h.Export)
    api.POST("/story-points", h.StoryPoints)
    api.POST("/summarize", h.Summarize)

    // Serve the bundled frontend when present; API routes always win.
    if st, err := os.Stat(cfg.StaticDir); err == nil && st.IsDir() {
        r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
    }

    return r
}
