/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package logger

import (
    "io"
    "os"
    "time"

    "github.com/mattn/go-isatty"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
    "gopkg.in/natefinch/lumberjack.v2"

    "github.com/ntnxnam/ndb-date-mover/internal/config"
)

// New builds the application logger with dual sinks: a console writer and a
// rotating file. In dev the console output is pretty-printed; colors are
// dropped when stdout is not a terminal.
func New(cfg config.Config) zerolog.Logger {
    zerolog.TimeFieldFormat = time.RFC3339

    fileWriter := &lumberjack.Logger{
        Filename:   cfg.LogFile,
        MaxSize:    16, // megabytes
        MaxBackups: 8,
        MaxAge:     90, // days
        Compress:   true,
    }

    var console io.Writer = os.Stdout
    if cfg.AppEnv == "dev" {
        isTerminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
        console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: !isTerminal}
    }

    logger := zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).With().Timestamp().Logger()
    log.Logger = logger
    return logger
}
