/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "encoding/json"
    "fmt"
    "os"
    "strconv"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/joho/godotenv"

    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

type Config struct {
    AppEnv   string
    HTTPAddr string

    StaticDir  string
    FieldsFile string

    JiraURL          string
    JiraPAT          string
    HTTPTimeout      time.Duration
    ChangelogTimeout time.Duration
    Workers          int

    OpenAIKey     string
    OpenAIModel   string
    OpenAITimeout time.Duration

    ProbeCron string

    LogFile string
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() Config {
    _ = godotenv.Load()

    return Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        HTTPAddr: getenv("HTTP_ADDR", ":8473"),

        StaticDir:  getenv("STATIC_DIR", "frontend"),
        FieldsFile: getenv("FIELDS_FILE", "config/fields.json"),

        JiraURL:          getenv("JIRA_URL", ""),
        JiraPAT:          getenv("JIRA_PAT_TOKEN", ""),
        HTTPTimeout:      dur("HTTP_TIMEOUT", 10*time.Second),
        ChangelogTimeout: dur("CHANGELOG_TIMEOUT", 30*time.Second),
        Workers:          atoi("CHANGELOG_WORKERS", 10),

        OpenAIKey:     getenv("OPENAI_API_KEY", ""),
        OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
        OpenAITimeout: dur("OPENAI_TIMEOUT", 15*time.Second),

        ProbeCron: getenv("PROBE_CRON", "*/15 * * * *"),

        LogFile: getenv("LOG_FILE", "jira_connection.log"),
    }
}

// FieldsConfig is the parsed config/fields.json: which JIRA fields to show,
// which date fields to track history for, and the display date format.
type FieldsConfig struct {
    CustomFields   []domain.TrackedField `json:"custom_fields" validate:"required,dive"`
    DisplayColumns []string              `json:"display_columns" validate:"required,min=1"`
    DateFormat     string                `json:"date_format"`
}

var validate = validator.New()

// LoadFields reads and validates the fields configuration file. Field IDs
// must be unique; an unknown display date format falls back to mm/dd/yyyy.
func LoadFields(path string) (*FieldsConfig, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("config: cannot read fields file %s (create it from fields.json.example): %w", path, err)
    }
    var fc FieldsConfig
    if err := json.Unmarshal(data, &fc); err != nil {
        return nil, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
    }
    if err := validate.Struct(&fc); err != nil {
        return nil, fmt.Errorf("config: invalid fields file %s: %w", path, err)
    }
    seen := map[string]bool{}
    for _, f := range fc.CustomFields {
        if seen[f.ID] { return nil, fmt.Errorf("config: duplicate field ID %q in %s", f.ID, path) }
        seen[f.ID] = true
    }
    if fc.DateFormat == "" { fc.DateFormat = "mm/dd/yyyy" }
    return &fc, nil
}

// DateFields returns every configured date field. All of them get a
// formatted display value; TrackHistory gates only the changelog fetch.
func (fc *FieldsConfig) DateFields() []domain.TrackedField {
    var out []domain.TrackedField
    for _, f := range fc.CustomFields {
        if f.Type == "date" { out = append(out, f) }
    }
    return out
}
