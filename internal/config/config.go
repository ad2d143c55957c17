// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names for STATE_BACKEND and REPORT_BACKEND.
const (
	BackendFile = "file"
	BackendGCS  = "gcs"
)

// Config holds every setting used by the binaries.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	GeminiAPIKey         string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string        `mapstructure:"GEMINI_MODEL"`
	AssistantTimeout     time.Duration `mapstructure:"ASSISTANT_TIMEOUT"`
	AssistantMaxAttempts int           `mapstructure:"ASSISTANT_MAX_ATTEMPTS"`
	AssistantBackoffBase time.Duration `mapstructure:"ASSISTANT_BACKOFF_BASE"`

	StateBackend       string `mapstructure:"STATE_BACKEND"`
	StateDir           string `mapstructure:"STATE_DIR"`
	StateName          string `mapstructure:"STATE_NAME"`
	GCSBucket          string `mapstructure:"GCS_BUCKET"`
	GCPCredentialsFile string `mapstructure:"GCP_CREDENTIALS_FILE"`

	ReportBackend  string `mapstructure:"REPORT_BACKEND"`
	ReportDir      string `mapstructure:"REPORT_DIR"`
	ReportCacheDir string `mapstructure:"REPORT_CACHE_DIR"`

	HTTPPort int `mapstructure:"HTTP_PORT"`

	BigQueryProject string `mapstructure:"BIGQUERY_PROJECT"`
	BigQueryDataset string `mapstructure:"BIGQUERY_DATASET"`
	BigQueryTable   string `mapstructure:"BIGQUERY_TABLE"`

	NotionToken          string `mapstructure:"NOTION_TOKEN"`
	NotionTransactionsDB string `mapstructure:"NOTION_TRANSACTIONS_DB"`
	NotionAccountsDB     string `mapstructure:"NOTION_ACCOUNTS_DB"`

	ReportSchedule      string `mapstructure:"REPORT_SCHEDULE"`
	ScheduledReportType string `mapstructure:"SCHEDULED_REPORT_TYPE"`
	JobWorkers          int    `mapstructure:"JOB_WORKERS"`
}

var defaults = map[string]any{
	"LOG_LEVEL":              "info",
	"GEMINI_MODEL":           "gemini-2.0-flash",
	"ASSISTANT_TIMEOUT":      "10s",
	"ASSISTANT_MAX_ATTEMPTS": 3,
	"ASSISTANT_BACKOFF_BASE": "1s",
	"STATE_BACKEND":          BackendFile,
	"STATE_DIR":              "./data",
	"STATE_NAME":             "finance-storage",
	"REPORT_BACKEND":         BackendFile,
	"REPORT_DIR":             "./reports",
	"REPORT_CACHE_DIR":       filepath.Join(os.TempDir(), "finance-copilot-cache"),
	"HTTP_PORT":              8080,
	"BIGQUERY_DATASET":       "finance",
	"BIGQUERY_TABLE":         "app_transactions",
	"REPORT_SCHEDULE":        "0 8 1 * *",
	"SCHEDULED_REPORT_TYPE":  "Summary",
	"JOB_WORKERS":            2,
}

// keys without a default still need binding so Unmarshal sees them.
var unbound = []string{
	"GEMINI_API_KEY",
	"GCS_BUCKET",
	"GCP_CREDENTIALS_FILE",
	"BIGQUERY_PROJECT",
	"NOTION_TOKEN",
	"NOTION_TRANSACTIONS_DB",
	"NOTION_ACCOUNTS_DB",
}

// Load reads the optional .env file at envFile (skipped when empty or
// missing), then the process environment, and validates the result.
// Variables already present in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("Load: read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
		_ = v.BindEnv(key)
	}
	for _, key := range unbound {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("Load: decode config: %w", err)
	}

	cfg.StateBackend = strings.ToLower(strings.TrimSpace(cfg.StateBackend))
	cfg.ReportBackend = strings.ToLower(strings.TrimSpace(cfg.ReportBackend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and their required settings.
func (c Config) Validate() error {
	for name, backend := range map[string]string{"STATE_BACKEND": c.StateBackend, "REPORT_BACKEND": c.ReportBackend} {
		switch backend {
		case BackendFile:
		case BackendGCS:
			if c.GCSBucket == "" {
				return fmt.Errorf("Validate: %s=gcs requires GCS_BUCKET", name)
			}
		default:
			return fmt.Errorf("Validate: unknown %s %q", name, backend)
		}
	}
	if c.AssistantMaxAttempts < 1 {
		return fmt.Errorf("Validate: ASSISTANT_MAX_ATTEMPTS must be at least 1, got %d", c.AssistantMaxAttempts)
	}
	if c.JobWorkers < 1 {
		return fmt.Errorf("Validate: JOB_WORKERS must be at least 1, got %d", c.JobWorkers)
	}
	return nil
}

// UsesGCS reports whether any backend needs a Cloud Storage client.
func (c Config) UsesGCS() bool {
	return c.StateBackend == BackendGCS || c.ReportBackend == BackendGCS
}
