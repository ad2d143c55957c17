package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATE_BACKEND", "")
	t.Setenv("REPORT_BACKEND", "")
	os.Unsetenv("STATE_BACKEND")
	os.Unsetenv("REPORT_BACKEND")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 10*time.Second, cfg.AssistantTimeout)
	assert.Equal(t, 3, cfg.AssistantMaxAttempts)
	assert.Equal(t, time.Second, cfg.AssistantBackoffBase)
	assert.Equal(t, BackendFile, cfg.StateBackend)
	assert.Equal(t, "finance-storage", cfg.StateName)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "0 8 1 * *", cfg.ReportSchedule)
	assert.False(t, cfg.UsesGCS())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STATE_BACKEND", "GCS")
	t.Setenv("REPORT_BACKEND", "file")
	t.Setenv("GCS_BUCKET", "finance-bucket")
	t.Setenv("ASSISTANT_TIMEOUT", "3s")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendGCS, cfg.StateBackend)
	assert.Equal(t, "finance-bucket", cfg.GCSBucket)
	assert.Equal(t, 3*time.Second, cfg.AssistantTimeout)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.UsesGCS())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOTION_TRANSACTIONS_DB=db-from-file\n"), 0o644))
	t.Setenv("NOTION_TRANSACTIONS_DB", "")
	os.Unsetenv("NOTION_TRANSACTIONS_DB")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db-from-file", cfg.NotionTransactionsDB)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{StateBackend: BackendFile, ReportBackend: BackendFile, AssistantMaxAttempts: 3, JobWorkers: 1}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.StateBackend = "s3" }, "unknown STATE_BACKEND"},
		{"gcs without bucket", func(c *Config) { c.ReportBackend = BackendGCS }, "requires GCS_BUCKET"},
		{"zero attempts", func(c *Config) { c.AssistantMaxAttempts = 0 }, "ASSISTANT_MAX_ATTEMPTS"},
		{"zero workers", func(c *Config) { c.JobWorkers = 0 }, "JOB_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
