package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valueinc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Data/transaction2.csv", cfg.Input.Transactions)
	assert.Equal(t, "Data/value_inc_seasons.csv", cfg.Input.Seasons)
	assert.Equal(t, "Data/ValueInc_cleaned.csv", cfg.Output.CSV)
	assert.Empty(t, cfg.Output.SQLite)
	assert.False(t, cfg.BigQuery.Enabled())
	assert.Equal(t, DefaultTimeout, time.Duration(cfg.Timeout))
	assert.Equal(t, pipeline.DefaultConfig(), cfg.Pipeline())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
input:
  transactions: gs://sales/raw/transaction2.csv
  seasons: ref/seasons.csv
output:
  csv: out/cleaned.csv
  sqlite: out/sales.sqlite
bigquery:
  project: demo
  dataset: sales
  table: cleaned
logger:
  level: debug
  format: json
timeout: 90s
`)
	t.Setenv("VALUEINC_OUTPUT", "env/cleaned.csv")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gs://sales/raw/transaction2.csv", cfg.Input.Transactions)
	assert.Equal(t, "ref/seasons.csv", cfg.Input.Seasons)
	assert.Equal(t, "env/cleaned.csv", cfg.Output.CSV)
	assert.Equal(t, "out/sales.sqlite", cfg.Output.SQLite)
	assert.True(t, cfg.BigQuery.Enabled())
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.Timeout))

	p := cfg.Pipeline()
	assert.Equal(t, cfg.Input.Transactions, p.TransactionsURI)
	assert.Equal(t, cfg.Input.Seasons, p.SeasonsURI)
	assert.Equal(t, "env/cleaned.csv", p.OutputURI)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "inputs:\n  transactions: a.csv\n"},
		{name: "bad timeout", content: "timeout: soon\n"},
		{name: "partial bigquery", content: "bigquery:\n  project: demo\n"},
		{name: "bad log level", content: "logger:\n  level: loud\n"},
		{name: "bad log format", content: "logger:\n  format: xml\n"},
		{name: "empty output", content: "output:\n  csv: \"\"\n"},
		{name: "zero timeout", content: "timeout: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("VALUEINC_TIMEOUT", "")
	d, err := getEnvDuration("VALUEINC_TIMEOUT", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	t.Setenv("VALUEINC_TIMEOUT", "2m")
	d, err = getEnvDuration("VALUEINC_TIMEOUT", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestLoad_InvalidTimeoutEnv(t *testing.T) {
	t.Setenv("VALUEINC_TIMEOUT", "later")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALUEINC_TIMEOUT")
}

func TestLoad_LogLevelAliases(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		t.Run(level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", level)
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, level, cfg.Logger.Level)
		})
	}
}
