package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/pipeline"
	"sigs.k8s.io/yaml"
)

// DefaultTimeout bounds a whole cleaning run.
const DefaultTimeout = 5 * time.Minute

type Config struct {
	Input    InputConfig    `json:"input"`
	Output   OutputConfig   `json:"output"`
	BigQuery BigQueryConfig `json:"bigquery"`
	Logger   LoggerConfig   `json:"logger"`
	Timeout  Duration       `json:"timeout"`
}

type InputConfig struct {
	Transactions string `json:"transactions"`
	Seasons      string `json:"seasons"`
}

type OutputConfig struct {
	CSV         string `json:"csv"`
	SQLite      string `json:"sqlite"`
	SQLiteTable string `json:"sqliteTable"`
}

type BigQueryConfig struct {
	Project string `json:"project"`
	Dataset string `json:"dataset"`
	Table   string `json:"table"`
}

// Enabled reports whether any BigQuery setting is present.
func (b BigQueryConfig) Enabled() bool {
	return b.Project != "" || b.Dataset != "" || b.Table != ""
}

type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "5m").
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Default returns the configuration used when no file or environment is set.
func Default() *Config {
	locations := pipeline.DefaultConfig()
	return &Config{
		Input: InputConfig{
			Transactions: locations.TransactionsURI,
			Seasons:      locations.SeasonsURI,
		},
		Output: OutputConfig{
			CSV: locations.OutputURI,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Timeout: Duration(DefaultTimeout),
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when path is not empty, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Input.Transactions = getEnvString("VALUEINC_TRANSACTIONS", c.Input.Transactions)
	c.Input.Seasons = getEnvString("VALUEINC_SEASONS", c.Input.Seasons)
	c.Output.CSV = getEnvString("VALUEINC_OUTPUT", c.Output.CSV)
	c.Output.SQLite = getEnvString("VALUEINC_SQLITE", c.Output.SQLite)
	c.BigQuery.Project = getEnvString("VALUEINC_BQ_PROJECT", c.BigQuery.Project)
	c.BigQuery.Dataset = getEnvString("VALUEINC_BQ_DATASET", c.BigQuery.Dataset)
	c.BigQuery.Table = getEnvString("VALUEINC_BQ_TABLE", c.BigQuery.Table)
	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)
	timeout, err := getEnvDuration("VALUEINC_TIMEOUT", time.Duration(c.Timeout))
	if err != nil {
		return err
	}
	c.Timeout = Duration(timeout)
	return nil
}

// Validate checks the configuration after every override has been applied.
func (c *Config) Validate() error {
	if c.Input.Transactions == "" {
		return fmt.Errorf("transactions location cannot be empty")
	}
	if c.Input.Seasons == "" {
		return fmt.Errorf("seasons location cannot be empty")
	}
	if c.Output.CSV == "" {
		return fmt.Errorf("output location cannot be empty")
	}

	if c.BigQuery.Enabled() && (c.BigQuery.Project == "" || c.BigQuery.Dataset == "" || c.BigQuery.Table == "") {
		return fmt.Errorf("bigquery project, dataset and table must all be set")
	}

	validLogLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !contains(validLogLevels, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"console", "json"}
	if !contains(validLogFormats, strings.ToLower(c.Logger.Format)) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Pipeline returns the locations the cleaning pipeline reads and writes.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		TransactionsURI: c.Input.Transactions,
		SeasonsURI:      c.Input.Seasons,
		OutputURI:       c.Output.CSV,
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
