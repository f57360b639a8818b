package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, rootCmd.Flags().Parse([]string{"--output", "out.csv", "--timeout", "30s"}))
	t.Cleanup(func() {
		rootCmd.Flags().Set("output", "")
		rootCmd.Flags().Set("timeout", "0s")
	})

	applyFlags(rootCmd, cfg)

	assert.Equal(t, "out.csv", cfg.Output.CSV)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Timeout))
	assert.Equal(t, "Data/transaction2.csv", cfg.Input.Transactions, "unset flags keep config values")
}

func localConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	txPath := filepath.Join(dir, "transaction2.csv")
	seasonsPath := filepath.Join(dir, "seasons.csv")

	require.NoError(t, os.WriteFile(txPath, []byte(
		"UserId;TransactionId;ItemCode;ItemDescription;NumberOfItemsPurchased;CostPerItem;SellingPricePerItem;Country;ClientKeywords;Year;Month;Day;Time\n"+
			"U1;T1;I1;WHITE CANDLE;3;2.00;5.00;United Kingdom;[25,'New','Gold'];2028;May;7;9:30:00\n",
	), 0o600))
	require.NoError(t, os.WriteFile(seasonsPath, []byte("Month;Season\nMay;Spring\n"), 0o600))

	cfg := config.Default()
	cfg.Input.Transactions = txPath
	cfg.Input.Seasons = seasonsPath
	cfg.Logger.Level = "error"
	return cfg, dir
}

func TestClean_CSVOnly(t *testing.T) {
	cfg, dir := localConfig(t)
	cfg.Output.CSV = filepath.Join(dir, "cleaned.csv")
	require.NoError(t, cfg.Validate())

	run, err := runPipeline(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, run.OutputRows)

	data, err := os.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), ",2020-05-07,9,Spring")
}

func TestClean_LocalFiles(t *testing.T) {
	cfg, dir := localConfig(t)
	cfg.Output.CSV = filepath.Join(dir, "out", "cleaned.csv")
	cfg.Output.SQLite = filepath.Join(dir, "out", "cleaned.sqlite")
	require.NoError(t, cfg.Validate())

	require.NoError(t, clean(context.Background(), cfg))

	data, err := os.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",2020-05-07,9,Spring"), lines[1])

	_, err = os.Stat(cfg.Output.SQLite)
	assert.NoError(t, err)
}

func TestClean_MissingInput(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Transactions = filepath.Join(t.TempDir(), "missing.csv")
	cfg.Output.CSV = filepath.Join(t.TempDir(), "cleaned.csv")
	cfg.Logger.Level = "error"

	assert.Error(t, clean(context.Background(), cfg))
}
