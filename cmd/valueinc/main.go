package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/config"
	"github.com/dvloznov/valueinc-sales/internal/export"
	"github.com/dvloznov/valueinc-sales/internal/logger"
	"github.com/dvloznov/valueinc-sales/internal/pipeline"
	"github.com/dvloznov/valueinc-sales/internal/runs"
	"github.com/dvloznov/valueinc-sales/internal/runs/inmemory"
	"github.com/dvloznov/valueinc-sales/internal/storage"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	transactions string
	seasons      string
	output       string
	sqlitePath   string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "valueinc",
	Short: "Clean Value Inc. sales transactions",
	Long: `valueinc reads the raw transaction and season files, removes duplicates,
derives totals and margins, splits client keywords, joins seasons and writes
the cleaned table as CSV, plus SQLite and BigQuery when configured.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return clean(cmd.Context(), cfg)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&transactions, "transactions", "", "transaction CSV (path or gs:// URI)")
	flags.StringVar(&seasons, "seasons", "", "season reference CSV (path or gs:// URI)")
	flags.StringVar(&output, "output", "", "cleaned CSV destination (path or gs:// URI)")
	flags.StringVar(&sqlitePath, "sqlite", "", "also write the cleaned table to this SQLite file")
	flags.DurationVar(&timeout, "timeout", 0, "abort the run after this long")
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("transactions") {
		cfg.Input.Transactions = transactions
	}
	if flags.Changed("seasons") {
		cfg.Input.Seasons = seasons
	}
	if flags.Changed("output") {
		cfg.Output.CSV = output
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLite = sqlitePath
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(timeout)
	}
}

func clean(ctx context.Context, cfg *config.Config) error {
	log := logger.NewWithOptions(os.Stderr, logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format})

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout))
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("transactions", cfg.Input.Transactions).
		Str("seasons", cfg.Input.Seasons).
		Str("output", cfg.Output.CSV).
		Bool("sqlite", cfg.Output.SQLite != "").
		Bool("bigquery", cfg.BigQuery.Enabled()).
		Msg("Starting cleaning run")

	run, err := runPipeline(ctx, cfg)
	if err != nil {
		if run == nil {
			return err
		}
		return fmt.Errorf("cleaning run %s failed: %w", run.RunID, err)
	}

	fmt.Printf("Run %s completed successfully.\n", run.RunID)
	fmt.Printf("Rows read: %d\n", run.InputRows)
	fmt.Printf("Duplicates dropped: %d\n", run.DuplicatesDropped)
	fmt.Printf("Years corrected: %d\n", run.YearsCorrected)
	fmt.Printf("Rows without a season: %d\n", run.UnmatchedRows)
	fmt.Printf("Rows written: %d\n", run.OutputRows)
	fmt.Printf("CSV: %s\n", cfg.Output.CSV)
	if cfg.Output.SQLite != "" {
		fmt.Printf("SQLite: %s\n", cfg.Output.SQLite)
	}
	return nil
}

// runPipeline writes the CSV output only unless a database sink is configured.
func runPipeline(ctx context.Context, cfg *config.Config) (*runs.Run, error) {
	if cfg.Output.SQLite == "" && !cfg.BigQuery.Enabled() {
		return pipeline.CleanSales(ctx, cfg.Pipeline())
	}

	router := storage.NewRouter()
	defer router.Close()

	sinks := []pipeline.Sink{export.NewCSVSink(router, cfg.Output.CSV)}
	if cfg.Output.SQLite != "" {
		sinks = append(sinks, export.NewSQLiteSink(cfg.Output.SQLite, cfg.Output.SQLiteTable))
	}
	if cfg.BigQuery.Enabled() {
		bq, err := export.NewBigQuerySink(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset, cfg.BigQuery.Table)
		if err != nil {
			return nil, err
		}
		defer bq.Close()
		sinks = append(sinks, bq)
	}
	return pipeline.CleanSalesWithDeps(ctx, cfg.Pipeline(), router, sinks, inmemory.NewStore())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
