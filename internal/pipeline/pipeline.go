package pipeline

import (
	"context"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/export"
	"github.com/dvloznov/valueinc-sales/internal/logger"
	"github.com/dvloznov/valueinc-sales/internal/runs"
	"github.com/dvloznov/valueinc-sales/internal/runs/inmemory"
	"github.com/dvloznov/valueinc-sales/internal/storage"
	"github.com/google/uuid"
)

// Config names the pipeline's inputs and the CSV output.
// Each location is a local path or a gs://bucket/object URI.
type Config struct {
	TransactionsURI string
	SeasonsURI      string
	OutputURI       string
}

// DefaultConfig returns the locations used when none are configured.
func DefaultConfig() Config {
	return Config{
		TransactionsURI: DefaultTransactionsPath,
		SeasonsURI:      DefaultSeasonsPath,
		OutputURI:       DefaultOutputPath,
	}
}

// CleanSales runs the pipeline with local or Cloud Storage files and writes
// the CSV output only.
func CleanSales(ctx context.Context, cfg Config) (*runs.Run, error) {
	router := storage.NewRouter()
	defer router.Close()

	sinks := []Sink{export.NewCSVSink(router, cfg.OutputURI)}
	return CleanSalesWithDeps(ctx, cfg, router, sinks, inmemory.NewStore())
}

// CleanSalesWithDeps runs the cleaning pipeline with injected dependencies
// and records the run in ledger. The returned run is never nil; its Status
// tells whether the pipeline succeeded.
func CleanSalesWithDeps(
	ctx context.Context,
	cfg Config,
	svc StorageService,
	sinks []Sink,
	ledger runs.Store,
) (*runs.Run, error) {
	runID := uuid.NewString()
	log := logger.WithRunID(logger.FromContext(ctx), runID)
	ctx = logger.WithContext(ctx, log)

	run := &runs.Run{
		RunID:           runID,
		Status:          runs.StatusRunning,
		TransactionsURI: cfg.TransactionsURI,
		SeasonsURI:      cfg.SeasonsURI,
		OutputURI:       cfg.OutputURI,
		StartedAt:       time.Now(),
	}
	if err := ledger.SaveRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record run start")
	}

	state := &PipelineState{
		RunID:   runID,
		Config:  cfg,
		Storage: svc,
		Sinks:   sinks,
	}
	err := NewSalesCleaningPipeline().Execute(ctx, state)

	run.InputRows = state.Stats.InputRows
	run.DuplicatesDropped = state.Stats.DuplicatesDropped
	run.YearsCorrected = state.Stats.YearsCorrected
	run.UnmatchedRows = state.Stats.UnmatchedRows
	run.OutputRows = state.Stats.OutputRows
	run.Finish(time.Now(), err)

	if saveErr := ledger.SaveRun(ctx, run); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to record run result")
	}

	if err != nil {
		log.Error().Err(err).Msg("cleaning run failed")
		return run, err
	}
	log.Info().
		Int("input_rows", run.InputRows).
		Int("duplicates_dropped", run.DuplicatesDropped).
		Int("years_corrected", run.YearsCorrected).
		Int("unmatched_rows", run.UnmatchedRows).
		Int("output_rows", run.OutputRows).
		Dur("duration", run.Duration()).
		Msg("cleaning run succeeded")
	return run, nil
}
