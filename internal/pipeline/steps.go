package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/frame"
	"github.com/dvloznov/valueinc-sales/internal/logger"
	"golang.org/x/sync/errgroup"
)

// inputDelimiter separates fields in both source files.
const inputDelimiter = ';'

// PipelineStep represents a single step in the cleaning pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// Stats counts what the steps did to the data.
type Stats struct {
	InputRows         int
	DuplicatesDropped int
	YearsCorrected    int
	UnmatchedRows     int
	OutputRows        int
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	RunID  string
	Config Config

	Storage StorageService
	Sinks   []Sink

	Transactions *frame.Frame
	Seasons      *frame.Frame
	Result       *frame.Frame

	Stats Stats
}

// Step 1: LoadStep reads the transaction and season files concurrently.
type LoadStep struct{}

func (s *LoadStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	var transactions, seasons *frame.Frame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := loadCSV(gctx, state.Storage, state.Config.TransactionsURI)
		transactions = f
		return err
	})
	g.Go(func() error {
		f, err := loadCSV(gctx, state.Storage, state.Config.SeasonsURI)
		seasons = f
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("LoadStep: %w", err)
	}
	if err := ValidateTransactions(transactions); err != nil {
		return fmt.Errorf("LoadStep: %w", err)
	}
	if err := ValidateSeasons(seasons); err != nil {
		return fmt.Errorf("LoadStep: %w", err)
	}
	if dups := DuplicateMonths(seasons); len(dups) > 0 {
		log.Warn().Strs("months", dups).Msg("season reference repeats months; matching sales rows will be duplicated")
	}

	state.Transactions = transactions
	state.Seasons = seasons
	state.Stats.InputRows = transactions.Len()

	log.Info().
		Int("transactions", transactions.Len()).
		Int("seasons", seasons.Len()).
		Int("columns", transactions.Width()).
		Msg("inputs loaded")
	for col, n := range transactions.EmptyCounts() {
		log.Debug().Str("column", col).Int("empty", n).Msg("empty cells")
	}
	return nil
}

func loadCSV(ctx context.Context, svc StorageService, location string) (*frame.Frame, error) {
	rc, err := svc.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := frame.ReadCSV(rc, inputDelimiter)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", location, err)
	}
	return f, nil
}

// Step 2: DropDuplicatesStep removes repeated transaction rows.
type DropDuplicatesStep struct{}

func (s *DropDuplicatesStep) Execute(ctx context.Context, state *PipelineState) error {
	before := state.Transactions.Len()
	state.Transactions = DropDuplicates(state.Transactions)
	state.Stats.DuplicatesDropped = before - state.Transactions.Len()

	log := logger.FromContext(ctx)
	log.Info().
		Int("dropped", state.Stats.DuplicatesDropped).
		Int("rows", state.Transactions.Len()).
		Msg("duplicates removed")
	return nil
}

// Step 3: DerivedFieldsStep adds totals, cost, profit and margin.
type DerivedFieldsStep struct{}

func (s *DerivedFieldsStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := AddDerivedFields(state.Transactions)
	if err != nil {
		return err
	}
	state.Transactions = f
	return nil
}

// Step 4: CorrectYearStep rewrites the invalid year.
type CorrectYearStep struct{}

func (s *CorrectYearStep) Execute(ctx context.Context, state *PipelineState) error {
	n := state.Transactions.Count(ColYear, InvalidYear)
	f, err := CorrectYear(state.Transactions)
	if err != nil {
		return err
	}
	state.Transactions = f
	state.Stats.YearsCorrected = n

	if n > 0 {
		log := logger.FromContext(ctx)
		log.Info().
			Int("rows", n).
			Str("from", InvalidYear).
			Str("to", CorrectedYear).
			Msg("year corrected")
	}
	return nil
}

// Step 5: SplitKeywordsStep splits ClientKeywords into age, type and level.
type SplitKeywordsStep struct{}

func (s *SplitKeywordsStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := SplitClientKeywords(state.Transactions)
	if err != nil {
		return err
	}
	state.Transactions = f
	return nil
}

// Step 6: NormalizeTypesStep assigns column storage classes.
type NormalizeTypesStep struct{}

func (s *NormalizeTypesStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := NormalizeTypes(state.Transactions)
	if err != nil {
		return err
	}
	state.Transactions = f
	return nil
}

// Step 7: DeriveDateTimeStep adds Date and Hour.
type DeriveDateTimeStep struct{}

func (s *DeriveDateTimeStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := DeriveDateTime(state.Transactions)
	if err != nil {
		return err
	}
	state.Transactions = f
	return nil
}

// Step 8: MergeSeasonsStep joins the season reference on Month.
type MergeSeasonsStep struct{}

func (s *MergeSeasonsStep) Execute(ctx context.Context, state *PipelineState) error {
	merged, err := MergeSeasons(state.Transactions, state.Seasons)
	if err != nil {
		return err
	}
	state.Stats.UnmatchedRows = unmatchedRows(state.Transactions, state.Seasons)
	state.Result = merged

	log := logger.FromContext(ctx)
	if state.Stats.UnmatchedRows > 0 {
		log.Warn().Int("rows", state.Stats.UnmatchedRows).Msg("rows without a season dropped")
	}
	log.Info().Int("rows", merged.Len()).Msg("seasons merged")
	return nil
}

func unmatchedRows(sales, seasons *frame.Frame) int {
	months := make(map[string]struct{}, seasons.Len())
	for j := 0; j < seasons.Len(); j++ {
		months[seasons.Value(j, ColMonth)] = struct{}{}
	}
	n := 0
	for i := 0; i < sales.Len(); i++ {
		if _, ok := months[sales.Value(i, ColMonth)]; !ok {
			n++
		}
	}
	return n
}

// Step 9: PruneColumnsStep drops columns that are not exported.
type PruneColumnsStep struct{}

func (s *PruneColumnsStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := PruneColumns(state.Result)
	if err != nil {
		return err
	}
	state.Result = f
	state.Stats.OutputRows = f.Len()

	log := logger.FromContext(ctx)
	log.Info().
		Int("rows", f.Len()).
		Int("columns", f.Width()).
		Strs("column_names", f.Columns()).
		Msg("cleaned table ready")
	return nil
}

// Step 10: ExportStep hands the result to every sink in order.
type ExportStep struct{}

func (s *ExportStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for _, sink := range state.Sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Write(ctx, state.RunID, state.Result); err != nil {
			return fmt.Errorf("ExportStep: %s: %w", sink.Name(), err)
		}
		log.Info().
			Str("sink", sink.Name()).
			Int("rows", state.Result.Len()).
			Int("columns", state.Result.Width()).
			Msg("table exported")
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	base := logger.FromContext(ctx)
	for i, step := range p.steps {
		name := stepName(step)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d (%s): %w", i+1, name, err)
		}

		log := logger.WithFields(base, map[string]interface{}{"step": i + 1, "step_name": name})
		rowsIn := state.rows()
		start := time.Now()
		if err := step.Execute(logger.WithContext(ctx, log), state); err != nil {
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, name, err)
		}
		log.Debug().
			Int("rows_in", rowsIn).
			Int("rows_out", state.rows()).
			Dur("duration", time.Since(start)).
			Msg("step done")
	}
	return nil
}

// rows is the row count of the table the steps are currently working on.
func (s *PipelineState) rows() int {
	switch {
	case s.Result != nil:
		return s.Result.Len()
	case s.Transactions != nil:
		return s.Transactions.Len()
	default:
		return 0
	}
}

func stepName(step PipelineStep) string {
	name := fmt.Sprintf("%T", step)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// NewSalesCleaningPipeline creates the standard 10-step cleaning pipeline.
func NewSalesCleaningPipeline() *Pipeline {
	return NewPipeline(
		&LoadStep{},
		&DropDuplicatesStep{},
		&DerivedFieldsStep{},
		&CorrectYearStep{},
		&SplitKeywordsStep{},
		&NormalizeTypesStep{},
		&DeriveDateTimeStep{},
		&MergeSeasonsStep{},
		&PruneColumnsStep{},
		&ExportStep{},
	)
}
