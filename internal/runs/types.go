package runs

import (
	"context"
	"time"
	"unicode/utf8"
)

// Status represents the current status of a cleaning run.
type Status string

const (
	// StatusRunning indicates the run is in progress.
	StatusRunning Status = "RUNNING"
	// StatusSucceeded indicates every stage and sink completed.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusFailed indicates a stage or sink returned an error.
	StatusFailed Status = "FAILED"
)

// maxErrorLen caps the stored error message.
const maxErrorLen = 2000

// Run records one execution of the cleaning pipeline.
type Run struct {
	// RunID is the unique identifier for this run.
	RunID string `json:"run_id"`

	Status Status `json:"status"`

	TransactionsURI string `json:"transactions_uri"`
	SeasonsURI      string `json:"seasons_uri"`
	OutputURI       string `json:"output_uri"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Row accounting.
	InputRows         int `json:"input_rows"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	YearsCorrected    int `json:"years_corrected"`
	UnmatchedRows     int `json:"unmatched_rows"`
	OutputRows        int `json:"output_rows"`

	// Error contains error details if the run failed.
	Error string `json:"error,omitempty"`
}

// Finish marks the run finished at t, failed when err is non-nil.
func (r *Run) Finish(t time.Time, err error) {
	r.FinishedAt = &t
	if err == nil {
		r.Status = StatusSucceeded
		r.Error = ""
		return
	}
	r.Status = StatusFailed
	msg := err.Error()
	if len(msg) > maxErrorLen {
		cut := maxErrorLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	r.Error = msg
}

// Duration returns how long the run took, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store records runs.
type Store interface {
	// SaveRun saves or updates a run.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*Run, error)

	// ListRuns retrieves runs, most recent first.
	ListRuns(ctx context.Context, filter Filter) ([]*Run, error)
}

// Filter defines filtering criteria for listing runs.
type Filter struct {
	Status Status
	Limit  int
	Offset int
}
