package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/valueinc-sales/internal/runs"
)

// Store is an in-memory run ledger, safe for concurrent use.
// Runs are lost when the process exits.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*runs.Run
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*runs.Run),
	}
}

// SaveRun saves or updates a run.
func (s *Store) SaveRun(ctx context.Context, run *runs.Run) error {
	if run.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RunID] = clone(run)
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*runs.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return clone(run), nil
}

// ListRuns retrieves runs matching filter, most recently started first.
func (s *Store) ListRuns(ctx context.Context, filter runs.Filter) ([]*runs.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*runs.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		result = append(result, clone(run))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].RunID < result[j].RunID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*runs.Run{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func clone(run *runs.Run) *runs.Run {
	c := *run
	if run.FinishedAt != nil {
		t := *run.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

var _ runs.Store = (*Store)(nil)
