package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/runs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	run := &runs.Run{RunID: "r1", Status: runs.StatusRunning, StartedAt: time.Now()}
	require.NoError(t, s.SaveRun(ctx, run))

	run.Status = runs.StatusFailed
	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, runs.StatusRunning, got.Status, "stored run must not alias the caller's value")

	got.InputRows = 99
	again, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Zero(t, again.InputRows)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.Error(t, s.SaveRun(ctx, &runs.Run{}))

	_, err := s.GetRun(ctx, "missing")
	assert.Error(t, err)
}

func TestStore_ListRuns(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := &runs.Run{RunID: id, Status: runs.StatusRunning, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if id == "b" {
			run.Finish(base.Add(2*time.Hour), errors.New("boom"))
		}
		require.NoError(t, s.SaveRun(ctx, run))
	}

	all, err := s.ListRuns(ctx, runs.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].RunID, all[1].RunID, all[2].RunID})

	failed, err := s.ListRuns(ctx, runs.Filter{Status: runs.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)

	page, err := s.ListRuns(ctx, runs.Filter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].RunID)

	empty, err := s.ListRuns(ctx, runs.Filter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
