package runs

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRun_Finish(t *testing.T) {
	start := time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC)

	ok := &Run{RunID: "ok", Status: StatusRunning, StartedAt: start}
	assert.Zero(t, ok.Duration())
	ok.Finish(start.Add(time.Second), nil)
	assert.Equal(t, StatusSucceeded, ok.Status)
	assert.Empty(t, ok.Error)
	assert.Equal(t, time.Second, ok.Duration())

	failed := &Run{RunID: "failed", Status: StatusRunning, StartedAt: start}
	failed.Finish(start, errors.New(strings.Repeat("x", maxErrorLen+10)))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Len(t, failed.Error, maxErrorLen)
}

func TestRun_FinishKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes, so an odd cap lands inside a rune.
	msg := "x" + strings.Repeat("é", maxErrorLen)

	r := &Run{RunID: "utf8", Status: StatusRunning}
	r.Finish(time.Now(), errors.New(msg))

	assert.True(t, utf8.ValidString(r.Error))
	assert.LessOrEqual(t, len(r.Error), maxErrorLen)
	assert.Equal(t, maxErrorLen-1, len(r.Error))
	assert.True(t, strings.HasPrefix(msg, r.Error))
}
