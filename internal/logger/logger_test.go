package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestNewWithOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantLevel zerolog.Level
		wantJSON  bool
	}{
		{name: "defaults", opts: Options{}, wantLevel: zerolog.InfoLevel},
		{name: "json debug", opts: Options{Level: "debug", Format: "json"}, wantLevel: zerolog.DebugLevel, wantJSON: true},
		{name: "upper case", opts: Options{Level: "WARN", Format: "JSON"}, wantLevel: zerolog.WarnLevel, wantJSON: true},
		{name: "unknown level", opts: Options{Level: "loud"}, wantLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewWithOptions(buf, tt.opts)
			if log.GetLevel() != tt.wantLevel {
				t.Errorf("level = %s, want %s", log.GetLevel(), tt.wantLevel)
			}

			log.Error().Msg("hello")
			isJSON := strings.HasPrefix(buf.String(), "{")
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithOptions(buf, Options{Level: "error", Format: "json"})

	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at error level, got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithRunIDAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithRunID(NewWithWriter(buf), "run-123")
	log = WithFields(log, map[string]interface{}{"step": "dedup"})

	log.Info().Msg("test message")

	output := buf.String()
	for _, want := range []string{`"run_id":"run-123"`, `"step":"dedup"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %s, got: %s", want, output)
		}
	}
}
