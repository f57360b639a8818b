package export

import (
	"context"
	"fmt"

	"github.com/dvloznov/valueinc-sales/internal/frame"
	"github.com/dvloznov/valueinc-sales/internal/storage"
)

// CSVSink writes the table as comma-separated text with a header and no index column.
type CSVSink struct {
	storage  storage.Service
	location string
}

// NewCSVSink creates a CSVSink writing to location through svc.
func NewCSVSink(svc storage.Service, location string) *CSVSink {
	return &CSVSink{storage: svc, location: location}
}

func (s *CSVSink) Name() string { return "csv" }

// Write replaces the file at the sink's location. If writing fails the
// writer's context is canceled before Close, so a Cloud Storage upload is
// abandoned instead of committing a partial object.
func (s *CSVSink) Write(ctx context.Context, runID string, f *frame.Frame) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.storage.Create(wctx, s.location)
	if err != nil {
		return fmt.Errorf("CSVSink: %w", err)
	}
	if err := frame.WriteCSV(w, f, ','); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("CSVSink: write %q: %w", s.location, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("CSVSink: close %q: %w", s.location, err)
	}
	return nil
}
