package pipeline

import (
	"context"
	"io"

	"github.com/dvloznov/valueinc-sales/internal/export"
)

// StorageService opens the pipeline's input files.
type StorageService interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Sink receives the cleaned table once every stage has run.
type Sink = export.Sink
