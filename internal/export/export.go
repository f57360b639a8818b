package export

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

// Sink receives the cleaned table at the end of a run.
type Sink interface {
	// Name identifies the sink in logs and errors.
	Name() string

	// Write stores f. runID identifies the run that produced it.
	Write(ctx context.Context, runID string, f *frame.Frame) error
}

// typedValue converts a cell to the Go value matching its column kind.
// Empty numeric and date cells become nil.
func typedValue(kind frame.Kind, v string) (any, error) {
	switch kind {
	case frame.KindFloat32:
		if v == "" {
			return nil, nil
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("float value %q: %w", v, err)
		}
		return x, nil
	case frame.KindInt16:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer value %q: %w", v, err)
		}
		return n, nil
	case frame.KindDate:
		if v == "" {
			return nil, nil
		}
		return v, nil
	default:
		return v, nil
	}
}

func kinds(f *frame.Frame) ([]frame.Kind, error) {
	cols := f.Columns()
	out := make([]frame.Kind, len(cols))
	for j, name := range cols {
		k, err := f.Kind(name)
		if err != nil {
			return nil, err
		}
		out[j] = k
	}
	return out, nil
}
