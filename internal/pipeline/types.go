package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

// NormalizeTypes assigns each known column its storage class.
//
// Category and string columns keep their values. Float columns are narrowed
// to float32 and rendered in shortest float32 form. The quantity column must
// fit in an int16. Columns outside every class are left as they are.
func NormalizeTypes(f *frame.Frame) (*frame.Frame, error) {
	if err := f.Require(ColQuantity); err != nil {
		return nil, fmt.Errorf("NormalizeTypes: %w", err)
	}

	out, err := toInt16(f, ColQuantity)
	if err != nil {
		return nil, fmt.Errorf("NormalizeTypes: %w", err)
	}

	for _, col := range categoryColumns {
		if out, err = retag(out, col, frame.KindCategory); err != nil {
			return nil, fmt.Errorf("NormalizeTypes: %w", err)
		}
	}
	for _, col := range stringColumns {
		if out, err = retag(out, col, frame.KindString); err != nil {
			return nil, fmt.Errorf("NormalizeTypes: %w", err)
		}
	}
	for _, col := range floatColumns {
		if !out.Has(col) {
			continue
		}
		if out, err = toFloat32(out, col); err != nil {
			return nil, fmt.Errorf("NormalizeTypes: %w", err)
		}
	}
	return out, nil
}

func retag(f *frame.Frame, col string, kind frame.Kind) (*frame.Frame, error) {
	if !f.Has(col) {
		return f, nil
	}
	return f.WithKind(col, kind)
}

func toInt16(f *frame.Frame, col string) (*frame.Frame, error) {
	values, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 16)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("row %d column %s: %w: %q", i, col, ErrQuantityRange, v)
			}
			return nil, fmt.Errorf("row %d column %s: %w: %q", i, col, ErrParseNumber, v)
		}
		values[i] = strconv.FormatInt(n, 10)
	}
	return f.WithColumn(col, frame.KindInt16, values)
}

func toFloat32(f *frame.Frame, col string) (*frame.Frame, error) {
	values, err := f.Column(col)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w: %q", i, col, ErrParseNumber, v)
		}
		values[i] = FormatFloat32(float32(x))
	}
	return f.WithColumn(col, frame.KindFloat32, values)
}

// FormatFloat32 renders v in its shortest float32 form, keeping a ".0" on integral values.
func FormatFloat32(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".NnIi") {
		s += ".0"
	}
	return s
}
