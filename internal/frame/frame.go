package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when an operation names a column the frame does not have.
var ErrMissingColumn = errors.New("missing column")

// Kind is the storage class of a column. Cells are always held as text;
// the kind records how they were coerced and how sinks should type them.
type Kind int

const (
	// KindRaw is a column exactly as it was read.
	KindRaw Kind = iota
	// KindCategory is a low-cardinality label column.
	KindCategory
	// KindFloat32 is a reduced-precision floating point column.
	KindFloat32
	// KindString is a free text column.
	KindString
	// KindInt16 is a small signed integer column.
	KindInt16
	// KindDate is a calendar date rendered as YYYY-MM-DD.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindCategory:
		return "category"
	case KindFloat32:
		return "float32"
	case KindString:
		return "string"
	case KindInt16:
		return "int16"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Frame is an immutable, column-major table snapshot.
// Every method that changes shape or content returns a new Frame; column
// slices are shared between snapshots and are never written after creation.
type Frame struct {
	names []string
	kinds []Kind
	cols  [][]string
	index map[string]int
	nrows int
}

// New builds a frame from a header and row-major records.
func New(header []string, records [][]string) (*Frame, error) {
	if err := checkHeader(header); err != nil {
		return nil, fmt.Errorf("frame.New: %w", err)
	}

	cols := make([][]string, len(header))
	for j := range cols {
		cols[j] = make([]string, len(records))
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("frame.New: row %d has %d fields, want %d", i, len(rec), len(header))
		}
		for j, v := range rec {
			cols[j][i] = v
		}
	}

	return build(append([]string(nil), header...), make([]Kind, len(header)), cols, len(records)), nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			return errors.New("empty column name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
	}
	return nil
}

func build(names []string, kinds []Kind, cols [][]string, nrows int) *Frame {
	index := make(map[string]int, len(names))
	for j, name := range names {
		index[name] = j
	}
	return &Frame{names: names, kinds: kinds, cols: cols, index: index, nrows: nrows}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.nrows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.names) }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether the frame has the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Kind returns the kind of the named column.
func (f *Frame) Kind(name string) (Kind, error) {
	j, ok := f.index[name]
	if !ok {
		return KindRaw, fmt.Errorf("%w %q", ErrMissingColumn, name)
	}
	return f.kinds[j], nil
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
	}
	return append([]string(nil), f.cols[j]...), nil
}

// Require returns an error wrapping ErrMissingColumn for the first absent name.
func (f *Frame) Require(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return nil
}

// Value returns the cell at row i of the named column.
// It panics if the column does not exist or i is out of range.
func (f *Frame) Value(i int, name string) string {
	return f.cols[f.index[name]][i]
}

// Row returns a copy of row i in column order.
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.cols))
	for j, col := range f.cols {
		row[j] = col[i]
	}
	return row
}

// Count returns how many cells of the named column equal value.
func (f *Frame) Count(name, value string) int {
	j, ok := f.index[name]
	if !ok {
		return 0
	}
	n := 0
	for _, v := range f.cols[j] {
		if v == value {
			n++
		}
	}
	return n
}

// EmptyCounts returns the number of empty cells per column, omitting columns without any.
func (f *Frame) EmptyCounts() map[string]int {
	out := make(map[string]int)
	for j, col := range f.cols {
		for _, v := range col {
			if v == "" {
				out[f.names[j]]++
			}
		}
	}
	return out
}

// WithColumn returns a frame with the named column set to values and kind.
// An existing column is replaced in place; a new one is appended.
func (f *Frame) WithColumn(name string, kind Kind, values []string) (*Frame, error) {
	if name == "" {
		return nil, errors.New("WithColumn: empty column name")
	}
	if len(values) != f.nrows {
		return nil, fmt.Errorf("WithColumn %q: got %d values, want %d", name, len(values), f.nrows)
	}

	names := append([]string(nil), f.names...)
	kinds := append([]Kind(nil), f.kinds...)
	cols := append([][]string(nil), f.cols...)
	col := append([]string(nil), values...)

	if j, ok := f.index[name]; ok {
		kinds[j] = kind
		cols[j] = col
	} else {
		names = append(names, name)
		kinds = append(kinds, kind)
		cols = append(cols, col)
	}
	return build(names, kinds, cols, f.nrows), nil
}

// WithKind returns a frame with the named column's kind changed and values untouched.
func (f *Frame) WithKind(name string, kind Kind) (*Frame, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("WithKind: %w %q", ErrMissingColumn, name)
	}
	kinds := append([]Kind(nil), f.kinds...)
	kinds[j] = kind
	return build(append([]string(nil), f.names...), kinds, append([][]string(nil), f.cols...), f.nrows), nil
}

// Drop returns a frame without the named columns. Every name must exist.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	if err := f.Require(names...); err != nil {
		return nil, fmt.Errorf("Drop: %w", err)
	}
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}

	var (
		outNames []string
		outKinds []Kind
		outCols  [][]string
	)
	for j, name := range f.names {
		if skip[name] {
			continue
		}
		outNames = append(outNames, name)
		outKinds = append(outKinds, f.kinds[j])
		outCols = append(outCols, f.cols[j])
	}
	return build(outNames, outKinds, outCols, f.nrows), nil
}

// Take returns a frame holding the given rows in the given order.
// Indices may repeat.
func (f *Frame) Take(rows []int) *Frame {
	cols := make([][]string, len(f.cols))
	for j, src := range f.cols {
		col := make([]string, len(rows))
		for k, i := range rows {
			col[k] = src[i]
		}
		cols[j] = col
	}
	return build(append([]string(nil), f.names...), append([]Kind(nil), f.kinds...), cols, len(rows))
}

// RowKey returns a string that is equal for two rows exactly when all their cells are equal.
func (f *Frame) RowKey(i int) string {
	var b strings.Builder
	for _, col := range f.cols {
		v := col[i]
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// Concat returns a frame with the columns of f followed by the columns of other.
// Both frames must have the same number of rows and no shared column names.
func (f *Frame) Concat(other *Frame) (*Frame, error) {
	if other.nrows != f.nrows {
		return nil, fmt.Errorf("Concat: row counts differ: %d vs %d", f.nrows, other.nrows)
	}
	names := append(append([]string(nil), f.names...), other.names...)
	if err := checkHeader(names); err != nil {
		return nil, fmt.Errorf("Concat: %w", err)
	}
	kinds := append(append([]Kind(nil), f.kinds...), other.kinds...)
	cols := append(append([][]string(nil), f.cols...), other.cols...)
	return build(names, kinds, cols, f.nrows), nil
}

// Rename returns a frame with columns renamed per mapping. Unmapped columns keep their names.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	names := make([]string, len(f.names))
	for j, name := range f.names {
		if to, ok := mapping[name]; ok {
			names[j] = to
		} else {
			names[j] = name
		}
	}
	if err := checkHeader(names); err != nil {
		return nil, fmt.Errorf("Rename: %w", err)
	}
	return build(names, append([]Kind(nil), f.kinds...), append([][]string(nil), f.cols...), f.nrows), nil
}
