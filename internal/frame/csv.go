package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// ReadCSV parses a delimited stream whose first record is the header.
// Ragged rows and bad quoting are errors.
func ReadCSV(r io.Reader, delimiter rune) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("ReadCSV: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}

	f, err := New(header, records)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}
	return f, nil
}

// WriteCSV writes the header and all rows, without a row index column.
func WriteCSV(w io.Writer, f *Frame, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(f.names); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for i := 0; i < f.nrows; i++ {
		if err := cw.Write(f.Row(i)); err != nil {
			return fmt.Errorf("WriteCSV: row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
