package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

func mustFrame(t *testing.T, header []string, rows ...[]string) *frame.Frame {
	t.Helper()
	f, err := frame.New(header, rows)
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}
	return f
}

func TestValidateTransactions(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{
			name:    "all source columns",
			header:  salesHeader,
			wantErr: false,
		},
		{
			name:    "extra columns are fine",
			header:  append(append([]string(nil), salesHeader...), "Extra"),
			wantErr: false,
		},
		{
			name:    "missing keywords",
			header:  []string{ColCostPerItem, ColSellingPrice, ColQuantity, ColYear, ColMonth, ColDay, ColTime},
			wantErr: true,
		},
		{
			name:    "empty header",
			header:  []string{"Other"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransactions(mustFrame(t, tt.header))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransactions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMissingColumn) {
				t.Errorf("expected ErrMissingColumn, got %v", err)
			}
		})
	}
}

func TestValidateSeasons(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr bool
	}{
		{name: "month and season", header: []string{ColMonth, "Season"}, wantErr: false},
		{name: "month only", header: []string{ColMonth}, wantErr: true},
		{name: "no month", header: []string{"Season"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeasons(mustFrame(t, tt.header))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeasons() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuplicateMonths(t *testing.T) {
	f := mustFrame(t, []string{ColMonth, "Season"},
		[]string{"May", "Spring"},
		[]string{"Jan", "Winter"},
		[]string{"May", "Summer"},
		[]string{"Jan", "Holiday"},
		[]string{"Feb", "Winter"},
	)

	got := DuplicateMonths(f)
	want := []string{"Jan", "May"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DuplicateMonths() = %v, want %v", got, want)
	}

	if dups := DuplicateMonths(mustFrame(t, []string{ColMonth, "Season"}, []string{"May", "Spring"})); len(dups) != 0 {
		t.Errorf("expected no duplicates, got %v", dups)
	}
}
