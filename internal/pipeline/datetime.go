package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

const dateFormat = "2006-01-02"

// Month may be numeric or an English name; time.Parse matches names case-insensitively.
var dateLayouts = []string{
	"2006-1-2",
	"2006-Jan-2",
	"2006-January-2",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// DeriveDateTime adds Date, built from Year, Month and Day, and Hour, the
// hour of the Time column. Any cell that does not parse is an error.
func DeriveDateTime(f *frame.Frame) (*frame.Frame, error) {
	if err := f.Require(ColYear, ColMonth, ColDay, ColTime); err != nil {
		return nil, fmt.Errorf("DeriveDateTime: %w", err)
	}

	n := f.Len()
	dates := make([]string, n)
	hours := make([]string, n)

	for i := 0; i < n; i++ {
		d, err := parseDate(f.Value(i, ColYear), f.Value(i, ColMonth), f.Value(i, ColDay))
		if err != nil {
			return nil, fmt.Errorf("DeriveDateTime: row %d: %w", i, err)
		}
		dates[i] = d.Format(dateFormat)

		h, err := parseHour(f.Value(i, ColTime))
		if err != nil {
			return nil, fmt.Errorf("DeriveDateTime: row %d: %w", i, err)
		}
		hours[i] = strconv.Itoa(h)
	}

	out, err := f.WithColumn(ColDate, frame.KindDate, dates)
	if err != nil {
		return nil, fmt.Errorf("DeriveDateTime: %w", err)
	}
	return out.WithColumn(ColHour, frame.KindCategory, hours)
}

func parseDate(year, month, day string) (time.Time, error) {
	s := strings.TrimSpace(year) + "-" + strings.TrimSpace(month) + "-" + strings.TrimSpace(day)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrParseDate, s)
}

func parseHour(value string) (int, error) {
	s := strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), nil
		}
	}
	return 0, fmt.Errorf("%w: time %q", ErrParseDate, value)
}
