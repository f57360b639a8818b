package pipeline

import (
	"errors"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

var (
	// ErrMissingColumn is returned when a stage needs a column the table lacks.
	ErrMissingColumn = frame.ErrMissingColumn

	// ErrParseNumber is returned for price or quantity cells that are not numbers.
	ErrParseNumber = errors.New("invalid number")

	// ErrKeywordParts is returned when ClientKeywords does not hold exactly three parts.
	ErrKeywordParts = errors.New("client keywords must have exactly 3 parts")

	// ErrQuantityRange is returned when a quantity does not fit in an int16.
	ErrQuantityRange = errors.New("quantity out of int16 range")

	// ErrParseDate is returned for date or time cells that cannot be parsed.
	ErrParseDate = errors.New("invalid date or time")
)
