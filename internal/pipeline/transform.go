package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/valueinc-sales/internal/frame"
	"github.com/shopspring/decimal"
)

// DropDuplicates removes rows that are equal to an earlier row in every column.
// The first occurrence is kept and the remaining rows are renumbered contiguously.
func DropDuplicates(f *frame.Frame) *frame.Frame {
	seen := make(map[string]struct{}, f.Len())
	keep := make([]int, 0, f.Len())

	for i := 0; i < f.Len(); i++ {
		key := f.RowKey(i)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	if len(keep) == f.Len() {
		return f
	}
	return f.Take(keep)
}

// AddDerivedFields appends TransactionTotal, CostPerTransaction,
// ProfitPerTransaction and MarginPerTransaction.
//
// Arithmetic is exact decimal. The margin is profit over cost rounded
// half-to-even to MarginPlaces, and is 0.00 whenever the cost is zero.
func AddDerivedFields(f *frame.Frame) (*frame.Frame, error) {
	if err := f.Require(ColCostPerItem, ColSellingPrice, ColQuantity); err != nil {
		return nil, fmt.Errorf("AddDerivedFields: %w", err)
	}

	n := f.Len()
	totals := make([]string, n)
	costs := make([]string, n)
	profits := make([]string, n)
	margins := make([]string, n)

	for i := 0; i < n; i++ {
		price, err := decimalAt(f, i, ColSellingPrice)
		if err != nil {
			return nil, fmt.Errorf("AddDerivedFields: %w", err)
		}
		unitCost, err := decimalAt(f, i, ColCostPerItem)
		if err != nil {
			return nil, fmt.Errorf("AddDerivedFields: %w", err)
		}
		qty, err := decimalAt(f, i, ColQuantity)
		if err != nil {
			return nil, fmt.Errorf("AddDerivedFields: %w", err)
		}

		total, cost, profit, margin := deriveAmounts(price, unitCost, qty)
		totals[i] = total.String()
		costs[i] = cost.String()
		profits[i] = profit.String()
		margins[i] = margin.StringFixed(MarginPlaces)
	}

	return withColumns(f, frame.KindRaw, []string{ColTransactionTotal, ColCostTotal, ColProfit, ColMargin},
		totals, costs, profits, margins)
}

func deriveAmounts(price, unitCost, qty decimal.Decimal) (total, cost, profit, margin decimal.Decimal) {
	total = price.Mul(qty)
	cost = unitCost.Mul(qty)
	profit = total.Sub(cost)
	margin = decimal.Zero
	if !cost.IsZero() {
		margin = profit.Div(cost).RoundBank(MarginPlaces)
	}
	return total, cost, profit, margin
}

func decimalAt(f *frame.Frame, row int, col string) (decimal.Decimal, error) {
	raw := f.Value(row, col)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("row %d column %s: %w: %q", row, col, ErrParseNumber, raw)
	}
	return d, nil
}

// CorrectYear rewrites every InvalidYear in the Year column to CorrectedYear.
func CorrectYear(f *frame.Frame) (*frame.Frame, error) {
	years, err := f.Column(ColYear)
	if err != nil {
		return nil, fmt.Errorf("CorrectYear: %w", err)
	}
	kind, _ := f.Kind(ColYear)

	for i, y := range years {
		if y == InvalidYear {
			years[i] = CorrectedYear
		}
	}
	return f.WithColumn(ColYear, kind, years)
}

var keywordCleaner = strings.NewReplacer("[", "", "]", "", "'", "", `"`, "")

// SplitClientKeywords splits ClientKeywords, a list literal such as
// "[25,'New','Gold']", into ClientAge, ClientType and ClientLevel.
// A value that does not split into exactly three parts is an error.
func SplitClientKeywords(f *frame.Frame) (*frame.Frame, error) {
	blobs, err := f.Column(ColClientKeywords)
	if err != nil {
		return nil, fmt.Errorf("SplitClientKeywords: %w", err)
	}

	ages := make([]string, len(blobs))
	types := make([]string, len(blobs))
	levels := make([]string, len(blobs))

	for i, blob := range blobs {
		age, typ, level, err := splitKeywords(blob)
		if err != nil {
			return nil, fmt.Errorf("SplitClientKeywords: row %d: %w", i, err)
		}
		ages[i], types[i], levels[i] = age, typ, level
	}

	return withColumns(f, frame.KindRaw, []string{ColClientAge, ColClientType, ColClientLevel},
		ages, types, levels)
}

func splitKeywords(blob string) (age, typ, level string, err error) {
	parts := strings.Split(blob, ",")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: got %d in %q", ErrKeywordParts, len(parts), blob)
	}
	// Spaces after the commas are kept: "[25, 'New']" yields " New".
	for i, p := range parts {
		parts[i] = keywordCleaner.Replace(p)
	}
	return parts[0], parts[1], parts[2], nil
}

func withColumns(f *frame.Frame, kind frame.Kind, names []string, values ...[]string) (*frame.Frame, error) {
	out := f
	for k, name := range names {
		next, err := out.WithColumn(name, kind, values[k])
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
