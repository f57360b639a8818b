package pipeline

import (
	"fmt"
	"sort"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

// requiredTransactionColumns are read by at least one stage.
var requiredTransactionColumns = []string{
	ColCostPerItem, ColSellingPrice, ColQuantity, ColClientKeywords,
	ColYear, ColMonth, ColDay, ColTime,
}

// ValidateTransactions checks that the transaction table has every column a stage reads.
func ValidateTransactions(f *frame.Frame) error {
	if err := f.Require(requiredTransactionColumns...); err != nil {
		return fmt.Errorf("transactions: %w", err)
	}
	return nil
}

// ValidateSeasons checks that the season reference has a Month key and at
// least one column to contribute.
func ValidateSeasons(f *frame.Frame) error {
	if err := f.Require(ColMonth); err != nil {
		return fmt.Errorf("seasons: %w", err)
	}
	if f.Width() < 2 {
		return fmt.Errorf("seasons: no columns besides %s", ColMonth)
	}
	return nil
}

// DuplicateMonths returns the months that appear on more than one season row, sorted.
// Sales rows in those months are repeated by the merge.
func DuplicateMonths(f *frame.Frame) []string {
	counts := make(map[string]int, f.Len())
	for i := 0; i < f.Len(); i++ {
		counts[f.Value(i, ColMonth)]++
	}

	var dups []string
	for month, n := range counts {
		if n > 1 {
			dups = append(dups, month)
		}
	}
	sort.Strings(dups)
	return dups
}
