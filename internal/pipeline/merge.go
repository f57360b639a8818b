package pipeline

import (
	"fmt"

	"github.com/dvloznov/valueinc-sales/internal/frame"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// MergeSeasons inner-joins sales with the season reference on Month.
//
// Output rows follow the order of the sales rows; a sales row matching k
// reference rows appears k times, and one matching none is dropped. The key
// column appears once. Other column names present on both sides get the
// suffixes _x (sales) and _y (reference).
func MergeSeasons(sales, seasons *frame.Frame) (*frame.Frame, error) {
	if err := sales.Require(ColMonth); err != nil {
		return nil, fmt.Errorf("MergeSeasons: sales: %w", err)
	}
	if err := seasons.Require(ColMonth); err != nil {
		return nil, fmt.Errorf("MergeSeasons: seasons: %w", err)
	}

	matches := make(map[string][]int, seasons.Len())
	for j := 0; j < seasons.Len(); j++ {
		m := seasons.Value(j, ColMonth)
		matches[m] = append(matches[m], j)
	}

	var leftRows, rightRows []int
	for i := 0; i < sales.Len(); i++ {
		for _, j := range matches[sales.Value(i, ColMonth)] {
			leftRows = append(leftRows, i)
			rightRows = append(rightRows, j)
		}
	}

	right, err := seasons.Drop(ColMonth)
	if err != nil {
		return nil, fmt.Errorf("MergeSeasons: %w", err)
	}

	left := sales
	leftRename := map[string]string{}
	rightRename := map[string]string{}
	for _, name := range right.Columns() {
		if left.Has(name) {
			leftRename[name] = name + leftSuffix
			rightRename[name] = name + rightSuffix
		}
	}
	if len(leftRename) > 0 {
		if left, err = left.Rename(leftRename); err != nil {
			return nil, fmt.Errorf("MergeSeasons: %w", err)
		}
		if right, err = right.Rename(rightRename); err != nil {
			return nil, fmt.Errorf("MergeSeasons: %w", err)
		}
	}

	merged, err := left.Take(leftRows).Concat(right.Take(rightRows))
	if err != nil {
		return nil, fmt.Errorf("MergeSeasons: %w", err)
	}
	return merged, nil
}

// PruneColumns drops the raw keyword blob and the date parts that Date and the
// season label now stand in for.
func PruneColumns(f *frame.Frame) (*frame.Frame, error) {
	out, err := f.Drop(prunedColumns...)
	if err != nil {
		return nil, fmt.Errorf("PruneColumns: %w", err)
	}
	return out, nil
}
