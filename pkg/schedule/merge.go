package schedule

import (
	"errors"
	"fmt"
)

// ErrUnsorted is returned when an input sequence is out of order. The merger
// never re-sorts: an unsorted input means the upstream generator is broken
// and silently fixing it here would hide that.
var ErrUnsorted = errors.New("sequence is not sorted chronologically")

// Merge combines per-kind due sequences into one sequence ordered by
// (due date, kind priority). Inputs must already be sorted. The result is a
// new slice, the inputs are left intact.
func Merge(seqs ...[]AmountDue) ([]AmountDue, error) {
	total := 0
	for i, seq := range seqs {
		if !IsSorted(seq) {
			return nil, fmt.Errorf("due sequence %d: %w", i, ErrUnsorted)
		}
		total += len(seq)
	}

	merged := make([]AmountDue, 0, total)
	cursors := make([]int, len(seqs))
	for len(merged) < total {
		next := -1
		for i, seq := range seqs {
			if cursors[i] >= len(seq) {
				continue
			}
			if next == -1 || Less(seq[cursors[i]], seqs[next][cursors[next]]) {
				next = i
			}
		}
		merged = append(merged, seqs[next][cursors[next]])
		cursors[next]++
	}
	return merged, nil
}
