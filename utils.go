package project747

import (
	"sort"

	"github.com/Michiel29/project747/types"
)

// MaxLen returns the length of the longest sequence, 0 when there are none.
func MaxLen(seqs []types.Tokens) int {
	longest := 0
	for _, seq := range seqs {
		if len(seq) > longest {
			longest = len(seq)
		}
	}
	return longest
}

// PadSequences
// Copies seqs into rows of exactly width ids, right padded with pad.
// Sequences longer than width are truncated.
func PadSequences(seqs []types.Tokens, width int, pad types.Token) [][]int {
	rows := make([][]int, len(seqs))
	for seqIdx, seq := range seqs {
		row := make([]int, width)
		for idx := range row {
			if idx < len(seq) {
				row[idx] = int(seq[idx])
			} else {
				row[idx] = int(pad)
			}
		}
		rows[seqIdx] = row
	}
	return rows
}

// SortByLengthDesc
// Returns the permutation that orders lengths longest first (ties keep
// their original order) and its inverse: sorted[unsort[i]] is the i-th
// original row.
func SortByLengthDesc(lengths []int) (order []int, unsort []int) {
	order = make([]int, len(lengths))
	for idx := range order {
		order[idx] = idx
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lengths[order[i]] > lengths[order[j]]
	})
	unsort = make([]int, len(order))
	for position, from := range order {
		unsort[from] = position
	}
	return order, unsort
}

// Permute returns rows[perm[0]], rows[perm[1]], ...
func Permute[T any](rows []T, perm []int) []T {
	permuted := make([]T, len(perm))
	for position, from := range perm {
		permuted[position] = rows[from]
	}
	return permuted
}
