package project747

import "github.com/Michiel29/project747/types"

// UnigramOverlap
// Clipped unigram precision of candidate against reference: each candidate
// token counts at most as often as it occurs in the reference. An empty
// candidate scores 0.
func UnigramOverlap(candidate types.Tokens, reference types.Tokens) float64 {
	if len(candidate) == 0 {
		return 0
	}
	counts := make(map[types.Token]int, len(reference))
	for _, token := range reference {
		counts[token]++
	}
	matched := 0
	for _, token := range candidate {
		if counts[token] > 0 {
			counts[token]--
			matched++
		}
	}
	return float64(matched) / float64(len(candidate))
}

// MeanReciprocalRank
// ranked holds candidate indices best first, one ranking per query, and gold
// the correct index of each query. A query whose gold index is missing from
// its ranking contributes 0.
func MeanReciprocalRank(ranked [][]int, gold []int) float64 {
	if len(ranked) == 0 {
		return 0
	}
	total := 0.0
	for queryIdx, ranking := range ranked {
		if queryIdx >= len(gold) {
			break
		}
		for position, candIdx := range ranking {
			if candIdx == gold[queryIdx] {
				total += 1.0 / float64(position+1)
				break
			}
		}
	}
	return total / float64(len(ranked))
}
