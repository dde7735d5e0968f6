package reconcile

import "math"

// Score reduces a comparison list to a 0-100 score and a disposition. Any single
// mismatch forces needs_review; there is no partial-pass threshold.
func Score(comparisons []FieldComparison) (int, Disposition) {
	matchCount := 0
	for _, c := range comparisons {
		if c.Match {
			matchCount++
		}
	}
	score := int(math.Round(float64(matchCount) / FieldCount * 100))
	if matchCount == FieldCount {
		return score, DispositionMatched
	}
	return score, DispositionNeedsReview
}
