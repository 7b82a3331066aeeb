// Package evaluate computes pair-level quality metrics against ground
// truth: precision/recall/F1 for final match decisions, recall@K for
// candidate lists, and threshold sweeps for the lexical baseline.
package evaluate

import (
	"github.com/zzkhangg/entity-resolution-mini-project/internal/candidates"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"
)

// Metrics holds pair-level classification quality. Zero denominators
// yield 0 rather than an error; sparse predictions are an expected
// outcome, not a failure.
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64
}

// PrecisionRecallF1 scores a predicted match set against the gold set.
func PrecisionRecallF1(gold, predicted map[catalog.Pair]struct{}) Metrics {
	truePositives := 0
	for pair := range predicted {
		if _, ok := gold[pair]; ok {
			truePositives++
		}
	}

	var m Metrics
	if len(predicted) > 0 {
		m.Precision = float64(truePositives) / float64(len(predicted))
	}
	if len(gold) > 0 {
		m.Recall = float64(truePositives) / float64(len(gold))
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// RecallAtK reports the fraction of gold pairs whose target id appears
// within the first k ranks of the corresponding source's candidate
// list. Candidate groups must be rank-ordered (GroupBySource
// guarantees this). Monotonically non-decreasing in k.
func RecallAtK(grouped map[string][]candidates.Pair, gold []catalog.Pair, k int) float64 {
	if len(gold) == 0 {
		return 0
	}
	hits := 0
	for _, pair := range gold {
		group, ok := grouped[pair.SourceID]
		if !ok {
			continue
		}
		limit := k
		if limit > len(group) {
			limit = len(group)
		}
		for _, candidate := range group[:limit] {
			if candidate.TargetID == pair.TargetID {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(gold))
}
