package evaluate

import "github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"

// ScoredPair is a labeled candidate pair with its lexical similarity,
// the input shape of the baseline threshold sweep.
type ScoredPair struct {
	catalog.Pair
	Score float64
}

// SweepRow is one threshold evaluated during a sweep.
type SweepRow struct {
	Threshold float64
	Metrics
	Predicted int
}

// DefaultSweepThresholds returns the baseline sweep grid, 0.00 through
// 0.95 in steps of 0.05.
func DefaultSweepThresholds() []float64 {
	thresholds := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		thresholds = append(thresholds, float64(i)*0.05)
	}
	return thresholds
}

// Sweep scores the pairs at every threshold: a pair is predicted a
// match when its score meets or exceeds the threshold. Gold is the set
// of true-match pairs among the inputs.
func Sweep(scored []ScoredPair, gold map[catalog.Pair]struct{}, thresholds []float64) []SweepRow {
	rows := make([]SweepRow, 0, len(thresholds))
	for _, threshold := range thresholds {
		predicted := make(map[catalog.Pair]struct{})
		for _, pair := range scored {
			if pair.Score >= threshold {
				predicted[pair.Pair] = struct{}{}
			}
		}
		rows = append(rows, SweepRow{
			Threshold: threshold,
			Metrics:   PrecisionRecallF1(gold, predicted),
			Predicted: len(predicted),
		})
	}
	return rows
}

// BestByF1 returns the sweep row with the highest F1, preferring the
// lowest qualifying threshold on ties. Returns a zero row for empty
// input.
func BestByF1(rows []SweepRow) SweepRow {
	var best SweepRow
	for i, row := range rows {
		if i == 0 || row.F1 > best.F1 {
			best = row
		}
	}
	return best
}
