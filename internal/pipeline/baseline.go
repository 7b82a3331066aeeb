package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/evaluate"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/vectorspace"
)

// BaselineReport summarizes one lexical baseline run. Latency and
// throughput cover the similarity scoring pass over the gold pairs,
// the part of the baseline whose cost scales with the pair count.
type BaselineReport struct {
	RunID                 string
	Positives             int
	Negatives             int
	ScoredPairs           int
	AvgLatencySeconds     float64
	ThroughputPairsPerSec float64
	Rows                  []evaluate.SweepRow
	Best                  evaluate.SweepRow
}

// RunBaseline generates the labeled gold set, scores every pair by
// n-gram cosine similarity in a space fitted over both catalogs, and
// sweeps the decision threshold.
func (p *Pipeline) RunBaseline(ctx context.Context) (BaselineReport, error) {
	c, err := p.loadCorpus()
	if err != nil {
		return BaselineReport{}, err
	}

	gold := catalog.GenerateGold(c.truth, c.targetIDs, p.cfg.Gold.NegativesPerPositive, p.cfg.Gold.Seed)
	report := BaselineReport{}
	for _, pair := range gold {
		if pair.Label == 1 {
			report.Positives++
		} else {
			report.Negatives++
		}
	}
	p.logger.Info("gold pairs generated",
		logging.Args(
			logging.Int("positives", report.Positives),
			logging.Int("negatives", report.Negatives),
		)...)

	combined := make([]string, 0, len(c.sourceTexts)+len(c.targetTexts))
	combined = append(combined, c.sourceTexts...)
	combined = append(combined, c.targetTexts...)
	space := vectorspace.Fit(combined, p.vectorOptions())

	sourceText := c.sourceTextByID()
	targetText := c.targetTextByID()
	goldSet := make(map[catalog.Pair]struct{})
	scored := make([]evaluate.ScoredPair, 0, len(gold))
	scoringStart := time.Now()
	for _, pair := range gold {
		source, ok := sourceText[pair.SourceID]
		if !ok {
			continue
		}
		target, ok := targetText[pair.TargetID]
		if !ok {
			continue
		}
		scored = append(scored, evaluate.ScoredPair{
			Pair:  pair.Pair,
			Score: space.Similarity(source, target),
		})
		if pair.Label == 1 {
			goldSet[pair.Pair] = struct{}{}
		}
	}

	scoringElapsed := time.Since(scoringStart)
	report.ScoredPairs = len(scored)
	if len(scored) > 0 && scoringElapsed > 0 {
		report.AvgLatencySeconds = scoringElapsed.Seconds() / float64(len(scored))
		report.ThroughputPairsPerSec = float64(len(scored)) / scoringElapsed.Seconds()
	}

	report.Rows = evaluate.Sweep(scored, goldSet, evaluate.DefaultSweepThresholds())
	report.Best = evaluate.BestByF1(report.Rows)

	run, err := p.store.CreateRun(ctx, results.RunBaseline, map[string]any{
		"negatives_per_positive": p.cfg.Gold.NegativesPerPositive,
		"seed":                   p.cfg.Gold.Seed,
		"min_ngram":              p.cfg.Retrieval.MinNGram,
		"max_ngram":              p.cfg.Retrieval.MaxNGram,
		"min_df":                 p.cfg.Retrieval.MinDF,
	})
	if err != nil {
		return BaselineReport{}, err
	}
	report.RunID = run.ID

	if err := p.store.FinishRun(ctx, run.ID, map[string]any{
		"positives":                report.Positives,
		"negatives":                report.Negatives,
		"scored_pairs":             report.ScoredPairs,
		"avg_latency_sec":          report.AvgLatencySeconds,
		"throughput_pairs_per_sec": report.ThroughputPairsPerSec,
		"best_threshold":           report.Best.Threshold,
		"best_precision":           report.Best.Precision,
		"best_recall":              report.Best.Recall,
		"best_f1":                  report.Best.F1,
	}); err != nil {
		return BaselineReport{}, fmt.Errorf("record baseline metrics: %w", err)
	}

	p.logger.Info("baseline sweep complete",
		logging.Args(
			logging.String("run_id", run.ID),
			logging.Float64("best_threshold", report.Best.Threshold),
			logging.Float64("best_f1", report.Best.F1),
		)...)
	return report, nil
}
