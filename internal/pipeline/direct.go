package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/evaluate"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/vectorspace"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

// DirectReport summarizes one LLM-direct baseline run. Latency and
// throughput are averaged over the verifier's answers, cached ones
// included, matching how the run would replay.
type DirectReport struct {
	RunID                 string
	Positives             int
	Negatives             int
	BlockThreshold        float64
	Candidates            int
	VerifierFailures      int
	Matches               int
	Metrics               evaluate.Metrics
	AvgLatencySeconds     float64
	ThroughputPairsPerSec float64
	Verifier              verifier.Stats
}

// RunDirect is the upper-bound baseline: it skips the confidence gate
// and sends every gold pair whose cosine similarity clears the block
// threshold straight to the verifier, then scores the verdicts against
// the gold positives. Verifier failures downgrade the pair to no_match
// with zero confidence, as in RunVerify.
func (p *Pipeline) RunDirect(ctx context.Context, v *verifier.Verifier) (DirectReport, error) {
	c, err := p.loadCorpus()
	if err != nil {
		return DirectReport{}, err
	}

	threshold := p.cfg.Direct.BlockThreshold
	if threshold < 0 || threshold > 1 {
		return DirectReport{}, fmt.Errorf("block threshold %v out of range [0, 1]", threshold)
	}

	gold := catalog.GenerateGold(c.truth, c.targetIDs, p.cfg.Gold.NegativesPerPositive, p.cfg.Gold.Seed)
	report := DirectReport{BlockThreshold: threshold}
	for _, pair := range gold {
		if pair.Label == 1 {
			report.Positives++
		} else {
			report.Negatives++
		}
	}

	combined := make([]string, 0, len(c.sourceTexts)+len(c.targetTexts))
	combined = append(combined, c.sourceTexts...)
	combined = append(combined, c.targetTexts...)
	space := vectorspace.Fit(combined, p.vectorOptions())

	sourceText := c.sourceTextByID()
	targetText := c.targetTextByID()
	goldSet := make(map[catalog.Pair]struct{})
	for _, pair := range gold {
		if pair.Label == 1 {
			goldSet[pair.Pair] = struct{}{}
		}
	}

	labels := make([]results.FinalLabel, 0, len(gold))
	predicted := make(map[catalog.Pair]struct{})
	var latencySum float64
	var answered int
	for _, pair := range gold {
		source, ok := sourceText[pair.SourceID]
		if !ok {
			continue
		}
		target, ok := targetText[pair.TargetID]
		if !ok {
			continue
		}
		score := space.Similarity(source, target)
		if score < threshold {
			continue
		}
		report.Candidates++

		label := results.FinalLabel{
			SourceID: pair.SourceID,
			TargetID: pair.TargetID,
			Score:    score,
			Outcome:  "direct",
		}
		result, err := v.Verify(ctx, source, target)
		if err != nil {
			if ctx.Err() != nil {
				return DirectReport{}, ctx.Err()
			}
			report.VerifierFailures++
			p.logger.Warn("verification failed",
				logging.Args(
					logging.String("source_id", pair.SourceID),
					logging.String("target_id", pair.TargetID),
					logging.Error(err),
				)...)
			label.Label = verifier.LabelNoMatch
			label.Evidence = err.Error()
		} else {
			label.Label = result.Label
			label.Confidence = result.Confidence
			label.Evidence = strings.Join(result.Evidence, "; ")
			label.Verified = true
			latencySum += result.LatencySeconds
			answered++
		}

		if label.Label == verifier.LabelMatch {
			predicted[pair.Pair] = struct{}{}
		}
		labels = append(labels, label)
	}
	report.Matches = len(predicted)
	report.Metrics = evaluate.PrecisionRecallF1(goldSet, predicted)
	if answered > 0 && latencySum > 0 {
		report.AvgLatencySeconds = latencySum / float64(answered)
		report.ThroughputPairsPerSec = 1 / report.AvgLatencySeconds
	}

	run, err := p.store.CreateRun(ctx, results.RunDirect, map[string]any{
		"block_threshold":        threshold,
		"negatives_per_positive": p.cfg.Gold.NegativesPerPositive,
		"seed":                   p.cfg.Gold.Seed,
		"min_ngram":              p.cfg.Retrieval.MinNGram,
		"max_ngram":              p.cfg.Retrieval.MaxNGram,
		"min_df":                 p.cfg.Retrieval.MinDF,
	})
	if err != nil {
		return DirectReport{}, err
	}
	report.RunID = run.ID

	if err := p.store.InsertFinalLabels(ctx, run.ID, labels); err != nil {
		return DirectReport{}, fmt.Errorf("persist direct labels: %w", err)
	}

	report.Verifier = v.Stats()
	if err := p.store.FinishRun(ctx, run.ID, map[string]any{
		"positives":                report.Positives,
		"negatives":                report.Negatives,
		"candidates":               report.Candidates,
		"matches":                  report.Matches,
		"verifier_failures":        report.VerifierFailures,
		"precision":                report.Metrics.Precision,
		"recall":                   report.Metrics.Recall,
		"f1":                       report.Metrics.F1,
		"avg_latency_sec":          report.AvgLatencySeconds,
		"throughput_pairs_per_sec": report.ThroughputPairsPerSec,
		"llm_calls":                report.Verifier.Calls,
		"cache_hits":               report.Verifier.CacheHits,
		"total_tokens":             report.Verifier.Tokens,
	}); err != nil {
		return DirectReport{}, fmt.Errorf("record direct metrics: %w", err)
	}

	p.logger.Info("direct baseline complete",
		logging.Args(
			logging.String("run_id", run.ID),
			logging.Int("candidates", report.Candidates),
			logging.Int("matches", report.Matches),
			logging.Float64("f1", report.Metrics.F1),
		)...)
	return report, nil
}
