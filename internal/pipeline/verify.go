package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/candidates"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/catalog"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/evaluate"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/gate"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

// VerifyReport summarizes one verification run over stored candidates.
type VerifyReport struct {
	RunID             string
	CandidatesRunID   string
	Total             int
	AutoMatched       int
	AutoRejected      int
	Escalated         int
	VerifierFailures  int
	Matches           int
	Metrics           evaluate.Metrics
	RecallAtKVerified map[int]float64
	Verifier          verifier.Stats
}

// RunVerify gates the candidates of a previous run and escalates the
// uncertain band to the verifier. candidatesRunID selects the candidate
// set; empty means the most recent candidates run.
//
// A verifier failure on one pair downgrades that pair to no_match with
// zero confidence instead of aborting the run; the failure count is
// reported so a lossy run is visible.
func (p *Pipeline) RunVerify(ctx context.Context, v *verifier.Verifier, candidatesRunID string) (VerifyReport, error) {
	c, err := p.loadCorpus()
	if err != nil {
		return VerifyReport{}, err
	}

	if candidatesRunID == "" {
		latest, err := p.store.LatestRun(ctx, results.RunCandidates)
		if err != nil {
			return VerifyReport{}, err
		}
		if latest == nil {
			return VerifyReport{}, fmt.Errorf("no candidates run found; run 'ermatch candidates' first")
		}
		candidatesRunID = latest.ID
	}

	pairs, err := p.store.CandidatesForRun(ctx, candidatesRunID)
	if err != nil {
		return VerifyReport{}, err
	}
	if len(pairs) == 0 {
		return VerifyReport{}, fmt.Errorf("candidates run %s has no stored pairs", candidatesRunID)
	}

	thresholds := gate.Thresholds{High: p.cfg.Gate.HighConfidence, Low: p.cfg.Gate.LowConfidence}
	if err := thresholds.Validate(); err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{
		CandidatesRunID:   candidatesRunID,
		Total:             len(pairs),
		RecallAtKVerified: make(map[int]float64, len(recallCutoffs)),
	}

	labels := make([]results.FinalLabel, 0, len(pairs))
	var matched []candidates.Pair
	for _, pair := range pairs {
		decision := gate.Classify(pair.Score, thresholds)
		label := results.FinalLabel{
			SourceID:   pair.SourceID,
			TargetID:   pair.TargetID,
			Rank:       pair.Rank,
			Score:      pair.Score,
			Outcome:    string(decision.Outcome),
			Confidence: decision.Confidence,
		}

		switch decision.Outcome {
		case gate.AutoMatch:
			report.AutoMatched++
			label.Label = verifier.LabelMatch
		case gate.AutoReject:
			report.AutoRejected++
			label.Label = verifier.LabelNoMatch
		case gate.Escalate:
			report.Escalated++
			result, err := v.Verify(ctx, pair.SourceText, pair.TargetText)
			if err != nil {
				if ctx.Err() != nil {
					return VerifyReport{}, ctx.Err()
				}
				report.VerifierFailures++
				p.logger.Warn("verification failed",
					logging.Args(
						logging.String("source_id", pair.SourceID),
						logging.String("target_id", pair.TargetID),
						logging.Error(err),
					)...)
				label.Label = verifier.LabelNoMatch
				label.Confidence = 0
				label.Evidence = err.Error()
				break
			}
			label.Label = result.Label
			label.Confidence = result.Confidence
			label.Evidence = strings.Join(result.Evidence, "; ")
			label.Verified = true
		}

		if label.Label == verifier.LabelMatch {
			matched = append(matched, pair)
		}
		labels = append(labels, label)
	}
	report.Matches = len(matched)

	predicted := make(map[catalog.Pair]struct{}, len(matched))
	for _, pair := range matched {
		predicted[catalog.Pair{SourceID: pair.SourceID, TargetID: pair.TargetID}] = struct{}{}
	}
	report.Metrics = evaluate.PrecisionRecallF1(catalog.PairSet(c.truth), predicted)

	matchedGroups := candidates.GroupBySource(matched)
	for _, k := range recallCutoffs {
		report.RecallAtKVerified[k] = evaluate.RecallAtK(matchedGroups, c.truth, k)
	}

	run, err := p.store.CreateRun(ctx, results.RunVerify, map[string]any{
		"candidates_run_id": candidatesRunID,
		"high_confidence":   thresholds.High,
		"low_confidence":    thresholds.Low,
	})
	if err != nil {
		return VerifyReport{}, err
	}
	report.RunID = run.ID

	if err := p.store.InsertFinalLabels(ctx, run.ID, labels); err != nil {
		return VerifyReport{}, fmt.Errorf("persist final labels: %w", err)
	}

	report.Verifier = v.Stats()
	metrics := map[string]any{
		"total":             report.Total,
		"auto_matched":      report.AutoMatched,
		"auto_rejected":     report.AutoRejected,
		"escalated":         report.Escalated,
		"verifier_failures": report.VerifierFailures,
		"matches":           report.Matches,
		"precision":         report.Metrics.Precision,
		"recall":            report.Metrics.Recall,
		"f1":                report.Metrics.F1,
		"verifier_calls":    report.Verifier.Calls,
		"cache_hits":        report.Verifier.CacheHits,
		"tokens":            report.Verifier.Tokens,
	}
	for _, k := range recallCutoffs {
		metrics[fmt.Sprintf("recall_at_%d_verified", k)] = report.RecallAtKVerified[k]
	}
	if err := p.store.FinishRun(ctx, run.ID, metrics); err != nil {
		return VerifyReport{}, fmt.Errorf("record verify metrics: %w", err)
	}

	p.logger.Info("verification complete",
		logging.Args(
			logging.String("run_id", run.ID),
			logging.Int("escalated", report.Escalated),
			logging.Int("matches", report.Matches),
			logging.Float64("f1", report.Metrics.F1),
		)...)
	return report, nil
}

// EscalationRate is the fraction of candidate pairs that needed the
// verifier, the cost the gate saves over verifying everything.
func (r VerifyReport) EscalationRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Escalated) / float64(r.Total)
}
