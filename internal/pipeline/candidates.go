package pipeline

import (
	"context"
	"fmt"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/blocking"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/candidates"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/evaluate"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/vectorspace"
)

// CandidateReport summarizes one candidate-generation run.
type CandidateReport struct {
	RunID         string
	RetrievalOnly bool
	Sources       int
	Pairs         int
	BlockingKeys  int
	RecallAtK     map[int]float64
}

// RunCandidates builds the target vector space and produces ranked
// candidate lists for every source record. The default two-stage mode
// unions blocking-index lookups with global retrieval; retrievalOnly
// skips blocking and ranks the whole target corpus instead.
func (p *Pipeline) RunCandidates(ctx context.Context, retrievalOnly bool) (CandidateReport, error) {
	c, err := p.loadCorpus()
	if err != nil {
		return CandidateReport{}, err
	}

	space := vectorspace.Fit(c.targetTexts, p.vectorOptions())
	merger := candidates.NewMerger(space, c.targetIDs, c.targetTexts, p.cfg.Retrieval.TopK, p.logger)

	report := CandidateReport{
		RetrievalOnly: retrievalOnly,
		Sources:       len(c.sourceIDs),
		RecallAtK:     make(map[int]float64, len(recallCutoffs)),
	}

	var index *blocking.Index
	if !retrievalOnly {
		index = blocking.BuildIndex(c.targetIDs, c.targetTexts, p.cfg.Blocking.PrefixTokens, p.logger)
		report.BlockingKeys = index.KeyCount()
	}

	var all []candidates.Pair
	for i, sourceID := range c.sourceIDs {
		sourceText := c.sourceTexts[i]
		var pairs []candidates.Pair
		if retrievalOnly {
			pairs = merger.RankRetrievalOnly(sourceID, sourceText)
		} else {
			blockIDs := index.Lookup(sourceText, p.cfg.Blocking.MinCandidates)
			pairs = merger.Merge(sourceID, sourceText, blockIDs, p.cfg.Retrieval.GlobalTopK)
		}
		all = append(all, pairs...)
	}
	report.Pairs = len(all)

	grouped := candidates.GroupBySource(all)
	for _, k := range recallCutoffs {
		report.RecallAtK[k] = evaluate.RecallAtK(grouped, c.truth, k)
	}

	run, err := p.store.CreateRun(ctx, results.RunCandidates, map[string]any{
		"retrieval_only": retrievalOnly,
		"top_k":          p.cfg.Retrieval.TopK,
		"global_top_k":   p.cfg.Retrieval.GlobalTopK,
		"prefix_tokens":  p.cfg.Blocking.PrefixTokens,
		"min_candidates": p.cfg.Blocking.MinCandidates,
	})
	if err != nil {
		return CandidateReport{}, err
	}
	report.RunID = run.ID

	if err := p.store.InsertCandidates(ctx, run.ID, all); err != nil {
		return CandidateReport{}, fmt.Errorf("persist candidates: %w", err)
	}

	metrics := map[string]any{
		"sources": report.Sources,
		"pairs":   report.Pairs,
	}
	for _, k := range recallCutoffs {
		metrics[fmt.Sprintf("recall_at_%d", k)] = report.RecallAtK[k]
	}
	if err := p.store.FinishRun(ctx, run.ID, metrics); err != nil {
		return CandidateReport{}, fmt.Errorf("record candidate metrics: %w", err)
	}

	p.logger.Info("candidate generation complete",
		logging.Args(
			logging.String("run_id", run.ID),
			logging.Bool("retrieval_only", retrievalOnly),
			logging.Int("pairs", report.Pairs),
			logging.Float64("recall_at_50", report.RecallAtK[50]),
		)...)
	return report, nil
}
