// Package candidates generates the ranked candidate list for each
// source record by merging blocking-index hits with global vector
// retrieval and re-scoring the union in the fitted vector space.
package candidates

import (
	"log/slog"
	"sort"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/vectorspace"
)

// Pair is one ranked candidate: a proposed (source, target) match with
// its similarity score and dense 1-based rank within the source
// record's list. Serialized texts ride along so verification never has
// to re-serialize.
type Pair struct {
	SourceID   string
	TargetID   string
	Rank       int
	Score      float64
	SourceText string
	TargetText string
}

// Merger re-scores merged candidate sets against the target corpus.
// The vector space must have been fitted over targetTexts in order.
type Merger struct {
	space       *vectorspace.Space
	targetIDs   []string
	targetTexts []string
	idToIndex   map[string]int
	topK        int
	logger      *slog.Logger
}

// NewMerger builds a merger over the fitted target corpus. topK bounds
// every per-source candidate list.
func NewMerger(space *vectorspace.Space, targetIDs, targetTexts []string, topK int, logger *slog.Logger) *Merger {
	idToIndex := make(map[string]int, len(targetIDs))
	for i, id := range targetIDs {
		idToIndex[id] = i
	}
	return &Merger{
		space:       space,
		targetIDs:   targetIDs,
		targetTexts: targetTexts,
		idToIndex:   idToIndex,
		topK:        topK,
		logger:      logging.NewComponentLogger(logger, "candidates"),
	}
}

// Merge unions the blocking-index candidates with the global top
// globalTopK retrieval results for the source record (globalTopK <= 0
// disables global retrieval), re-scores the union in the vector space,
// and returns the top candidates with dense 1-based ranks. An empty
// union falls back to the entire target corpus so a source record
// always gets candidates; ties keep target corpus order.
func (m *Merger) Merge(sourceID, sourceText string, blockIDs map[string]struct{}, globalTopK int) []Pair {
	union := make(map[int]struct{})
	if globalTopK > 0 {
		for _, scored := range m.space.RankAll(sourceText, globalTopK) {
			union[scored.Index] = struct{}{}
		}
	}
	for id := range blockIDs {
		if idx, ok := m.idToIndex[id]; ok {
			union[idx] = struct{}{}
		}
	}

	subset := make([]int, 0, len(union))
	if len(union) == 0 {
		// Blocking and global retrieval both came up empty; scan the
		// whole corpus rather than return nothing.
		m.logger.Debug("candidate union empty, falling back to full corpus",
			logging.String("source_id", sourceID))
		for i := range m.targetIDs {
			subset = append(subset, i)
		}
	} else {
		for idx := range union {
			subset = append(subset, idx)
		}
		// Deterministic tie-breaking: score in corpus order.
		sort.Ints(subset)
	}

	ranked := m.space.RankSubset(sourceText, subset, m.topK)

	pairs := make([]Pair, 0, len(ranked))
	for i, scored := range ranked {
		pairs = append(pairs, Pair{
			SourceID:   sourceID,
			TargetID:   m.targetIDs[scored.Index],
			Rank:       i + 1,
			Score:      scored.Score,
			SourceText: sourceText,
			TargetText: m.targetTexts[scored.Index],
		})
	}
	return pairs
}

// RankRetrievalOnly ranks the source record against the whole target
// corpus without blocking, for the retrieval-only pipeline mode.
func (m *Merger) RankRetrievalOnly(sourceID, sourceText string) []Pair {
	ranked := m.space.RankAll(sourceText, m.topK)

	pairs := make([]Pair, 0, len(ranked))
	for i, scored := range ranked {
		pairs = append(pairs, Pair{
			SourceID:   sourceID,
			TargetID:   m.targetIDs[scored.Index],
			Rank:       i + 1,
			Score:      scored.Score,
			SourceText: sourceText,
			TargetText: m.targetTexts[scored.Index],
		})
	}
	return pairs
}

// GroupBySource partitions candidate pairs by source id, preserving
// rank order within each group.
func GroupBySource(pairs []Pair) map[string][]Pair {
	grouped := make(map[string][]Pair)
	for _, p := range pairs {
		grouped[p.SourceID] = append(grouped[p.SourceID], p)
	}
	for _, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Rank < group[j].Rank
		})
	}
	return grouped
}
