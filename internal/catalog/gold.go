package catalog

import (
	"math/rand"
	"sort"
)

// GoldPair is a labeled evaluation pair: label 1 for a confirmed match
// from ground truth, label 0 for a sampled non-match.
type GoldPair struct {
	Pair
	Label int
}

// GenerateGold builds the labeled evaluation set for the lexical
// baseline: every ground-truth pair becomes a positive, and for each
// distinct source id up to negativesPerPositive target ids that are not
// true matches are sampled as negatives. Sampling is a pure function of
// the inputs and the seed; source ids are visited in sorted order so
// two runs with the same seed produce the same set.
func GenerateGold(groundTruth []Pair, targetIDs []string, negativesPerPositive int, seed int64) []GoldPair {
	gold := make([]GoldPair, 0, len(groundTruth)*(1+negativesPerPositive))
	for _, p := range groundTruth {
		gold = append(gold, GoldPair{Pair: p, Label: 1})
	}

	trueTargets := make(map[string]map[string]struct{})
	for _, p := range groundTruth {
		if trueTargets[p.SourceID] == nil {
			trueTargets[p.SourceID] = make(map[string]struct{})
		}
		trueTargets[p.SourceID][p.TargetID] = struct{}{}
	}

	sourceIDs := make([]string, 0, len(trueTargets))
	for id := range trueTargets {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Strings(sourceIDs)

	rng := rand.New(rand.NewSource(seed))
	for _, sourceID := range sourceIDs {
		candidates := make([]string, 0, len(targetIDs))
		for _, targetID := range targetIDs {
			if _, isMatch := trueTargets[sourceID][targetID]; !isMatch {
				candidates = append(candidates, targetID)
			}
		}
		for _, targetID := range sampleWithoutReplacement(rng, candidates, negativesPerPositive) {
			gold = append(gold, GoldPair{
				Pair:  Pair{SourceID: sourceID, TargetID: targetID},
				Label: 0,
			})
		}
	}
	return gold
}

// sampleWithoutReplacement draws up to k distinct elements via a
// partial Fisher-Yates shuffle. The input slice is mutated.
func sampleWithoutReplacement(rng *rand.Rand, items []string, k int) []string {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return nil
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}
