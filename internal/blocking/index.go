package blocking

import (
	"log/slog"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
)

// Index is an inverted index from block key to the set of target
// record ids that produced it. Built once per target catalog and
// read-only afterwards.
type Index struct {
	keys         map[string]map[string]struct{}
	prefixTokens int
}

// BuildIndex registers the strong and weak keys of every target record.
// ids and texts are parallel slices of record ids and serialized text.
func BuildIndex(ids, texts []string, prefixTokens int, logger *slog.Logger) *Index {
	logger = logging.NewComponentLogger(logger, "blocking")

	index := &Index{
		keys:         make(map[string]map[string]struct{}),
		prefixTokens: prefixTokens,
	}
	for i, text := range texts {
		keys := MakeKeys(text, prefixTokens)
		for _, key := range append(keys.Strong, keys.Weak...) {
			set := index.keys[key]
			if set == nil {
				set = make(map[string]struct{})
				index.keys[key] = set
			}
			set[ids[i]] = struct{}{}
		}
	}

	logger.Debug("built blocking index",
		logging.Int("records", len(texts)),
		logging.Int("keys", len(index.keys)))
	return index
}

// KeyCount returns the number of distinct block keys in the index.
func (ix *Index) KeyCount() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

// Lookup returns the candidate target ids for a serialized source
// record. Strong keys are consulted first; weak keys expand the set
// only when the strong tier yields fewer than minCandidates ids. The
// result may be empty, in which case the caller falls back to the
// whole corpus.
func (ix *Index) Lookup(serialized string, minCandidates int) map[string]struct{} {
	candidates := make(map[string]struct{})
	if ix == nil {
		return candidates
	}

	keys := MakeKeys(serialized, ix.prefixTokens)
	for _, key := range keys.Strong {
		for id := range ix.keys[key] {
			candidates[id] = struct{}{}
		}
	}
	if len(candidates) < minCandidates {
		for _, key := range keys.Weak {
			for id := range ix.keys[key] {
				candidates[id] = struct{}{}
			}
		}
	}
	return candidates
}
