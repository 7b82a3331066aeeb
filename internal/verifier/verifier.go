package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
)

// Valid result labels.
const (
	LabelMatch   = "match"
	LabelNoMatch = "no_match"
)

// pairSeparator joins the two serialized texts before hashing. The
// serialization normalizer strips punctuation, so "|" can never occur
// inside serialized text and the concatenation is unambiguous.
const pairSeparator = "|||"

// Result is the verifier's verdict for one record pair.
type Result struct {
	Label          string   `json:"label"`
	Confidence     float64  `json:"confidence"`
	Evidence       []string `json:"evidence"`
	Tokens         int      `json:"tokens"`
	LatencySeconds float64  `json:"latency_seconds"`
}

// CompletionClient is the LLM call the verifier depends on, abstracted
// for testability.
type CompletionClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)
}

// Verifier owns its cache and LLM client; construct one per run and
// pass it to whatever needs verification rather than sharing ambient
// state.
type Verifier struct {
	client CompletionClient
	cache  *Cache
	logger *slog.Logger

	calls  int
	hits   int
	tokens int
}

// New constructs a Verifier. The cache may not be nil; pass a cache
// opened with an empty path to disable persistence in tests.
func New(client CompletionClient, cache *Cache, logger *slog.Logger) *Verifier {
	return &Verifier{
		client: client,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "verifier"),
	}
}

// PairKey computes the stable content hash for a serialized record
// pair.
func PairKey(sourceText, targetText string) string {
	sum := sha256.Sum256([]byte(sourceText + pairSeparator + targetText))
	return hex.EncodeToString(sum[:])
}

// Verify resolves whether the two serialized records refer to the same
// product. A cached result for the same content pair is returned
// unconditionally without a new call. On a miss the verifier invokes
// the LLM, validates the response, stores the result, and persists the
// cache before returning. Transport errors propagate after the
// client's own bounded retry; contract violations (InvalidResponseError,
// InvalidLabelError) propagate immediately and leave no cache entry.
func (v *Verifier) Verify(ctx context.Context, sourceText, targetText string) (Result, error) {
	key := PairKey(sourceText, targetText)
	if result, found := v.cache.Lookup(key); found {
		v.hits++
		return result, nil
	}

	prompt := BuildPrompt(sourceText, targetText)

	start := time.Now()
	completion, err := v.client.CompleteJSON(ctx, SystemPrompt, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("verify pair: %w", err)
	}
	latency := time.Since(start)
	v.calls++
	v.tokens += completion.TotalTokens

	result, err := parseResult(completion)
	if err != nil {
		return Result{}, err
	}
	result.LatencySeconds = latency.Seconds()

	if err := v.cache.Store(key, result); err != nil {
		return Result{}, err
	}

	v.logger.Debug("verified pair",
		logging.String("label", result.Label),
		logging.Float64("confidence", result.Confidence),
		logging.Int("tokens", result.Tokens),
		logging.Duration("latency", latency))
	return result, nil
}

// Stats reports call accounting for the lifetime of this verifier.
type Stats struct {
	Calls     int // LLM calls actually made
	CacheHits int // lookups answered from the cache
	Tokens    int // total tokens across made calls
}

// Stats returns the verifier's call accounting.
func (v *Verifier) Stats() Stats {
	return Stats{Calls: v.calls, CacheHits: v.hits, Tokens: v.tokens}
}

func parseResult(completion Completion) (Result, error) {
	var payload struct {
		Label      string      `json:"label"`
		Confidence json.Number `json:"confidence"`
		Evidence   []string    `json:"evidence"`
	}
	if err := decodeModelJSON(completion.Content, &payload); err != nil {
		return Result{}, &InvalidResponseError{Cause: err, Snippet: payloadSnippet(completion.Content)}
	}
	if payload.Label != LabelMatch && payload.Label != LabelNoMatch {
		return Result{}, &InvalidLabelError{Label: payload.Label}
	}

	confidence, err := payload.Confidence.Float64()
	if err != nil {
		return Result{}, &InvalidResponseError{Cause: fmt.Errorf("confidence: %w", err), Snippet: payloadSnippet(completion.Content)}
	}
	// Out-of-range confidence is clamped rather than rejected; the
	// schema asks for [0,1] but the model is not independently trusted
	// to honor it.
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Label:      payload.Label,
		Confidence: confidence,
		Evidence:   payload.Evidence,
		Tokens:     completion.TotalTokens,
	}, nil
}
