package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/config"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/logging"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/results"
	"github.com/zzkhangg/entity-resolution-mini-project/internal/verifier"
)

const (
	testSourceCSV = `id,name,description,manufacturer,price
a1,widget pro 2000,brushed aluminium enclosure,acme,49.99
a2,gizmo mini,compact travel gizmo,globex,19.99
`
	testTargetCSV = `id,name,description,manufacturer,price
g1,widget pro 2000,brushed aluminium enclosure,acme,49.99
g2,doohickey max,heavy duty doohickey press,initech,99.00
g3,thingamajig,assorted thingamajig parts,umbrella,5.00
`
	testTruthCSV = `idAmazon,idGoogleBase
a1,g1
`
)

// rejectingClient answers every escalation with a confident no_match.
type rejectingClient struct {
	calls int
}

func (c *rejectingClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (verifier.Completion, error) {
	c.calls++
	return verifier.Completion{
		Content: `{"label": "no_match", "confidence": 0.8, "evidence": ["different products"]}`,
	}, nil
}

// matchingClient answers every call with a confident match.
type matchingClient struct {
	calls int
}

func (c *matchingClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (verifier.Completion, error) {
	c.calls++
	return verifier.Completion{
		Content: `{"label": "match", "confidence": 0.95, "evidence": ["same name"]}`,
	}, nil
}

// failingClient simulates an unreachable LLM endpoint.
type failingClient struct{}

func (failingClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (verifier.Completion, error) {
	return verifier.Completion{}, errors.New("upstream unavailable")
}

func writeTestData(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"source.csv": testSourceCSV,
		"target.csv": testTargetCSV,
		"truth.csv":  testTruthCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cfg := config.Default()
	cfg.Data.SourceCSV = filepath.Join(dir, "source.csv")
	cfg.Data.TargetCSV = filepath.Join(dir, "target.csv")
	cfg.Data.GroundTruthCSV = filepath.Join(dir, "truth.csv")
	// Both test catalogs use a "name" column, so a1 and g1 serialize
	// identically and their cosine is exactly 1.0.
	cfg.Data.SourceFields = []string{"name", "description", "manufacturer"}
	cfg.Data.TargetFields = []string{"name", "description", "manufacturer"}
	// The corpus is tiny, so every n-gram must survive.
	cfg.Retrieval.MinDF = 1
	cfg.Blocking.MinCandidates = 2
	return &cfg
}

func newTestPipeline(t *testing.T) (*Pipeline, *results.Store) {
	t.Helper()
	cfg := writeTestData(t)
	store, err := results.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open results store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(cfg, store, logging.NewNop()), store
}

func TestRunBaseline(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	report, err := p.RunBaseline(ctx)
	if err != nil {
		t.Fatalf("RunBaseline: %v", err)
	}
	if report.Positives != 1 {
		t.Errorf("positives = %d, want 1", report.Positives)
	}
	if report.Negatives != 2 {
		t.Errorf("negatives = %d, want 2 (only two non-match targets exist)", report.Negatives)
	}
	// The true pair has identical serialized text, so some threshold
	// separates it perfectly from the negatives.
	if report.Best.F1 != 1.0 {
		t.Errorf("best f1 = %v, want 1.0; rows: %+v", report.Best.F1, report.Rows)
	}
	if report.ScoredPairs != 3 {
		t.Errorf("scored pairs = %d, want 3", report.ScoredPairs)
	}
	if report.AvgLatencySeconds <= 0 || report.ThroughputPairsPerSec <= 0 {
		t.Errorf("scoring pass not timed: avg %v, throughput %v",
			report.AvgLatencySeconds, report.ThroughputPairsPerSec)
	}

	run, err := store.GetRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil || run.CompletedAt == nil {
		t.Fatalf("baseline run not recorded: %+v", run)
	}
}

func TestRunCandidatesTwoStage(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	report, err := p.RunCandidates(ctx, false)
	if err != nil {
		t.Fatalf("RunCandidates: %v", err)
	}
	if report.Sources != 2 {
		t.Errorf("sources = %d, want 2", report.Sources)
	}
	if report.Pairs == 0 {
		t.Fatal("no candidate pairs produced")
	}
	if report.BlockingKeys == 0 {
		t.Error("blocking index is empty")
	}
	// g1 is the closest target for a1 at every cutoff.
	for _, k := range recallCutoffs {
		if report.RecallAtK[k] != 1.0 {
			t.Errorf("recall@%d = %v, want 1.0", k, report.RecallAtK[k])
		}
	}

	stored, err := store.CandidatesForRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("CandidatesForRun: %v", err)
	}
	if len(stored) != report.Pairs {
		t.Errorf("stored pairs = %d, want %d", len(stored), report.Pairs)
	}
}

func TestRunCandidatesRetrievalOnly(t *testing.T) {
	p, _ := newTestPipeline(t)

	report, err := p.RunCandidates(context.Background(), true)
	if err != nil {
		t.Fatalf("RunCandidates retrieval-only: %v", err)
	}
	if !report.RetrievalOnly {
		t.Error("report not marked retrieval-only")
	}
	if report.BlockingKeys != 0 {
		t.Errorf("blocking keys = %d, want 0 in retrieval-only mode", report.BlockingKeys)
	}
	if report.RecallAtK[50] != 1.0 {
		t.Errorf("recall@50 = %v, want 1.0", report.RecallAtK[50])
	}
}

func TestRunVerifyEndToEnd(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	candidateReport, err := p.RunCandidates(ctx, false)
	if err != nil {
		t.Fatalf("RunCandidates: %v", err)
	}

	cache, err := verifier.OpenCache(filepath.Join(t.TempDir(), "cache.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
	client := &rejectingClient{}
	v := verifier.New(client, cache, logging.NewNop())

	report, err := p.RunVerify(ctx, v, candidateReport.RunID)
	if err != nil {
		t.Fatalf("RunVerify: %v", err)
	}

	if report.Total != candidateReport.Pairs {
		t.Errorf("total = %d, want %d", report.Total, candidateReport.Pairs)
	}
	if report.AutoMatched+report.AutoRejected+report.Escalated != report.Total {
		t.Errorf("outcomes do not partition pairs: %+v", report)
	}
	// a1/g1 serialize identically, so their cosine is 1.0 and the gate
	// accepts without a verifier call.
	if report.AutoMatched != 1 {
		t.Errorf("auto matched = %d, want exactly the identical pair", report.AutoMatched)
	}
	if report.Matches != 1 {
		t.Errorf("matches = %d, want 1", report.Matches)
	}
	if report.VerifierFailures != 0 {
		t.Errorf("verifier failures = %d", report.VerifierFailures)
	}
	if report.Metrics.Precision != 1.0 || report.Metrics.Recall != 1.0 || report.Metrics.F1 != 1.0 {
		t.Errorf("metrics = %+v, want perfect", report.Metrics)
	}
	if report.RecallAtKVerified[5] != 1.0 {
		t.Errorf("verified recall@5 = %v, want 1.0", report.RecallAtKVerified[5])
	}
	if report.Escalated > 0 && client.calls == 0 {
		t.Error("escalations reported but verifier never called")
	}

	labels, err := store.FinalLabelsForRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("FinalLabelsForRun: %v", err)
	}
	if len(labels) != report.Total {
		t.Errorf("stored labels = %d, want %d", len(labels), report.Total)
	}
	for _, label := range labels {
		if label.Rank < 1 {
			t.Errorf("label %s/%s lost its candidate rank: %+v", label.SourceID, label.TargetID, label)
		}
	}
}

func TestRunVerifyUsesLatestCandidatesRun(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	if _, err := p.RunCandidates(ctx, false); err != nil {
		t.Fatalf("RunCandidates: %v", err)
	}

	cache, err := verifier.OpenCache(filepath.Join(t.TempDir(), "cache.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
	v := verifier.New(&rejectingClient{}, cache, logging.NewNop())

	report, err := p.RunVerify(ctx, v, "")
	if err != nil {
		t.Fatalf("RunVerify with empty run id: %v", err)
	}
	if report.CandidatesRunID == "" {
		t.Error("candidates run id not resolved")
	}
}

func TestRunDirect(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()
	// Field-name n-grams give even unrelated records some baseline
	// similarity, so only the identical pair clears a high floor.
	p.cfg.Direct.BlockThreshold = 0.95

	cache, err := verifier.OpenCache(filepath.Join(t.TempDir(), "cache.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
	client := &matchingClient{}
	v := verifier.New(client, cache, logging.NewNop())

	report, err := p.RunDirect(ctx, v)
	if err != nil {
		t.Fatalf("RunDirect: %v", err)
	}

	if report.Positives != 1 || report.Negatives != 2 {
		t.Errorf("gold = %d positives, %d negatives", report.Positives, report.Negatives)
	}
	if report.Candidates != 1 {
		t.Errorf("candidates = %d, want only the identical pair", report.Candidates)
	}
	if client.calls != 1 {
		t.Errorf("llm calls = %d, want 1", client.calls)
	}
	if report.Matches != 1 {
		t.Errorf("matches = %d, want 1", report.Matches)
	}
	if report.Metrics.Precision != 1.0 || report.Metrics.Recall != 1.0 || report.Metrics.F1 != 1.0 {
		t.Errorf("metrics = %+v, want perfect", report.Metrics)
	}
	if report.AvgLatencySeconds <= 0 || report.ThroughputPairsPerSec <= 0 {
		t.Errorf("verifier latency not reported: %+v", report)
	}

	labels, err := store.FinalLabelsForRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("FinalLabelsForRun: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("stored labels = %d, want 1", len(labels))
	}
	if labels[0].Outcome != "direct" || !labels[0].Verified || labels[0].Label != verifier.LabelMatch {
		t.Errorf("stored label = %+v", labels[0])
	}
}

func TestRunDirectVerifierFailureDowngrades(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()
	p.cfg.Direct.BlockThreshold = 0.95

	cache, err := verifier.OpenCache("", logging.NewNop())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	v := verifier.New(failingClient{}, cache, logging.NewNop())

	report, err := p.RunDirect(ctx, v)
	if err != nil {
		t.Fatalf("RunDirect with failing client: %v", err)
	}
	if report.VerifierFailures != 1 {
		t.Errorf("verifier failures = %d, want 1", report.VerifierFailures)
	}
	if report.Matches != 0 {
		t.Errorf("matches = %d, want 0 after downgrade", report.Matches)
	}

	labels, err := store.FinalLabelsForRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("FinalLabelsForRun: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("stored labels = %d, want 1", len(labels))
	}
	if labels[0].Label != verifier.LabelNoMatch || labels[0].Verified || labels[0].Confidence != 0 {
		t.Errorf("downgraded label = %+v", labels[0])
	}
}

func TestRunVerifyWithoutCandidatesFails(t *testing.T) {
	p, _ := newTestPipeline(t)

	cache, err := verifier.OpenCache("", logging.NewNop())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	v := verifier.New(&rejectingClient{}, cache, logging.NewNop())

	if _, err := p.RunVerify(context.Background(), v, ""); err == nil {
		t.Fatal("expected error when no candidates run exists")
	}
}
