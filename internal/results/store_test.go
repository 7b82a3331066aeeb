package results

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/candidates"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndFinishRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunCandidates, map[string]int{"top_k": 50})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run id is empty")
	}
	if !strings.Contains(run.ParamsJSON, "top_k") {
		t.Errorf("params json = %q, want top_k", run.ParamsJSON)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched == nil || fetched.Kind != RunCandidates {
		t.Fatalf("fetched run = %+v", fetched)
	}
	if fetched.CompletedAt != nil {
		t.Error("new run should not be completed")
	}

	if err := store.FinishRun(ctx, run.ID, map[string]float64{"recall_at_50": 0.9}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	fetched, err = store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if fetched.CompletedAt == nil {
		t.Error("finished run missing completion time")
	}
	if !strings.Contains(fetched.MetricsJSON, "recall_at_50") {
		t.Errorf("metrics json = %q", fetched.MetricsJSON)
	}
}

func TestFinishRunUnknownID(t *testing.T) {
	store := openTestStore(t)
	if err := store.FinishRun(context.Background(), "no-such-run", nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestGetRunMissing(t *testing.T) {
	store := openTestStore(t)
	run, err := store.GetRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run != nil {
		t.Fatalf("run = %+v, want nil", run)
	}
}

func TestCandidatesRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunCandidates, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	pairs := []candidates.Pair{
		{SourceID: "a1", TargetID: "g2", Rank: 2, Score: 0.5, SourceText: "name: widget", TargetText: "name: gadget"},
		{SourceID: "a1", TargetID: "g1", Rank: 1, Score: 0.9, SourceText: "name: widget", TargetText: "name: widget pro"},
	}
	if err := store.InsertCandidates(ctx, run.ID, pairs); err != nil {
		t.Fatalf("InsertCandidates: %v", err)
	}

	stored, err := store.CandidatesForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("CandidatesForRun: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %d pairs, want 2", len(stored))
	}
	// Rank ordering is restored regardless of insert order.
	if stored[0].Rank != 1 || stored[0].TargetID != "g1" {
		t.Errorf("first stored pair = %+v", stored[0])
	}
	if stored[1].Score != 0.5 {
		t.Errorf("second stored pair = %+v", stored[1])
	}
}

func TestFinalLabelsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunVerify, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	labels := []FinalLabel{
		{SourceID: "a1", TargetID: "g1", Rank: 1, Score: 0.95, Outcome: "auto_match", Label: "match", Confidence: 1.0},
		{SourceID: "a2", TargetID: "g2", Rank: 3, Score: 0.5, Outcome: "escalate", Label: "no_match", Confidence: 0.7, Evidence: "different manufacturers", Verified: true},
	}
	if err := store.InsertFinalLabels(ctx, run.ID, labels); err != nil {
		t.Fatalf("InsertFinalLabels: %v", err)
	}

	stored, err := store.FinalLabelsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("FinalLabelsForRun: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored = %d labels, want 2", len(stored))
	}
	if !stored[1].Verified || stored[1].Evidence != "different manufacturers" {
		t.Errorf("verified label = %+v", stored[1])
	}
	if stored[0].Rank != 1 || stored[1].Rank != 3 {
		t.Errorf("ranks = %d, %d, want 1, 3", stored[0].Rank, stored[1].Rank)
	}
	if stored[0].Verified {
		t.Errorf("auto label should not be verified: %+v", stored[0])
	}
}

func TestLatestRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if run, err := store.LatestRun(ctx, RunVerify); err != nil || run != nil {
		t.Fatalf("LatestRun on empty store = %+v, %v", run, err)
	}

	first, err := store.CreateRun(ctx, RunVerify, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	second, err := store.CreateRun(ctx, RunVerify, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	latest, err := store.LatestRun(ctx, RunVerify)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil {
		t.Fatal("latest run is nil")
	}
	if latest.ID != second.ID && latest.ID != first.ID {
		t.Fatalf("latest run id = %s", latest.ID)
	}
}

func TestRemoveRunCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunCandidates, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.InsertCandidates(ctx, run.ID, []candidates.Pair{
		{SourceID: "a1", TargetID: "g1", Rank: 1, Score: 0.9},
	}); err != nil {
		t.Fatalf("InsertCandidates: %v", err)
	}

	removed, err := store.RemoveRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("RemoveRun: %v", err)
	}
	if !removed {
		t.Fatal("expected run to be removed")
	}

	pairs, err := store.CandidatesForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("CandidatesForRun: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("candidates survived run removal: %d", len(pairs))
	}
}

func TestExportCandidatesCSV(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunCandidates, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.InsertCandidates(ctx, run.ID, []candidates.Pair{
		{SourceID: "a1", TargetID: "g1", Rank: 1, Score: 0.875, SourceText: "name: widget", TargetText: "name: widget pro"},
	}); err != nil {
		t.Fatalf("InsertCandidates: %v", err)
	}

	var buf bytes.Buffer
	if err := store.ExportCandidatesCSV(ctx, run.ID, &buf); err != nil {
		t.Fatalf("ExportCandidatesCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want 2: %q", len(lines), buf.String())
	}
	if lines[0] != "source_id,target_id,rank,score,source_text,target_text" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "a1,g1,1,0.875000") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportFinalLabelsCSV(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, RunVerify, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.InsertFinalLabels(ctx, run.ID, []FinalLabel{
		{SourceID: "a1", TargetID: "g1", Rank: 1, Score: 0.95, Outcome: "auto_match", Label: "match", Confidence: 1.0},
	}); err != nil {
		t.Fatalf("InsertFinalLabels: %v", err)
	}

	var buf bytes.Buffer
	if err := store.ExportFinalLabelsCSV(ctx, run.ID, &buf); err != nil {
		t.Fatalf("ExportFinalLabelsCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "source_id,target_id,rank,score,outcome,label,confidence,evidence,verified" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "a1,g1,1,0.950000,auto_match,match,1.000000") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestSchemaReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := store.CreateRun(context.Background(), RunBaseline, nil)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	fetched, err := reopened.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
	if fetched == nil {
		t.Fatal("run lost after reopen")
	}
}
