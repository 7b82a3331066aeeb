package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportCandidatesCSV writes a run's ranked candidate pairs as CSV with
// a header row.
func (s *Store) ExportCandidatesCSV(ctx context.Context, runID string, w io.Writer) error {
	pairs, err := s.CandidatesForRun(ctx, runID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"source_id", "target_id", "rank", "score", "source_text", "target_text"}); err != nil {
		return fmt.Errorf("write candidates header: %w", err)
	}
	for _, pair := range pairs {
		record := []string{
			pair.SourceID,
			pair.TargetID,
			strconv.Itoa(pair.Rank),
			formatScore(pair.Score),
			pair.SourceText,
			pair.TargetText,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write candidate row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportFinalLabelsCSV writes a run's final labeled pairs as CSV with a
// header row.
func (s *Store) ExportFinalLabelsCSV(ctx context.Context, runID string, w io.Writer) error {
	labels, err := s.FinalLabelsForRun(ctx, runID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"source_id", "target_id", "rank", "score", "outcome", "label", "confidence", "evidence", "verified"}); err != nil {
		return fmt.Errorf("write labels header: %w", err)
	}
	for _, label := range labels {
		record := []string{
			label.SourceID,
			label.TargetID,
			strconv.Itoa(label.Rank),
			formatScore(label.Score),
			label.Outcome,
			label.Label,
			formatScore(label.Confidence),
			label.Evidence,
			strconv.FormatBool(label.Verified),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write label row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatScore(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}
