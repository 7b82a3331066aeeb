package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LoadGroundTruth reads the confirmed-match mapping file. sourceColumn
// and targetColumn name the two id columns in the header.
func LoadGroundTruth(path, sourceColumn, targetColumn string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read ground truth header: %w", err)
	}
	sourceIdx, targetIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case sourceColumn:
			sourceIdx = i
		case targetColumn:
			targetIdx = i
		}
	}
	if sourceIdx < 0 || targetIdx < 0 {
		return nil, fmt.Errorf("ground truth header missing %q or %q", sourceColumn, targetColumn)
	}

	var pairs []Pair
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ground truth row: %w", err)
		}
		if sourceIdx >= len(row) || targetIdx >= len(row) {
			continue
		}
		pair := Pair{
			SourceID: strings.TrimSpace(row[sourceIdx]),
			TargetID: strings.TrimSpace(row[targetIdx]),
		}
		if pair.SourceID == "" || pair.TargetID == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// PairSet converts a pair list into a set for membership checks.
func PairSet(pairs []Pair) map[Pair]struct{} {
	set := make(map[Pair]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	return set
}
