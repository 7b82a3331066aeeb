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

// missingValues are the tokens the source files use for absent data.
var missingValues = map[string]struct{}{
	"NA":   {},
	"null": {},
}

// Load reads a catalog CSV and returns its records in file order. The
// file is decoded as Latin-1 (every byte maps to a rune, so decoding
// never fails on the source encoding), the first row is the header, and
// idColumn names the column holding the record identifier. Rows with a
// blank identifier are dropped; short rows are padded with empty
// values.
func Load(path, idColumn string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	records, err := parseCSV(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()), idColumn)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return records, nil
}

func parseCSV(r io.Reader, idColumn string) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	idIndex := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		columns[i] = name
		if name == idColumn {
			idIndex = i
		}
	}
	if idIndex < 0 {
		return nil, fmt.Errorf("id column %q not in header", idColumn)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		fields := make(map[string]string, len(columns))
		for i, name := range columns {
			var value string
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if _, missing := missingValues[value]; missing {
				value = ""
			}
			fields[name] = value
		}

		id := fields[idColumn]
		if id == "" {
			continue
		}
		records = append(records, Record{ID: id, Fields: fields})
	}
	return records, nil
}

// SerializeAll serializes every record with the same field list and
// returns the texts in record order alongside the matching ids.
func SerializeAll(records []Record, fields []string) (ids []string, texts []string) {
	ids = make([]string, len(records))
	texts = make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
		texts[i] = Serialize(r, fields)
	}
	return ids, texts
}
