package catalog

import (
	"strings"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/textnorm"
)

// Record is one row from a source catalog. The ID is unique within its
// catalog; all other fields are free text. Records are immutable once
// loaded.
type Record struct {
	ID     string
	Fields map[string]string
}

// Field returns the value for the named field, or "" when absent.
func (r Record) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Serialize renders a record as newline-joined "field: value" lines in
// the given field order. Missing fields serialize as an empty value.
// Values pass through textnorm.ForSerialization so the output is a
// deterministic function of the record, which downstream similarity
// scoring and content hashing rely on.
func Serialize(r Record, fields []string) string {
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		value := textnorm.ForSerialization(r.Field(field))
		lines = append(lines, field+": "+value)
	}
	return strings.Join(lines, "\n")
}

// Pair identifies a (source record, target record) combination across
// the two catalogs.
type Pair struct {
	SourceID string
	TargetID string
}
