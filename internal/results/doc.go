// Package results persists pipeline runs in SQLite: run metadata,
// ranked candidate pairs, and final labeled decisions, plus CSV export
// of the stored tables.
package results
