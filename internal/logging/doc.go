// Package logging wraps log/slog with the attribute helpers and
// constructors used across the pipeline. Components receive a logger
// via NewComponentLogger so every record carries a component field,
// and tests pass NewNop to silence output.
package logging
