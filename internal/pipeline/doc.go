// Package pipeline assembles the matching stages into the three runs
// the CLI exposes: the lexical baseline sweep, two-stage candidate
// generation, and gated verification of candidates.
package pipeline
