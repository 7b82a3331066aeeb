// Package config loads, normalizes, and validates ermatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY. The Config type centralizes every knob the CLI needs, from
// catalog file locations to retrieval and gating parameters.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
