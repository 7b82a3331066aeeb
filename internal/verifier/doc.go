// Package verifier decides whether two serialized product records
// refer to the same real-world product by asking an LLM, with a
// content-addressed cache in front so identical record pairs never
// trigger a second call.
//
// The cache key is a SHA-256 hash over both serialized texts, so
// results are replayable across runs: once a pair has been verified,
// the stored result is returned unconditionally for the lifetime of
// the cache file. Contract violations from the model (malformed JSON,
// a label outside match/no_match) are hard failures and are never
// retried or cached; transport-level failures are retried with bounded
// backoff inside the client before they propagate.
package verifier
