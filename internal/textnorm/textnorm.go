// Package textnorm holds the two text normalization transforms used by
// the pipeline. Serialization and blocking intentionally normalize
// differently: serialization keeps token boundaries where punctuation
// was, while blocking deletes punctuation outright and strips company
// suffix tokens so key construction is insensitive to legal-name noise.
// The two must not be conflated; downstream hashing depends on
// serialization staying byte-stable.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	punctToSpacePattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
	companySuffixOrPunct = regexp.MustCompile(
		`\b(inc|corp|corporation|ltd|limited|llc|co|company)\b|[^\p{L}\p{N}_\s]`)
	splitNumberPattern = regexp.MustCompile(`(\d)\s+(\d)`)
)

// ForSerialization lowercases text, replaces punctuation with spaces,
// collapses whitespace runs, and trims. Every serialized record field
// value passes through this exact transform so serialized text is a
// stable input for similarity scoring and content hashing.
func ForSerialization(text string) string {
	lowered := strings.ToLower(text)
	cleaned := punctToSpacePattern.ReplaceAllString(lowered, " ")
	collapsed := whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(collapsed)
}

// ForBlocking lowercases text and deletes company suffix tokens and
// punctuation entirely (no replacement space), then collapses
// whitespace. Used for manufacturer values when building block keys, so
// "Acme, Inc." and "acme" produce the same key.
func ForBlocking(text string) string {
	lowered := strings.ToLower(text)
	cleaned := companySuffixOrPunct.ReplaceAllString(lowered, "")
	collapsed := whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(collapsed)
}

// JoinSplitNumbers merges digit pairs separated by whitespace so model
// numbers like "3000 x" vs "3000x" block consistently. Matches are
// non-overlapping left to right: "1 2 3" becomes "12 3".
func JoinSplitNumbers(text string) string {
	return splitNumberPattern.ReplaceAllString(text, "$1$2")
}

// FirstTokens returns up to n leading whitespace-separated tokens of
// text joined by single spaces. Returns "" when text has no tokens.
func FirstTokens(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || n <= 0 {
		return ""
	}
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
