// Package blocking builds cheap inverted-index keys over serialized
// records so candidate generation never has to compare every source
// record against every target record. Keys come in two tiers: a strong
// key combining manufacturer and name prefix, and weak single-signal
// keys used only when the strong tier under-produces.
package blocking

import (
	"strings"

	"github.com/zzkhangg/entity-resolution-mini-project/internal/textnorm"
)

// nameFields are tried in order when extracting the title prefix; the
// two catalogs name this column differently.
var nameFields = []string{"name", "title"}

// Keys holds the block keys derived from one serialized record.
type Keys struct {
	Strong []string
	Weak   []string
}

// MakeKeys derives strong and weak block keys from serialized record
// text. The strong key "<manufacturer>__<prefix>" requires both a
// manufacturer and a name prefix of prefixTokens tokens; weak keys are
// the manufacturer alone and the first name token alone.
func MakeKeys(serialized string, prefixTokens int) Keys {
	var keys Keys

	manufacturer := extractFieldValue(serialized, "manufacturer")
	prefix := extractNamePrefix(serialized, prefixTokens)

	if manufacturer != "" && prefix != "" {
		keys.Strong = append(keys.Strong, manufacturer+"__"+prefix)
	}
	if manufacturer != "" {
		keys.Weak = append(keys.Weak, manufacturer)
	}
	if prefix != "" {
		if first := textnorm.FirstTokens(prefix, 1); first != "" {
			keys.Weak = append(keys.Weak, first)
		}
	}
	return keys
}

// extractFieldValue finds the "<field>: value" line in serialized text
// and normalizes the value for blocking (company suffixes and
// punctuation removed).
func extractFieldValue(serialized, field string) string {
	value, ok := fieldLine(serialized, field)
	if !ok {
		return ""
	}
	return textnorm.ForBlocking(value)
}

// extractNamePrefix returns the first n tokens of the name (or title)
// field. Whitespace-split digit runs are joined first so model numbers
// block consistently.
func extractNamePrefix(serialized string, n int) string {
	joined := textnorm.JoinSplitNumbers(serialized)
	for _, field := range nameFields {
		value, ok := fieldLine(joined, field)
		if !ok {
			continue
		}
		if prefix := textnorm.FirstTokens(textnorm.ForSerialization(value), n); prefix != "" {
			return prefix
		}
	}
	return ""
}

func fieldLine(serialized, field string) (string, bool) {
	prefix := field + ":"
	for _, line := range strings.Split(serialized, "\n") {
		if rest, ok := strings.CutPrefix(strings.ToLower(line), prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
