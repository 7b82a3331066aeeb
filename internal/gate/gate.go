// Package gate routes candidate pairs to automatic outcomes or to the
// expensive verifier based on their similarity score. The gate is the
// cost/quality trade-off of the whole pipeline: confident scores are
// decided locally for free, and only the uncertain band between the two
// thresholds ever reaches the verifier.
package gate

import "fmt"

// Outcome is the gate's routing decision for one candidate pair.
type Outcome string

const (
	// AutoMatch accepts the pair without verification.
	AutoMatch Outcome = "auto_match"
	// AutoReject rejects the pair without verification.
	AutoReject Outcome = "auto_reject"
	// Escalate defers the pair to the verifier.
	Escalate Outcome = "escalate"
)

// Thresholds holds the inclusive gate boundaries. A score of exactly
// High auto-matches and exactly Low auto-rejects; only the open
// interval (Low, High) escalates.
type Thresholds struct {
	High float64
	Low  float64
}

// DefaultThresholds returns the evaluation defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.90, Low: 0.30}
}

// Validate rejects threshold pairs that would make the gate
// non-monotonic or leave no decidable region.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.High > 1 {
		return fmt.Errorf("gate thresholds out of range: low=%v high=%v", t.Low, t.High)
	}
	if t.Low > t.High {
		return fmt.Errorf("gate low threshold %v exceeds high threshold %v", t.Low, t.High)
	}
	return nil
}

// Decision is the gate outcome with the confidence it carries.
// Automatic outcomes always have confidence 1.0; escalated pairs have
// no confidence until the verifier supplies one.
type Decision struct {
	Outcome    Outcome
	Confidence float64
}

// Classify gates a similarity score. Monotonic in score: every score
// at or above High auto-matches, at or below Low auto-rejects, and
// everything strictly between escalates.
func Classify(score float64, t Thresholds) Decision {
	switch {
	case score >= t.High:
		return Decision{Outcome: AutoMatch, Confidence: 1.0}
	case score <= t.Low:
		return Decision{Outcome: AutoReject, Confidence: 1.0}
	default:
		return Decision{Outcome: Escalate}
	}
}
