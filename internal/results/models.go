package results

import "time"

// Run kinds recorded in the store.
const (
	RunBaseline   = "baseline"
	RunCandidates = "candidates"
	RunVerify     = "verify"
	RunDirect     = "direct"
)

// Run records one pipeline invocation. Params and Metrics hold
// JSON-encoded snapshots of the run inputs and outputs.
type Run struct {
	ID          string
	Kind        string
	CreatedAt   time.Time
	CompletedAt *time.Time
	ParamsJSON  string
	MetricsJSON string
}

// FinalLabel is one pair's final decision after gating and, when the
// pair was escalated, verification. Rank carries the candidate list
// rank the pair held when it was labeled, so exported labels stay
// usable for rank-based evaluation; zero means the pair was never
// ranked.
type FinalLabel struct {
	SourceID   string
	TargetID   string
	Rank       int
	Score      float64
	Outcome    string
	Label      string
	Confidence float64
	Evidence   string
	Verified   bool
}
