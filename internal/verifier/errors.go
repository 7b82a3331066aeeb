package verifier

import "fmt"

// InvalidResponseError reports a verifier response whose body was not
// well-formed structured data. It is a contract violation, never a
// retry trigger.
type InvalidResponseError struct {
	Cause   error
	Snippet string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("verifier returned invalid response: %v (payload snippet: %s)", e.Cause, e.Snippet)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Cause
}

// InvalidLabelError reports a structurally valid response whose label
// is outside the match/no_match domain.
type InvalidLabelError struct {
	Label string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("verifier returned invalid label %q", e.Label)
}
