package bronze

import "fmt"

// Pipeline phases reported in PipelineError.
const (
	PhaseRead   = "read"
	PhaseWrite  = "write"
	PhaseVerify = "verify"
)

// PipelineError wraps an error with the phase and table where it occurred.
type PipelineError struct {
	Phase string
	Table string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %s", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Phase, e.Table, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
