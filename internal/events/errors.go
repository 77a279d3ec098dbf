package events

import "fmt"

// Pipeline stages reported by PipelineError.
const (
	StageMiddleware  = "middleware"
	StageTransformer = "transformer"
)

// PipelineError is returned from Emit when a middleware or transformer
// fails. Pipeline failures are not isolated: the remaining stages are
// skipped and the emission is aborted, since middleware is a gating
// mechanism whose failure must be visible to the caller.
type PipelineError struct {
	Event string
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("event pipeline error: %s for event %q: %v", e.Stage, e.Event, e.Err)
}

// Unwrap exposes the underlying error.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
