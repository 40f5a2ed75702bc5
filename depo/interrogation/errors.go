package interrogation

import "fmt"

// InvalidRequestError reports a request that fails validation before any
// collaborator is contacted. It is the only error Interrogate returns to
// callers; every later failure is absorbed into the FinalReport status.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// GenerationError indicates the question stage produced no usable output.
// The run degrades to PARTIAL with whatever understanding exists.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s generation produced no usable output", e.Stage)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// RefinementError indicates the refine stage failed. The engine records
// the raw answer as the turn's understanding and the run continues.
type RefinementError struct {
	Err error
}

func (e *RefinementError) Error() string {
	return fmt.Sprintf("answer refinement failed: %v", e.Err)
}

func (e *RefinementError) Unwrap() error {
	return e.Err
}

// SynthesisError indicates the final report stage failed. The engine
// returns a FinalReport with status ERROR instead of propagating it.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("report synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
