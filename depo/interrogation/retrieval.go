package interrogation

import (
	"context"
	"errors"
	"time"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// RetrievalStep asks the research collaborator a single question. It
// applies the per-call timeout and maps a no-match result to an empty
// answer; retrying on failure is the loop's decision, not this step's.
type RetrievalStep struct {
	researcher ports.Researcher
	timeout    time.Duration
}

// NewRetrievalStep wires the retrieval stage. timeout <= 0 disables the
// per-call bound.
func NewRetrievalStep(researcher ports.Researcher, timeout time.Duration) *RetrievalStep {
	return &RetrievalStep{researcher: researcher, timeout: timeout}
}

// Retrieve queries the collaborator with the question plus the original
// request's context and instructions for grounding.
func (s *RetrievalStep) Retrieve(ctx context.Context, question string, req Request) (ports.Answer, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.researcher.Search(ctx, ports.Query{
		Question:     question,
		Context:      req.UserContext,
		Instructions: req.UserInstructions,
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// No matching sources is an answer of "nothing", not a failure.
			return ports.Answer{}, nil
		}
		var re *ports.RetrievalError
		if errors.As(err, &re) {
			return ports.Answer{}, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.Answer{}, &ports.RetrievalError{Message: "researcher call timed out", Err: err}
		}
		return ports.Answer{}, &ports.RetrievalError{Message: "researcher call failed", Err: err}
	}
	return answer, nil
}
