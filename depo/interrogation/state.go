package interrogation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// Request describes one interrogation run.
type Request struct {
	UserQuery        string `json:"userQuery"`
	UserContext      string `json:"userContext,omitempty"`
	UserInstructions string `json:"userInstructions,omitempty"`
	MaxTurns         int    `json:"maxTurns"`
}

// Validate rejects requests the engine must not start. The query must
// contain non-whitespace content and at least one turn must be allowed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.UserQuery) == "" {
		return &InvalidRequestError{Field: "userQuery", Reason: "must not be empty"}
	}
	if r.MaxTurns < 1 {
		return &InvalidRequestError{Field: "maxTurns", Reason: fmt.Sprintf("must be at least 1, got %d", r.MaxTurns)}
	}
	return nil
}

// Status classifies how a run ended.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPartial Status = "PARTIAL"
	StatusError   Status = "ERROR"
)

// FinalReport is the result of a run. It is always returned, never
// raised: degraded runs surface through Status.
type FinalReport struct {
	Conclusion string `json:"conclusion"`
	Narrative  string `json:"narrative"`
	TurnsUsed  int    `json:"turnsUsed"`
	Status     Status `json:"status"`
}

// Conversation is the single mutable record of a run. The engine threads
// it through every stage; nothing else holds loop state.
type Conversation struct {
	ID      string
	Request Request

	// Turns is append-only. A turn is appended only once its question,
	// answer, and refinement have all completed.
	Turns []ports.Turn

	// Report is the latest refined understanding, carried between turns
	// and consumed by synthesis.
	Report string

	StartedAt time.Time
}

// NewConversation starts an empty conversation for a validated request.
func NewConversation(req Request) *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		Request:   req,
		StartedAt: time.Now(),
	}
}

// TurnCount reports how many turns have fully completed.
func (c *Conversation) TurnCount() int {
	return len(c.Turns)
}

// AppendTurn records a completed turn, enforcing index continuity and
// that nothing follows a closing turn.
func (c *Conversation) AppendTurn(t ports.Turn) error {
	if want := len(c.Turns) + 1; t.Index != want {
		return fmt.Errorf("turn index %d out of sequence, want %d", t.Index, want)
	}
	if n := len(c.Turns); n > 0 && c.Turns[n-1].IsFinal {
		return fmt.Errorf("cannot append turn %d after closing turn %d", t.Index, n)
	}
	c.Turns = append(c.Turns, t)
	return nil
}

// Questions returns every question asked so far, in order.
func (c *Conversation) Questions() []string {
	qs := make([]string, 0, len(c.Turns))
	for _, t := range c.Turns {
		qs = append(qs, t.Question)
	}
	return qs
}

// LastTurn returns the most recent completed turn, if any.
func (c *Conversation) LastTurn() (ports.Turn, bool) {
	if len(c.Turns) == 0 {
		return ports.Turn{}, false
	}
	return c.Turns[len(c.Turns)-1], true
}

// RemainingTurns reports how many turns may still run under the ceiling.
func (c *Conversation) RemainingTurns() int {
	remaining := c.Request.MaxTurns - len(c.Turns)
	if remaining < 0 {
		return 0
	}
	return remaining
}
