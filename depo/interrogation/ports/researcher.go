package depoports

import (
	"context"
	"errors"
)

// Query carries one retrieval request to the research collaborator.
type Query struct {
	Question     string // the interrogation question to answer
	Context      string // caller-supplied background, may be empty
	Instructions string // caller-supplied retrieval guidance, may be empty
}

// Evidence is one supporting passage returned by the collaborator.
type Evidence struct {
	SourceID string `json:"sourceId"`
	Excerpt  string `json:"excerpt"`
	Locator  string `json:"locator,omitempty"` // article/section/page when known
}

// Answer is the collaborator's response to a single query.
type Answer struct {
	Text     string     `json:"answer"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Researcher answers interrogation questions against an external corpus.
type Researcher interface {
	Search(ctx context.Context, q Query) (Answer, error)
}

// ErrNotFound reports that no sources matched the query. Callers treat it
// as an empty answer, not a failure.
var ErrNotFound = errors.New("no sources matched")

// RetrievalError indicates the collaborator call failed or timed out.
type RetrievalError struct {
	Message string
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
