package depoports

import (
	"context"
	"time"
)

// Turn is one completed question/answer/refinement exchange.
type Turn struct {
	Index                int        `json:"index"` // 1-based position in the run
	Question             string     `json:"question"`
	RawAnswer            string     `json:"rawAnswer"`
	Evidence             []Evidence `json:"evidence,omitempty"`
	RefinedUnderstanding string     `json:"refinedUnderstanding"`
	IsFinal              bool       `json:"isFinal"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// RunSummary is one row in the run history listing.
type RunSummary struct {
	RunID     string    `json:"runId"`
	UserQuery string    `json:"userQuery"`
	Status    string    `json:"status"`
	TurnsUsed int       `json:"turnsUsed"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckpointStore persists run progress so completed turns survive the
// process. Writes are at-least-once; implementations must tolerate a
// replay of the same turn.
type CheckpointStore interface {
	BeginRun(ctx context.Context, runID, userQuery string) error
	SaveTurn(ctx context.Context, runID string, turn Turn) error
	CompleteRun(ctx context.Context, runID, status string, turnsUsed int, report []byte) error
	LoadTurns(ctx context.Context, runID string) ([]Turn, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
