package depoports

import "context"

// EventSink receives best-effort notifications as a run progresses.
// Publish failures are logged by the engine and never interrupt a run.
type EventSink interface {
	TurnCompleted(ctx context.Context, runID string, turn Turn) error
	RunCompleted(ctx context.Context, runID, status string, turnsUsed int) error
}
