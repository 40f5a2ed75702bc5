package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
	"github.com/nats-io/nats.go"
)

// NATSPublisher emits run lifecycle events to the NATS bus. Events are
// advisory; delivery is fire-and-forget core NATS, not JetStream.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher creates a publisher over an existing connection.
// prefix namespaces the subjects, e.g. "deposition.turns.<run_id>".
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = "deposition"
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// ConnectNATS dials a NATS server with reconnect behavior suited to a
// long-lived process.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// turnEvent is the wire shape of a turn completion event.
type turnEvent struct {
	RunID     string    `json:"runId"`
	Turn      int       `json:"turn"`
	Question  string    `json:"question"`
	IsFinal   bool      `json:"isFinal"`
	Timestamp time.Time `json:"timestamp"`
}

// runEvent is the wire shape of a run completion event.
type runEvent struct {
	RunID     string    `json:"runId"`
	Status    string    `json:"status"`
	TurnsUsed int       `json:"turnsUsed"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnCompleted publishes a turn completion to <prefix>.turns.<run_id>.
func (p *NATSPublisher) TurnCompleted(ctx context.Context, runID string, turn ports.Turn) error {
	data, err := json.Marshal(turnEvent{
		RunID:     runID,
		Turn:      turn.Index,
		Question:  turn.Question,
		IsFinal:   turn.IsFinal,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal turn event: %w", err)
	}

	subject := fmt.Sprintf("%s.turns.%s", p.prefix, runID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	return nil
}

// RunCompleted publishes a run completion to <prefix>.runs.<run_id>.
func (p *NATSPublisher) RunCompleted(ctx context.Context, runID, status string, turnsUsed int) error {
	data, err := json.Marshal(runEvent{
		RunID:     runID,
		Status:    status,
		TurnsUsed: turnsUsed,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	subject := fmt.Sprintf("%s.runs.%s", p.prefix, runID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	return nil
}

// Close drains and closes the underlying connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// Ensure NATSPublisher implements the EventSink interface.
var _ ports.EventSink = (*NATSPublisher)(nil)
