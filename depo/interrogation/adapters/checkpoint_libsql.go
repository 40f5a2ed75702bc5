package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// LibSQLCheckpointStore persists runs and their turns in LibSQL. Turns
// are stored as JSON blobs keyed by (run_id, turn_index) so a replayed
// turn overwrites rather than duplicates.
type LibSQLCheckpointStore struct {
	db *sql.DB
}

// NewLibSQLCheckpointStore creates a new LibSQL checkpoint store.
func NewLibSQLCheckpointStore(db *sql.DB) *LibSQLCheckpointStore {
	return &LibSQLCheckpointStore{
		db: db,
	}
}

// BeginRun registers a run before its first turn executes.
func (s *LibSQLCheckpointStore) BeginRun(ctx context.Context, runID, userQuery string) error {
	query := `
		INSERT OR REPLACE INTO interrogation_runs (run_id, user_query, status, turns_used, created_at)
		VALUES (?, ?, 'RUNNING', 0, ?)
	`

	_, err := s.db.ExecContext(ctx, query, runID, userQuery, time.Now())
	if err != nil {
		return fmt.Errorf("failed to begin run: %w", err)
	}

	return nil
}

// SaveTurn saves a completed turn.
func (s *LibSQLCheckpointStore) SaveTurn(ctx context.Context, runID string, turn ports.Turn) error {
	turnJSON, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO interrogation_turns (run_id, turn_index, turn_data, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query, runID, turn.Index, string(turnJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}

	return nil
}

// CompleteRun records the terminal status and final report of a run.
func (s *LibSQLCheckpointStore) CompleteRun(ctx context.Context, runID, status string, turnsUsed int, report []byte) error {
	query := `
		UPDATE interrogation_runs
		SET status = ?, turns_used = ?, report = ?, completed_at = ?
		WHERE run_id = ?
	`

	_, err := s.db.ExecContext(ctx, query, status, turnsUsed, string(report), time.Now(), runID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	return nil
}

// LoadTurns loads all turns of a run in turn order.
func (s *LibSQLCheckpointStore) LoadTurns(ctx context.Context, runID string) ([]ports.Turn, error) {
	query := `
		SELECT turn_data FROM interrogation_turns
		WHERE run_id = ?
		ORDER BY turn_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []ports.Turn
	for rows.Next() {
		var turnJSON string
		if err := rows.Scan(&turnJSON); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		var turn ports.Turn
		if err := json.Unmarshal([]byte(turnJSON), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}

		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *LibSQLCheckpointStore) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit < 1 {
		limit = 20
	}

	query := `
		SELECT run_id, user_query, status, turns_used, created_at
		FROM interrogation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []ports.RunSummary
	for rows.Next() {
		var run ports.RunSummary
		if err := rows.Scan(&run.RunID, &run.UserQuery, &run.Status, &run.TurnsUsed, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Ensure LibSQLCheckpointStore implements the CheckpointStore interface.
var _ ports.CheckpointStore = (*LibSQLCheckpointStore)(nil)
