package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// LoadState loads the orchestrator state document, creating the default one
// on first use. When seven or more days have elapsed since the current week
// window started, the weekly counters are reset and persisted immediately.
func (s *Store) LoadState(ctx context.Context, now time.Time) (*State, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM orchestrator_state WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		state := DefaultState(now)
		if err := s.SaveState(ctx, state); err != nil {
			return nil, err
		}
		slog.Info("Initialized orchestrator state")
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	state := DefaultState(now)
	if err := json.Unmarshal([]byte(doc), state); err != nil {
		return nil, fmt.Errorf("decode state document: %w", err)
	}
	// Documents written before a type was known miss its counter keys.
	defaults := DefaultState(now)
	for t := range defaults.WeekCounts {
		if _, ok := state.WeekCounts[t]; !ok {
			state.WeekCounts[t] = 0
		}
		if _, ok := state.EngagementByType[t]; !ok {
			state.EngagementByType[t] = EngagementStats{}
		}
	}

	if state.ResetWeekIfElapsed(now) {
		if err := s.SaveState(ctx, state); err != nil {
			return nil, err
		}
		slog.Info("Reset weekly counters", "week_start", state.WeekStartDate)
	}
	return state, nil
}

// SaveState writes the whole state document back.
func (s *Store) SaveState(ctx context.Context, state *State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orchestrator_state (id, document, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`, string(doc))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
