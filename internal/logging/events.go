package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region event-log
// EventLog writes learning events into the learning_log table.
type EventLog struct {
	db *sql.DB
}

// NewEventLog creates an EventLog on top of the store's database handle.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}
// #endregion event-log

// #region record
// Record inserts a learning event. A zero EventID or CreatedAt is filled in.
func (l *EventLog) Record(ctx context.Context, ev LearningEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO learning_log (event_id, trigger_type, context_type, context_json, new_seeds, impact, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID,
		ev.TriggerType,
		ev.ContextType,
		nullIfEmpty(ev.ContextJSON),
		ev.NewSeeds,
		ev.Impact,
		ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record learning event: %w", err)
	}
	return nil
}
// #endregion record

// #region recent
// Recent returns the most recent learning events, newest first.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]LearningEvent, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT event_id, trigger_type, context_type, context_json, new_seeds, impact, created_at
		 FROM learning_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent learning events: %w", err)
	}
	defer rows.Close()

	var out []LearningEvent
	for rows.Next() {
		var (
			ev        LearningEvent
			ctxJSON   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&ev.EventID, &ev.TriggerType, &ev.ContextType, &ctxJSON, &ev.NewSeeds, &ev.Impact, &createdAt); err != nil {
			return nil, fmt.Errorf("scan learning event: %w", err)
		}
		ev.ContextJSON = ctxJSON.String
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.CreatedAt = t
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
