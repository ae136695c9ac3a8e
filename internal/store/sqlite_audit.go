package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendAudit records one mutation event. A missing id or timestamp is
// filled in before the insert.
func (s *SQLiteStore) AppendAudit(ctx context.Context, ev AuditEvent) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, actor, action, entity, entity_id, detail, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		ev.ID, ev.Actor, ev.Action, ev.Entity, ev.EntityID, ev.Detail, toMillis(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit events, newest first.
// A non-positive limit returns everything.
func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]AuditEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, actor, action, entity, entity_id, detail, created_at
		   FROM audit_events ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []AuditEvent
	for rows.Next() {
		var (
			ev        AuditEvent
			createdAt int64
		)
		if err := rows.Scan(&ev.ID, &ev.Actor, &ev.Action, &ev.Entity, &ev.EntityID, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.CreatedAt = fromMillis(createdAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit events: %w", err)
	}
	return out, nil
}
