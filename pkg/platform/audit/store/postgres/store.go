package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "municipal/pkg/domain"
	audit "municipal/pkg/platform/audit"
	txcontext "municipal/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one event. When ctx carries a transaction the event commits
// or rolls back with it.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	// Always derive category from action; eventCategories is the source of truth.
	category := audit.AuditEvent(event.Action).Category()

	var citizenID *int64
	if !event.CitizenID.IsZero() {
		v := int64(event.CitizenID)
		citizenID = &v
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, citizen_id, subject, action,
			reason, amount, receipt_id, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		citizenID,
		event.Subject,
		event.Action,
		event.Reason,
		event.Amount,
		event.ReceiptID,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCitizen returns events for a citizen, newest first.
func (s *Store) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, citizen_id, subject, action,
			   reason, amount, receipt_id, request_id
		FROM audit_events
		WHERE citizen_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, int64(citizenID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			citizen  sql.NullInt64
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&citizen,
			&event.Subject,
			&event.Action,
			&event.Reason,
			&event.Amount,
			&event.ReceiptID,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if citizen.Valid {
			event.CitizenID = id.CitizenID(citizen.Int64)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
