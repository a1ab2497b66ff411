package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"municipal/internal/platform/postgres"
	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/sentinel"
	txcontext "municipal/pkg/platform/tx"
)

const procedureColumns = `id, file_number, citizen_id, type, description, status,
	started_at, completed_at, amount_due, history`

// PostgresStore persists procedures in PostgreSQL. Execute locks the row with
// SELECT ... FOR UPDATE for the duration of the callback.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) NextID(ctx context.Context) (id.ProcedureID, error) {
	v, err := postgres.NextID(ctx, s.db, "procedures_id_seq")
	if err != nil {
		return 0, err
	}
	return id.ProcedureID(v), nil
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Procedure) error {
	history, err := json.Marshal(p.History)
	if err != nil {
		return fmt.Errorf("marshal procedure history: %w", err)
	}
	query := `
		INSERT INTO procedures (` + procedureColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		int64(p.ID),
		p.FileNumber,
		int64(p.CitizenID),
		string(p.Type),
		p.Description,
		string(p.Status),
		p.StartedAt,
		p.CompletedAt,
		p.AmountDue,
		history,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert procedure %s: %w", p.FileNumber, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert procedure: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, procedureID id.ProcedureID) (*models.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE id = $1`
	return scanProcedure(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, int64(procedureID)))
}

func (s *PostgresStore) FindByFileNumber(ctx context.Context, fileNumber string) (*models.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE file_number = $1`
	return scanProcedure(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, fileNumber))
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenID id.CitizenID) ([]*models.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE citizen_id = $1 ORDER BY started_at, id`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, int64(citizenID))
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Procedure, 0)
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate procedures: %w", err)
	}
	return out, nil
}

// Execute loads the row FOR UPDATE, runs fn and writes the result back in one
// transaction. Nothing is written when fn fails or ctx ends first, unless fn
// marked the unit irreversible.
func (s *PostgresStore) Execute(ctx context.Context, procedureID id.ProcedureID, fn func(ctx context.Context, p *models.Procedure) error) (*models.Procedure, error) {
	var out *models.Procedure
	err := txcontext.Run(ctx, s.db, s.timeout, func(ctx context.Context) error {
		query := `SELECT ` + procedureColumns + ` FROM procedures WHERE id = $1 FOR UPDATE`
		p, err := scanProcedure(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, int64(procedureID)))
		if err != nil {
			return err
		}
		if err := fn(ctx, p); err != nil {
			return err
		}
		if err := s.update(txcontext.CommitContext(ctx), p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) update(ctx context.Context, p *models.Procedure) error {
	history, err := json.Marshal(p.History)
	if err != nil {
		return fmt.Errorf("marshal procedure history: %w", err)
	}
	query := `
		UPDATE procedures
		SET status = $2, completed_at = $3, amount_due = $4, history = $5
		WHERE id = $1
	`
	_, err = postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		int64(p.ID),
		string(p.Status),
		p.CompletedAt,
		p.AmountDue,
		history,
	)
	if err != nil {
		return fmt.Errorf("update procedure: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcedure(row rowScanner) (*models.Procedure, error) {
	var (
		p           models.Procedure
		procID      int64
		citizenID   int64
		procType    string
		status      string
		completedAt sql.NullTime
		history     []byte
	)
	err := row.Scan(
		&procID,
		&p.FileNumber,
		&citizenID,
		&procType,
		&p.Description,
		&status,
		&p.StartedAt,
		&completedAt,
		&p.AmountDue,
		&history,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan procedure: %w", err)
	}
	p.ID = id.ProcedureID(procID)
	p.CitizenID = id.CitizenID(citizenID)
	p.Type = models.Type(procType)
	p.Status = models.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	if err := json.Unmarshal(history, &p.History); err != nil {
		return nil, fmt.Errorf("unmarshal procedure history: %w", err)
	}
	return &p, nil
}
