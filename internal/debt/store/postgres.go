package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"municipal/internal/debt/models"
	"municipal/internal/platform/postgres"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/sentinel"
	txcontext "municipal/pkg/platform/tx"
)

const debtColumns = `id, citizen_id, type, base_amount, late_interest, period,
	due_date, status, plan, history, created_at`

// PostgresStore persists debts in PostgreSQL. The installment plan and the
// history are stored as JSONB next to the row they belong to.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) NextID(ctx context.Context) (id.DebtID, error) {
	v, err := postgres.NextID(ctx, s.db, "debts_id_seq")
	if err != nil {
		return 0, err
	}
	return id.DebtID(v), nil
}

func (s *PostgresStore) Insert(ctx context.Context, d *models.Debt) error {
	plan, history, err := marshalDebt(d)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		int64(d.ID),
		int64(d.CitizenID),
		string(d.Type),
		d.BaseAmount,
		d.LateInterest,
		d.Period,
		d.DueDate,
		string(d.Status),
		plan,
		history,
		d.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert debt %d: %w", int64(d.ID), sentinel.ErrConflict)
		}
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, debtID id.DebtID) (*models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1`
	return scanDebt(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, int64(debtID)))
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenID id.CitizenID, status models.Status) ([]*models.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts
		WHERE citizen_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY id
	`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, int64(citizenID), string(status))
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Debt, 0)
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debts: %w", err)
	}
	return out, nil
}

// Execute locks the row FOR UPDATE and writes fn's result back in the same
// transaction.
func (s *PostgresStore) Execute(ctx context.Context, debtID id.DebtID, fn func(ctx context.Context, d *models.Debt) error) (*models.Debt, error) {
	var out *models.Debt
	err := txcontext.Run(ctx, s.db, s.timeout, func(ctx context.Context) error {
		query := `SELECT ` + debtColumns + ` FROM debts WHERE id = $1 FOR UPDATE`
		d, err := scanDebt(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, int64(debtID)))
		if err != nil {
			return err
		}
		if err := fn(ctx, d); err != nil {
			return err
		}
		plan, history, err := marshalDebt(d)
		if err != nil {
			return err
		}
		ctx = txcontext.CommitContext(ctx)
		_, err = postgres.Conn(ctx, s.db).ExecContext(ctx,
			`UPDATE debts SET status = $2, plan = $3, history = $4 WHERE id = $1`,
			int64(d.ID), string(d.Status), plan, history,
		)
		if err != nil {
			return fmt.Errorf("update debt: %w", err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// marshalDebt encodes the JSONB columns. A debt without a plan stores NULL.
func marshalDebt(d *models.Debt) (plan sql.NullString, history []byte, err error) {
	if d.Plan != nil {
		raw, err := json.Marshal(d.Plan)
		if err != nil {
			return plan, nil, fmt.Errorf("marshal installment plan: %w", err)
		}
		plan = sql.NullString{String: string(raw), Valid: true}
	}
	if history, err = json.Marshal(d.History); err != nil {
		return plan, nil, fmt.Errorf("marshal debt history: %w", err)
	}
	return plan, history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*models.Debt, error) {
	var (
		d         models.Debt
		debtID    int64
		citizenID int64
		debtType  string
		status    string
		plan      []byte
		history   []byte
	)
	err := row.Scan(
		&debtID,
		&citizenID,
		&debtType,
		&d.BaseAmount,
		&d.LateInterest,
		&d.Period,
		&d.DueDate,
		&status,
		&plan,
		&history,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan debt: %w", err)
	}
	d.ID = id.DebtID(debtID)
	d.CitizenID = id.CitizenID(citizenID)
	d.Type = models.Type(debtType)
	d.Status = models.Status(status)
	if len(plan) > 0 {
		d.Plan = &models.InstallmentPlan{}
		if err := json.Unmarshal(plan, d.Plan); err != nil {
			return nil, fmt.Errorf("unmarshal installment plan: %w", err)
		}
	}
	if err := json.Unmarshal(history, &d.History); err != nil {
		return nil, fmt.Errorf("unmarshal debt history: %w", err)
	}
	return &d, nil
}
