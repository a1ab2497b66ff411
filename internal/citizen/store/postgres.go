package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"municipal/internal/citizen/models"
	"municipal/internal/platform/postgres"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/sentinel"
)

// PostgresStore persists citizens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) NextID(ctx context.Context) (id.CitizenID, error) {
	v, err := postgres.NextID(ctx, s.db, "citizens_id_seq")
	if err != nil {
		return 0, err
	}
	return id.CitizenID(v), nil
}

func (s *PostgresStore) Insert(ctx context.Context, c *models.Citizen) error {
	query := `
		INSERT INTO citizens (id, national_id, full_name, email, phone, address, district, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		int64(c.ID),
		string(c.NationalID),
		c.FullName,
		c.Email,
		c.Phone,
		c.Address,
		c.District,
		c.RegisteredAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert citizen %d: %w", int64(c.ID), sentinel.ErrConflict)
		}
		return fmt.Errorf("insert citizen: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	query := `
		SELECT id, national_id, full_name, email, phone, address, district, registered_at
		FROM citizens
		WHERE id = $1
	`
	return scanCitizen(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, int64(citizenID)))
}

func (s *PostgresStore) FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Citizen, error) {
	query := `
		SELECT id, national_id, full_name, email, phone, address, district, registered_at
		FROM citizens
		WHERE national_id = $1
	`
	return scanCitizen(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, string(nationalID)))
}

func scanCitizen(row *sql.Row) (*models.Citizen, error) {
	var (
		c          models.Citizen
		citizenID  int64
		nationalID string
	)
	err := row.Scan(
		&citizenID,
		&nationalID,
		&c.FullName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.District,
		&c.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan citizen: %w", err)
	}
	c.ID = id.CitizenID(citizenID)
	c.NationalID = id.NationalID(nationalID)
	return &c, nil
}
