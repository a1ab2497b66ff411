// Package postgres opens the relational store and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"municipal/internal/platform/config"
	txcontext "municipal/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Open connects with lib/pq and verifies the connection.
// Returns nil if the URL is empty (Postgres not configured).
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NextID draws the next value of a sequence. Sequence names are fixed
// identifiers from schema.sql, never user input.
func NextID(ctx context.Context, db *sql.DB, sequence string) (int64, error) {
	var id int64
	if err := db.QueryRowContext(ctx, "SELECT nextval($1::regclass)", sequence).Scan(&id); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", sequence, err)
	}
	return id, nil
}

// SyncSequence moves a sequence past ids inserted explicitly (seed data).
func SyncSequence(ctx context.Context, db *sql.DB, sequence, table string) error {
	query := fmt.Sprintf("SELECT setval($1::regclass, GREATEST((SELECT COALESCE(MAX(id), 0) FROM %s), 1))", table)
	if _, err := db.ExecContext(ctx, query, sequence); err != nil {
		return fmt.Errorf("sync sequence %s: %w", sequence, err)
	}
	return nil
}

// Querier is the subset of *sql.DB and *sql.Tx the stores use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction carried by ctx, or db when there is none.
func Conn(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// IsUniqueViolation reports whether err is a unique_violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
