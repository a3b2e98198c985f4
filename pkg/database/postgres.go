package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/config"
)

// Schema creates the timetable store. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS timetables (
		id UUID PRIMARY KEY,
		label TEXT NOT NULL,
		version INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		digest TEXT NOT NULL,
		meta JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (label, version)
	)`,
	`CREATE TABLE IF NOT EXISTS timetable_entries (
		id UUID PRIMARY KEY,
		timetable_id UUID NOT NULL REFERENCES timetables(id) ON DELETE CASCADE,
		group_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		teacher_id TEXT NOT NULL,
		day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 1 AND 6),
		start_hour SMALLINT NOT NULL CHECK (start_hour BETWEEN 0 AND 23),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (timetable_id, group_id, day_of_week, start_hour),
		UNIQUE (timetable_id, teacher_id, day_of_week, start_hour)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timetables_label_status ON timetables (label, status)`,
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies Schema inside a single transaction.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
