package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// TimetableEntryRepository manages the entries of stored timetables.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository builds repository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

func (r *TimetableEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch writes entries for a timetable. Unique indexes reject double bookings.
func (r *TimetableEntryRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_entries (id, timetable_id, group_id, subject_id, teacher_id, day_of_week, start_hour, created_at)
VALUES (:id, :timetable_id, :group_id, :subject_id, :teacher_id, :day_of_week, :start_hour, :created_at)`

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns entries in the canonical day, hour, group, subject, teacher order.
func (r *TimetableEntryRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, timetable_id, group_id, subject_id, teacher_id, day_of_week, start_hour, created_at
FROM timetable_entries WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_hour ASC, group_id ASC, subject_id ASC, teacher_id ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
