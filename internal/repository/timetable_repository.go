package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

const timetableColumns = "id, label, version, status, digest, meta, created_at, updated_at"

// TimetableRepository persists versioned timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timetable assigning the next version for its label.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.Label == "" {
		return fmt.Errorf("label is required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if len(timetable.Meta) == 0 {
		timetable.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables WHERE label = $1`
	if err := sqlx.GetContext(ctx, target, &timetable.Version, nextVersionQuery, timetable.Label); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetables (id, label, version, status, digest, meta, created_at, updated_at)
VALUES (:id, :label, :version, :status, :digest, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// List returns timetables matching the filter, newest version first, with the total count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	var (
		args       []interface{}
		conditions = []string{"1=1"}
	)
	if filter.Label != "" {
		conditions = append(conditions, fmt.Sprintf("label = $%d", len(args)+1))
		args = append(args, filter.Label)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM timetables %s ORDER BY label ASC, version DESC LIMIT %d OFFSET %d", timetableColumns, where, size, offset)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetables "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}
	return timetables, total, nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := "SELECT " + timetableColumns + " FROM timetables WHERE id = $1"
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Delete removes a stored timetable version; entries cascade.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM timetables WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus moves a timetable to the given status.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchivePublished archives whichever version of the label is currently published.
func (r *TimetableRepository) ArchivePublished(ctx context.Context, exec sqlx.ExtContext, label string) (int64, error) {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE label = $3 AND status = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, models.TimetableStatusArchived, time.Now().UTC(), label, models.TimetableStatusPublished)
	if err != nil {
		return 0, fmt.Errorf("archive published timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archived timetable rows affected: %w", err)
	}
	return affected, nil
}
