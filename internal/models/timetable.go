package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for saved timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable is a versioned, accepted schedule saved under a label (e.g. "2025-A").
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	Label     string          `db:"label" json:"label"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Digest    string          `db:"digest" json:"digest"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableEntry is a stored schedule entry belonging to a timetable.
type TimetableEntry struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartHour   int       `db:"start_hour" json:"start_hour"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScheduleEntry converts the stored row back into a schedule entry.
func (e TimetableEntry) ScheduleEntry() ScheduleEntry {
	return ScheduleEntry{
		SubjectID: e.SubjectID,
		TeacherID: e.TeacherID,
		GroupID:   e.GroupID,
		Day:       Day(e.DayOfWeek),
		Start:     At(e.StartHour),
		End:       At(e.StartHour + 1),
	}
}
