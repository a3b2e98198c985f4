package dto

import (
	"time"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// GenerateScheduleRequest asks the engine to build a timetable for a catalog snapshot.
type GenerateScheduleRequest struct {
	Catalog      models.Catalog `json:"catalog"`
	NodeBudget   int64          `json:"nodeBudget" validate:"omitempty,min=1"`
	TimeBudgetMs int64          `json:"timeBudgetMs" validate:"omitempty,min=1,max=600000"`
}

// TimeBudget converts the millisecond budget into a duration.
func (r GenerateScheduleRequest) TimeBudget() time.Duration {
	return time.Duration(r.TimeBudgetMs) * time.Millisecond
}

// GenerateScheduleResponse wraps one run outcome.
type GenerateScheduleResponse struct {
	RunID       string                 `json:"runId"`
	Digest      string                 `json:"digest"`
	Cached      bool                   `json:"cached"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Result      *models.ScheduleResult `json:"result"`
}

// ValidateScheduleRequest audits an externally produced schedule against a catalog.
type ValidateScheduleRequest struct {
	Catalog models.Catalog         `json:"catalog"`
	Entries []models.ScheduleEntry `json:"entries" validate:"required"`
}

// ValidateScheduleResponse lists every rule the schedule breaks.
type ValidateScheduleResponse struct {
	Valid      bool               `json:"valid"`
	Violations []models.Violation `json:"violations"`
}

// SaveTimetableRequest persists a solved run under a label.
type SaveTimetableRequest struct {
	RunID string `json:"runId" validate:"required"`
	Label string `json:"label" validate:"required,max=120"`
}

// TimetableQuery filters stored timetables.
type TimetableQuery struct {
	Label    string `form:"label" json:"label"`
	Status   string `form:"status" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportRequest identifies what to render and how. Exactly one of RunID and TimetableID is set.
type ExportRequest struct {
	RunID       string       `json:"runId" validate:"required_without=TimetableID"`
	TimetableID string       `json:"timetableId" validate:"required_without=RunID"`
	Format      ExportFormat `json:"format" validate:"required"`
	Title       string       `json:"title" validate:"max=120"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ScheduleJobStatus is the lifecycle of an asynchronous run.
type ScheduleJobStatus string

const (
	ScheduleJobQueued  ScheduleJobStatus = "QUEUED"
	ScheduleJobRunning ScheduleJobStatus = "RUNNING"
	ScheduleJobDone    ScheduleJobStatus = "DONE"
	ScheduleJobFailed  ScheduleJobStatus = "FAILED"
)

// ScheduleJobResponse reports an asynchronous run.
type ScheduleJobResponse struct {
	ID          string            `json:"id"`
	Status      ScheduleJobStatus `json:"status"`
	RunID       string            `json:"runId,omitempty"`
	RunStatus   models.RunStatus  `json:"runStatus,omitempty"`
	Error       string            `json:"error,omitempty"`
	Attempts    int               `json:"attempts"`
	SubmittedAt time.Time         `json:"submittedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
