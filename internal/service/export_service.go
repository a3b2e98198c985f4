package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/export"
)

// ScheduleSnapshot is a schedule together with the catalog that names its ids.
type ScheduleSnapshot struct {
	Name    string
	Catalog *models.Catalog
	Entries []models.ScheduleEntry
}

type scheduleSource interface {
	RunSnapshot(ctx context.Context, runID string) (*ScheduleSnapshot, error)
	TimetableSnapshot(ctx context.Context, id string) (*ScheduleSnapshot, error)
}

// Renderer turns a document into file bytes.
type Renderer interface {
	ContentType() string
	Extension() string
	Render(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	DefaultTitle string
}

// ExportService renders runs and stored timetables as CSV, XLSX or PDF downloads.
type ExportService struct {
	source    scheduleSource
	renderers map[dto.ExportFormat]Renderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults for each format.
func NewExportService(source scheduleSource, renderers map[dto.ExportFormat]Renderer, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = "Horario semanal"
	}
	defaults := map[dto.ExportFormat]Renderer{
		dto.ExportFormatCSV:  export.NewCSVExporter(),
		dto.ExportFormatXLSX: export.NewXLSXExporter(),
		dto.ExportFormatPDF:  export.NewPDFExporter(),
	}
	for format, r := range renderers {
		if r != nil {
			defaults[format] = r
		}
	}
	return &ExportService{
		source:    source,
		renderers: defaults,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders the requested run or timetable.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	format := dto.ExportFormat(strings.ToLower(string(req.Format)))
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", req.Format))
	}

	var (
		snapshot *ScheduleSnapshot
		err      error
	)
	if req.TimetableID != "" {
		snapshot, err = s.source.TimetableSnapshot(ctx, req.TimetableID)
	} else {
		snapshot, err = s.source.RunSnapshot(ctx, req.RunID)
	}
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = s.cfg.DefaultTitle
	}
	payload, err := renderer.Render(export.NewDocument(title, snapshot.Entries, snapshot.Catalog))
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	file := &dto.ExportFile{
		Filename:    fmt.Sprintf("horario-%s.%s", slugify(snapshot.Name), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}
	s.logger.Info("schedule exported", zap.String("file", file.Filename), zap.Int("bytes", len(payload)))
	return file, nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9\-]+`)

func slugify(name string) string {
	slug := unsafeFilename.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "export"
	}
	return slug
}
