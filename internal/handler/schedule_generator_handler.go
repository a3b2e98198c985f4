package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/middleware"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	Validate(ctx context.Context, req dto.ValidateScheduleRequest) (*dto.ValidateScheduleResponse, error)
	GetRun(ctx context.Context, runID string) (*dto.GenerateScheduleResponse, error)
}

type scheduleExporter interface {
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error)
}

type resultPurger interface {
	PurgeResults(ctx context.Context) error
}

// ScheduleGeneratorHandler exposes the scheduler and validator endpoints.
type ScheduleGeneratorHandler struct {
	service  scheduleGenerator
	exporter scheduleExporter
	cache    resultPurger
}

// NewScheduleGeneratorHandler constructs the handler. cache may be nil when the result cache is off.
func NewScheduleGeneratorHandler(svc scheduleGenerator, exporter scheduleExporter, cache resultPurger) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc, exporter: exporter, cache: cache}
}

// Generate godoc
// @Summary Build a weekly timetable for a catalog snapshot
// @Description Infeasible and budget-exceeded runs still answer 200; inspect result.status.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Catalog snapshot and budgets"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	middleware.SetDigest(c, result.Digest)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Validate godoc
// @Summary Audit an externally produced schedule
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.ValidateScheduleRequest true "Catalog and entries"
// @Success 200 {object} response.Envelope
// @Router /schedules/validate [post]
func (h *ScheduleGeneratorHandler) Validate(c *gin.Context) {
	var req dto.ValidateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validate payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GetRun godoc
// @Summary Fetch a recent run
// @Tags Scheduler
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/runs/{id} [get]
func (h *ScheduleGeneratorHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// ExportRun godoc
// @Summary Download a run as CSV, XLSX or PDF
// @Tags Scheduler
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Param format query string true "csv, xlsx or pdf"
// @Param title query string false "Document title"
// @Success 200 {file} file
// @Router /schedules/runs/{id}/export [get]
func (h *ScheduleGeneratorHandler) ExportRun(c *gin.Context) {
	serveExport(c, h.exporter, dto.ExportRequest{
		RunID:  c.Param("id"),
		Format: dto.ExportFormat(c.Query("format")),
		Title:  c.Query("title"),
	})
}

// PurgeCache godoc
// @Summary Drop every cached scheduling result
// @Tags Scheduler
// @Success 204
// @Router /schedules/cache [delete]
func (h *ScheduleGeneratorHandler) PurgeCache(c *gin.Context) {
	if h.cache == nil {
		response.NoContent(c)
		return
	}
	if err := h.cache.PurgeResults(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge result cache"))
		return
	}
	response.NoContent(c)
}

func serveExport(c *gin.Context, exporter scheduleExporter, req dto.ExportRequest) {
	file, err := exporter.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
