package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/response"
)

type timetableService interface {
	Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error)
	GetEntries(ctx context.Context, id string) ([]models.ScheduleEntry, error)
	Publish(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
}

// TimetableHandler manages saved timetable versions.
type TimetableHandler struct {
	service  timetableService
	exporter scheduleExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService, exporter scheduleExporter) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// Save godoc
// @Summary Save a solved run as a new draft version
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Run and label"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	timetable, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// List godoc
// @Summary List saved timetables
// @Tags Timetables
// @Produce json
// @Param label query string false "Label"
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Entries godoc
// @Summary Entries of a saved timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/entries [get]
func (h *TimetableHandler) Entries(c *gin.Context) {
	entries, err := h.service.GetEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Publish godoc
// @Summary Publish a draft, archiving the previously published version of its label
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/publish [post]
func (h *TimetableHandler) Publish(c *gin.Context) {
	timetable, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete a draft timetable
// @Tags Timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download a saved timetable
// @Tags Timetables
// @Produce octet-stream
// @Param id path string true "Timetable ID"
// @Param format query string true "csv, xlsx or pdf"
// @Param title query string false "Document title"
// @Success 200 {file} file
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	serveExport(c, h.exporter, dto.ExportRequest{
		TimetableID: c.Param("id"),
		Format:      dto.ExportFormat(c.Query("format")),
		Title:       c.Query("title"),
	})
}
