package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
)

type timetableServiceMock struct {
	saved   dto.SaveTimetableRequest
	query   dto.TimetableQuery
	deleted string
	saveErr error
}

func (m *timetableServiceMock) Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	m.saved = req
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &models.Timetable{ID: "tt-1", Label: req.Label, Version: 2, Status: models.TimetableStatusDraft}, nil
}

func (m *timetableServiceMock) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	m.query = query
	return []models.Timetable{{ID: "tt-1", Label: query.Label}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *timetableServiceMock) GetEntries(ctx context.Context, id string) ([]models.ScheduleEntry, error) {
	return []models.ScheduleEntry{{SubjectID: "S1", TeacherID: "T1", GroupID: "G1", Day: models.Friday, Start: models.At(16), End: models.At(17)}}, nil
}

func (m *timetableServiceMock) Publish(ctx context.Context, id string) (*models.Timetable, error) {
	if id != "tt-1" {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only drafts can be published")
	}
	return &models.Timetable{ID: id, Status: models.TimetableStatusPublished}, nil
}

func (m *timetableServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func newTimetableRouter(h *TimetableHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/timetables", h.Save)
	router.GET("/timetables", h.List)
	router.GET("/timetables/:id/entries", h.Entries)
	router.POST("/timetables/:id/publish", h.Publish)
	router.DELETE("/timetables/:id", h.Delete)
	router.GET("/timetables/:id/export", h.Export)
	return router
}

func TestTimetableHandlerSave(t *testing.T) {
	svc := &timetableServiceMock{}
	router := newTimetableRouter(NewTimetableHandler(svc, &exporterMock{}))

	w := serveJSON(router, http.MethodPost, "/timetables", []byte(`{"runId":"run-1","label":"2025-A"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.SaveTimetableRequest{RunID: "run-1", Label: "2025-A"}, svc.saved)
	assert.Contains(t, w.Body.String(), `"version":2`)

	svc.saveErr = appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable persistence is disabled")
	w = serveJSON(router, http.MethodPost, "/timetables", []byte(`{"runId":"run-1","label":"2025-A"}`))
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = serveJSON(router, http.MethodPost, "/timetables", []byte(`[`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerList(t *testing.T) {
	svc := &timetableServiceMock{}
	router := newTimetableRouter(NewTimetableHandler(svc, &exporterMock{}))

	w := serveJSON(router, http.MethodGet, "/timetables?label=2025-A&status=PUBLISHED&page=2&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.TimetableQuery{Label: "2025-A", Status: "PUBLISHED", Page: 2, PageSize: 5}, svc.query)

	var body struct {
		Data       []models.Timetable `json:"data"`
		Pagination models.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Pagination.TotalCount)

	w = serveJSON(router, http.MethodGet, "/timetables?page=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerEntriesPublishDelete(t *testing.T) {
	svc := &timetableServiceMock{}
	router := newTimetableRouter(NewTimetableHandler(svc, &exporterMock{}))

	w := serveJSON(router, http.MethodGet, "/timetables/tt-1/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"day":"Viernes"`)
	assert.Contains(t, w.Body.String(), `"start":"16:00"`)

	w = serveJSON(router, http.MethodPost, "/timetables/tt-1/publish", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = serveJSON(router, http.MethodPost, "/timetables/tt-9/publish", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serveJSON(router, http.MethodDelete, "/timetables/tt-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tt-1", svc.deleted)
}

func TestTimetableHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	router := newTimetableRouter(NewTimetableHandler(&timetableServiceMock{}, exporter))

	w := serveJSON(router, http.MethodGet, "/timetables/tt-1/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportRequest{TimetableID: "tt-1", Format: dto.ExportFormatXLSX}, exporter.captured)
}
