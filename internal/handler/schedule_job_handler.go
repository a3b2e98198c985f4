package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/response"
)

type scheduleJobs interface {
	Submit(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleJobResponse, error)
	Get(ctx context.Context, id string) (*dto.ScheduleJobResponse, error)
}

// ScheduleJobHandler exposes asynchronous runs.
type ScheduleJobHandler struct {
	service scheduleJobs
}

// NewScheduleJobHandler constructs the handler.
func NewScheduleJobHandler(svc scheduleJobs) *ScheduleJobHandler {
	return &ScheduleJobHandler{service: svc}
}

// Submit godoc
// @Summary Queue a scheduling run
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Catalog snapshot and budgets"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /schedules/jobs [post]
func (h *ScheduleJobHandler) Submit(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	job, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+job.ID)
	response.Accepted(c, job)
}

// Get godoc
// @Summary Status of a queued run
// @Tags Scheduler
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/jobs/{id} [get]
func (h *ScheduleJobHandler) Get(c *gin.Context) {
	job, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
