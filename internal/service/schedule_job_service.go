package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/jobs"
)

const scheduleJobType = "schedule.generate"

type scheduleRunner interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

// ScheduleJobConfig tunes the asynchronous run queue.
type ScheduleJobConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// TTL bounds how long finished jobs stay visible.
	TTL time.Duration
}

// ScheduleJobService runs scheduling requests on a background worker pool.
type ScheduleJobService struct {
	runner    scheduleRunner
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	ttl       time.Duration

	mu    sync.RWMutex
	items map[string]*dto.ScheduleJobResponse
}

// NewScheduleJobService builds the service and its queue. Call Start before Submit.
func NewScheduleJobService(runner scheduleRunner, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg ScheduleJobConfig) *ScheduleJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	s := &ScheduleJobService{
		runner:    runner,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		ttl:       cfg.TTL,
		items:     make(map[string]*dto.ScheduleJobResponse),
	}
	s.queue = jobs.NewQueue("schedule", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnGiveUp:   s.giveUp,
	})
	return s
}

// Start launches the workers.
func (s *ScheduleJobService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for the workers to exit.
func (s *ScheduleJobService) Stop() {
	s.queue.Stop()
}

// Submit queues a generation request and returns its job record.
func (s *ScheduleJobService) Submit(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	now := time.Now().UTC()
	record := &dto.ScheduleJobResponse{
		ID:          uuid.NewString(),
		Status:      dto.ScheduleJobQueued,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.sweepLocked(now)
	s.items[record.ID] = record
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: scheduleJobType, Payload: req}); err != nil {
		s.mu.Lock()
		delete(s.items, record.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, "QUEUE_UNAVAILABLE", http.StatusServiceUnavailable, "schedule queue unavailable")
	}
	s.metrics.ObserveJob("submitted")
	s.logger.Info("schedule job queued", zap.String("job_id", record.ID), zap.Int("pending", s.queue.Pending()))

	snapshot := *record
	return &snapshot, nil
}

// Get reports the current state of a job.
func (s *ScheduleJobService) Get(ctx context.Context, id string) (*dto.ScheduleJobResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.items[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found or expired")
	}
	snapshot := *record
	return &snapshot, nil
}

func (s *ScheduleJobService) handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateScheduleRequest)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T", job.Payload))
	}
	s.update(job.ID, func(r *dto.ScheduleJobResponse) {
		r.Status = dto.ScheduleJobRunning
		r.Attempts = job.Attempt + 1
	})

	resp, err := s.runner.Generate(ctx, req)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status < http.StatusInternalServerError {
			return jobs.Permanent(err)
		}
		s.update(job.ID, func(r *dto.ScheduleJobResponse) {
			r.Status = dto.ScheduleJobQueued
			r.Error = appErr.Message
		})
		return err
	}

	s.update(job.ID, func(r *dto.ScheduleJobResponse) {
		r.Status = dto.ScheduleJobDone
		r.RunID = resp.RunID
		r.RunStatus = resp.Result.Status
		r.Error = ""
	})
	s.metrics.ObserveJob("done")
	return nil
}

func (s *ScheduleJobService) giveUp(job jobs.Job, err error) {
	message := appErrors.FromError(err).Message
	if message == appErrors.ErrInternal.Message {
		message = err.Error()
	}
	s.update(job.ID, func(r *dto.ScheduleJobResponse) {
		r.Status = dto.ScheduleJobFailed
		r.Error = message
	})
	s.metrics.ObserveJob("failed")
}

func (s *ScheduleJobService) update(id string, fn func(*dto.ScheduleJobResponse)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[id]
	if !ok {
		return
	}
	fn(record)
	record.UpdatedAt = time.Now().UTC()
}

// sweepLocked drops finished jobs older than the TTL.
func (s *ScheduleJobService) sweepLocked(now time.Time) {
	for id, record := range s.items {
		finished := record.Status == dto.ScheduleJobDone || record.Status == dto.ScheduleJobFailed
		if finished && now.Sub(record.UpdatedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
