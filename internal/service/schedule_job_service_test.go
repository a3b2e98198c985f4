package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
)

func TestScheduleJobServiceRunsToCompletion(t *testing.T) {
	generator := newGeneratorFixture(t, generatorFixtureConfig{})
	svc := NewScheduleJobService(generator, nil, zap.NewNop(), NewMetricsService(), ScheduleJobConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Submit(context.Background(), dto.GenerateScheduleRequest{Catalog: smallCatalog()})
	require.NoError(t, err)
	assert.Equal(t, dto.ScheduleJobQueued, job.Status)

	require.Eventually(t, func() bool {
		current, err := svc.Get(context.Background(), job.ID)
		return err == nil && current.Status == dto.ScheduleJobDone
	}, 5*time.Second, 10*time.Millisecond)

	done, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSolved, done.RunStatus)
	assert.Equal(t, 1, done.Attempts)

	run, err := generator.GetRun(context.Background(), done.RunID)
	require.NoError(t, err)
	assert.Len(t, run.Result.Entries, 2)
}

func TestScheduleJobServiceFailsInvalidInputWithoutRetry(t *testing.T) {
	runner := &runnerStub{err: appErrors.Clone(appErrors.ErrMalformedInterval, "bad interval")}
	svc := NewScheduleJobService(runner, nil, nil, nil, ScheduleJobConfig{Workers: 1, MaxRetries: 3, RetryDelay: time.Millisecond})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Submit(context.Background(), dto.GenerateScheduleRequest{Catalog: smallCatalog()})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, _ := svc.Get(context.Background(), job.ID)
		return current != nil && current.Status == dto.ScheduleJobFailed
	}, 5*time.Second, 10*time.Millisecond)

	failed, _ := svc.Get(context.Background(), job.ID)
	assert.Equal(t, "bad interval", failed.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
}

func TestScheduleJobServiceRetriesInternalFailures(t *testing.T) {
	runner := &runnerStub{err: errors.New("worker crashed")}
	svc := NewScheduleJobService(runner, nil, nil, nil, ScheduleJobConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Submit(context.Background(), dto.GenerateScheduleRequest{Catalog: smallCatalog()})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, _ := svc.Get(context.Background(), job.ID)
		return current != nil && current.Status == dto.ScheduleJobFailed
	}, 5*time.Second, 10*time.Millisecond)

	failed, _ := svc.Get(context.Background(), job.ID)
	assert.Equal(t, "worker crashed", failed.Error)
	assert.Equal(t, int32(3), atomic.LoadInt32(&runner.calls))
}

func TestScheduleJobServiceSubmitValidation(t *testing.T) {
	svc := NewScheduleJobService(&runnerStub{}, nil, nil, nil, ScheduleJobConfig{})

	_, err := svc.Submit(context.Background(), dto.GenerateScheduleRequest{NodeBudget: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), dto.GenerateScheduleRequest{Catalog: smallCatalog()})
	require.Error(t, err)
	assert.Equal(t, "QUEUE_UNAVAILABLE", appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type runnerStub struct {
	err   error
	calls int32
}

func (r *runnerStub) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.err != nil {
		return nil, r.err
	}
	return &dto.GenerateScheduleResponse{RunID: "run-1", Result: &models.ScheduleResult{Status: models.RunStatusSolved}}, nil
}
