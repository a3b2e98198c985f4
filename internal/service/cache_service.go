package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/cache"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

func resultKey(digest string) string {
	return cache.Key("result", digest)
}

// LookupResult returns the cached outcome for a snapshot digest, or nil on a miss.
// Backend failures degrade to a miss.
func (s *CacheService) LookupResult(ctx context.Context, digest string) *models.ScheduleResult {
	var result models.ScheduleResult
	hit, err := s.Get(ctx, resultKey(digest), &result)
	if err != nil || !hit {
		return nil
	}
	return &result
}

// StoreResult caches outcomes that do not depend on the budget; BUDGET_EXCEEDED is skipped.
func (s *CacheService) StoreResult(ctx context.Context, digest string, result *models.ScheduleResult) {
	if result == nil || result.Status == models.RunStatusBudgetExceeded {
		return
	}
	_ = s.Set(ctx, resultKey(digest), result, 0)
}

// PurgeResults drops every cached scheduling result.
func (s *CacheService) PurgeResults(ctx context.Context) error {
	return s.Invalidate(ctx, resultKey("*"))
}
