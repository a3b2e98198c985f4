package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/engine"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
)

type timetableStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
	ArchivePublished(ctx context.Context, exec sqlx.ExtContext, label string) (int64, error)
}

type timetableEntryStore interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableEntry, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type resultCache interface {
	LookupResult(ctx context.Context, digest string) *models.ScheduleResult
	StoreResult(ctx context.Context, digest string, result *models.ScheduleResult)
}

// TimetablePersistence groups the optional PostgreSQL collaborators. A zero value disables persistence.
type TimetablePersistence struct {
	Timetables timetableStore
	Entries    timetableEntryStore
	Tx         txProvider
}

func (p TimetablePersistence) enabled() bool {
	return p.Timetables != nil && p.Entries != nil && p.Tx != nil
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	Engine engine.Config
	RunTTL time.Duration
}

// ScheduleGeneratorService runs the scheduling engine, keeps recent runs and persists accepted timetables.
type ScheduleGeneratorService struct {
	store     TimetablePersistence
	cache     resultCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleGeneratorConfig
	runs      *runStore
}

// NewScheduleGeneratorService wires scheduler dependencies.
func NewScheduleGeneratorService(
	store TimetablePersistence,
	cache resultCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = time.Hour
	}
	if cfg.Engine.NodeBudget <= 0 {
		cfg.Engine.NodeBudget = engine.DefaultNodeBudget
	}
	return &ScheduleGeneratorService{
		store:     store,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		runs:      newRunStore(cfg.RunTTL),
	}
}

// Generate solves the catalog snapshot, replaying a cached outcome when the same snapshot and budget were solved before.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	cfg := s.engineConfig(req.NodeBudget, req.TimeBudget())

	digest, err := SnapshotDigest(req.Catalog, cfg)
	if err != nil {
		s.logger.Debug("snapshot digest unavailable, skipping result cache", zap.Error(err))
	}

	var (
		result *models.ScheduleResult
		cached bool
	)
	if digest != "" && s.cache != nil {
		result = s.cache.LookupResult(ctx, digest)
		cached = result != nil
	}
	if result == nil {
		result, err = engine.Schedule(ctx, req.Catalog, cfg)
		if err != nil {
			s.logger.Error("schedule run failed", zap.String("digest", digest), zap.Error(err))
			return nil, translateEngineError(err)
		}
		s.metrics.ObserveScheduleRun(result)
		if digest != "" && s.cache != nil {
			s.cache.StoreResult(ctx, digest, result)
		}
	}

	run := scheduleRun{
		ID:        uuid.NewString(),
		Digest:    digest,
		Catalog:   req.Catalog,
		Result:    result,
		CreatedAt: time.Now().UTC(),
		Cached:    cached,
	}
	s.runs.Save(run)

	s.logger.Info("schedule run finished",
		zap.String("run_id", run.ID),
		zap.String("digest", digest),
		zap.String("status", string(result.Status)),
		zap.Int("entries", len(result.Entries)),
		zap.Int("unsatisfied", len(result.Unsatisfied)),
		zap.Int64("nodes", result.Stats.Nodes),
		zap.Duration("duration", result.Stats.Duration),
		zap.Bool("cached", cached),
	)
	return run.response(), nil
}

// Validate audits an externally produced schedule.
func (s *ScheduleGeneratorService) Validate(ctx context.Context, req dto.ValidateScheduleRequest) (*dto.ValidateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule validation payload")
	}
	violations, err := engine.Validate(req.Entries, req.Catalog)
	if err != nil {
		return nil, translateEngineError(err)
	}
	s.metrics.ObserveViolations(violations)
	s.logger.Debug("schedule validated", zap.Int("entries", len(req.Entries)), zap.Int("violations", len(violations)))
	return &dto.ValidateScheduleResponse{Valid: len(violations) == 0, Violations: violations}, nil
}

// GetRun returns a run kept in memory since its generation.
func (s *ScheduleGeneratorService) GetRun(ctx context.Context, runID string) (*dto.GenerateScheduleResponse, error) {
	run, ok := s.runs.Get(runID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found or expired")
	}
	return run.response(), nil
}

// timetableMeta is the JSON stored alongside a saved timetable.
type timetableMeta struct {
	RunID   string             `json:"runId"`
	Stats   models.SearchStats `json:"stats"`
	Catalog models.Catalog     `json:"catalog"`
	SavedAt time.Time          `json:"savedAt"`
}

// Save persists a SOLVED run as a new DRAFT version of the label.
func (s *ScheduleGeneratorService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	run, ok := s.runs.Get(req.RunID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found or expired")
	}
	if run.Result.Status != models.RunStatusSolved {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("only SOLVED runs can be saved, run is %s", run.Result.Status))
	}

	metaBytes, err := json.Marshal(timetableMeta{RunID: run.ID, Stats: run.Result.Stats, Catalog: run.Catalog, SavedAt: time.Now().UTC()})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
	}

	started := time.Now()
	tx, err := s.store.Tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.Timetable{
		Label:  req.Label,
		Status: models.TimetableStatusDraft,
		Digest: run.Digest,
		Meta:   types.JSONText(metaBytes),
	}
	if err = s.store.Timetables.CreateVersioned(ctx, tx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}

	rows := make([]models.TimetableEntry, 0, len(run.Result.Entries))
	for _, e := range run.Result.Entries {
		rows = append(rows, models.TimetableEntry{
			TimetableID: record.ID,
			GroupID:     e.GroupID,
			SubjectID:   e.SubjectID,
			TeacherID:   e.TeacherID,
			DayOfWeek:   int(e.Day),
			StartHour:   e.Start.Hour(),
		})
	}
	if err = s.store.Entries.InsertBatch(ctx, tx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
	}
	s.metrics.ObserveDBQuery("timetable_save", time.Since(started))

	s.logger.Info("timetable saved", zap.String("timetable_id", record.ID), zap.String("label", record.Label), zap.Int("version", record.Version), zap.Int("entries", len(rows)))
	return record, nil
}

// Publish makes a draft the published version of its label, archiving the previous one.
func (s *ScheduleGeneratorService) Publish(ctx context.Context, id string) (*models.Timetable, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.TimetableStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be published")
	}

	tx, err := s.store.Tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var archived int64
	if archived, err = s.store.Timetables.ArchivePublished(ctx, tx, record.Label); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive published timetable")
	}
	if err = s.store.Timetables.UpdateStatus(ctx, tx, record.ID, models.TimetableStatusPublished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit publish transaction")
	}

	record.Status = models.TimetableStatusPublished
	s.logger.Info("timetable published", zap.String("timetable_id", record.ID), zap.String("label", record.Label), zap.Int64("archived", archived))
	return record, nil
}

// List returns stored timetables, newest version first within each label.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	if err := s.requirePersistence(); err != nil {
		return nil, nil, err
	}
	filter := models.TimetableFilter{
		Label:    query.Label,
		Status:   models.TimetableStatus(query.Status),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	list, total, err := s.store.Timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetEntries returns the schedule stored in a timetable.
func (s *ScheduleGeneratorService) GetEntries(ctx context.Context, id string) ([]models.ScheduleEntry, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	if _, err := s.findTimetable(ctx, id); err != nil {
		return nil, err
	}
	return s.loadEntries(ctx, id)
}

// Delete removes a draft timetable version.
func (s *ScheduleGeneratorService) Delete(ctx context.Context, id string) error {
	if err := s.requirePersistence(); err != nil {
		return err
	}
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.store.Timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

// RunSnapshot exposes a kept run for rendering.
func (s *ScheduleGeneratorService) RunSnapshot(ctx context.Context, runID string) (*ScheduleSnapshot, error) {
	run, ok := s.runs.Get(runID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found or expired")
	}
	catalog := run.Catalog
	return &ScheduleSnapshot{Name: "run-" + shortID(run.ID), Catalog: &catalog, Entries: run.Result.Entries}, nil
}

// TimetableSnapshot exposes a stored timetable for rendering, with the catalog it was solved from.
func (s *ScheduleGeneratorService) TimetableSnapshot(ctx context.Context, id string) (*ScheduleSnapshot, error) {
	if err := s.requirePersistence(); err != nil {
		return nil, err
	}
	record, err := s.findTimetable(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := &ScheduleSnapshot{Name: fmt.Sprintf("%s-v%d", record.Label, record.Version), Entries: entries}
	var meta timetableMeta
	if err := json.Unmarshal(record.Meta, &meta); err != nil {
		s.logger.Warn("timetable meta unreadable, exporting ids only", zap.String("timetable_id", id), zap.Error(err))
	} else {
		snapshot.Catalog = &meta.Catalog
	}
	return snapshot, nil
}

func (s *ScheduleGeneratorService) requirePersistence() error {
	if !s.store.enabled() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable persistence is disabled")
	}
	return nil
}

func (s *ScheduleGeneratorService) findTimetable(ctx context.Context, id string) (*models.Timetable, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	record, err := s.store.Timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return record, nil
}

func (s *ScheduleGeneratorService) loadEntries(ctx context.Context, id string) ([]models.ScheduleEntry, error) {
	rows, err := s.store.Entries.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	entries := make([]models.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ScheduleEntry())
	}
	engine.SortEntries(entries)
	return entries, nil
}

func (s *ScheduleGeneratorService) engineConfig(nodeBudget int64, timeBudget time.Duration) engine.Config {
	cfg := s.cfg.Engine
	if nodeBudget > 0 {
		cfg.NodeBudget = nodeBudget
	}
	if timeBudget > 0 {
		cfg.TimeBudget = timeBudget
	}
	return cfg
}

// translateEngineError maps engine failures onto HTTP-aware application errors.
func translateEngineError(err error) error {
	var inputErr *engine.InputError
	switch {
	case errors.Is(err, engine.ErrMalformedInterval):
		return appErrors.Wrap(err, appErrors.ErrMalformedInterval.Code, appErrors.ErrMalformedInterval.Status, err.Error())
	case errors.Is(err, engine.ErrDegreeMismatch):
		return appErrors.Wrap(err, appErrors.ErrDegreeMismatch.Code, appErrors.ErrDegreeMismatch.Status, err.Error())
	case errors.As(err, &inputErr):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	case errors.Is(err, engine.ErrRejectedSchedule):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generated schedule failed validation")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate schedule")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// --- Run store ---

type scheduleRun struct {
	ID        string
	Digest    string
	Catalog   models.Catalog
	Result    *models.ScheduleResult
	CreatedAt time.Time
	Cached    bool
}

func (r scheduleRun) response() *dto.GenerateScheduleResponse {
	return &dto.GenerateScheduleResponse{
		RunID:       r.ID,
		Digest:      r.Digest,
		Cached:      r.Cached,
		GeneratedAt: r.CreatedAt,
		Result:      r.Result,
	}
}

type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]scheduleRun
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{
		ttl:   ttl,
		items: make(map[string]scheduleRun),
	}
}

// Save stores the run and drops expired ones.
func (s *runStore) Save(run scheduleRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if time.Since(item.CreatedAt) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[run.ID] = run
}

func (s *runStore) Get(id string) (scheduleRun, bool) {
	s.mu.RLock()
	run, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleRun{}, false
	}
	if time.Since(run.CreatedAt) > s.ttl {
		s.Delete(id)
		return scheduleRun{}, false
	}
	return run, true
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *runStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
