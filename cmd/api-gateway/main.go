package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/abel-rois666/Generador-Horarios-CUOM/api/swagger"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/engine"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/handler"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/repository"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/service"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/cache"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/config"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/database"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/logger"
)

// @title Generador de Horarios CUOM API
// @version 1.0.0
// @description Builds conflict-free weekly timetables for university groups and audits externally produced ones.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	dependencies := map[string]handler.Pinger{}

	var persistence service.TimetablePersistence
	if cfg.Persistence.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate timetable schema", zap.Error(err))
		}
		persistence = newPersistence(db)
		dependencies["postgres"] = db
		logr.Info("timetable persistence enabled", zap.String("database", cfg.Database.Name))
	}

	var redisClient redis.UniversalClient
	if cfg.ResultCache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("result cache disabled, redis unreachable", zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.ResultCache.TTL, logr, redisClient != nil)
	if redisClient != nil {
		dependencies["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}

	generator := service.NewScheduleGeneratorService(persistence, cacheSvc, metricsSvc, validate, logr, service.ScheduleGeneratorConfig{
		Engine: engine.Config{
			NodeBudget: cfg.Scheduler.NodeBudget,
			TimeBudget: cfg.Scheduler.TimeBudget,
			Workers:    cfg.Scheduler.Workers,
		},
		RunTTL: cfg.Scheduler.RunTTL,
	})
	exporter := service.NewExportService(generator, nil, validate, logr, service.ExportConfig{DefaultTitle: cfg.Export.Title})
	jobSvc := service.NewScheduleJobService(generator, validate, logr, metricsSvc, service.ScheduleJobConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		TTL:        cfg.Scheduler.RunTTL,
	})
	jobSvc.Start(ctx)
	defer jobSvc.Stop()

	router := newRouter(cfg, logr, metricsSvc, routeHandlers{
		generator:  handler.NewScheduleGeneratorHandler(generator, exporter, cacheSvc),
		timetables: handler.NewTimetableHandler(generator, exporter),
		jobs:       handler.NewScheduleJobHandler(jobSvc),
		catalog:    handler.NewCatalogHandler(service.SampleCatalog),
		metrics:    handler.NewMetricsHandler(metricsSvc, dependencies),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newPersistence(db *sqlx.DB) service.TimetablePersistence {
	return service.TimetablePersistence{
		Timetables: repository.NewTimetableRepository(db),
		Entries:    repository.NewTimetableEntryRepository(db),
		Tx:         db,
	}
}
