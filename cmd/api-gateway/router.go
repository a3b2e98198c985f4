package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/handler"
	internalmiddleware "github.com/abel-rois666/Generador-Horarios-CUOM/internal/middleware"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/service"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/config"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/logger"
	corsmiddleware "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/middleware/cors"
	reqidmiddleware "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/middleware/requestid"
)

type routeHandlers struct {
	generator  *handler.ScheduleGeneratorHandler
	timetables *handler.TimetableHandler
	jobs       *handler.ScheduleJobHandler
	catalog    *handler.CatalogHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	api.GET("/metrics/summary", h.metrics.Summary)
	api.GET("/catalog/sample", h.catalog.Sample)

	schedules := api.Group("/schedules")
	schedules.POST("/generate", h.generator.Generate)
	schedules.POST("/validate", h.generator.Validate)
	schedules.GET("/runs/:id", h.generator.GetRun)
	schedules.GET("/runs/:id/export", h.generator.ExportRun)
	schedules.DELETE("/cache", h.generator.PurgeCache)
	schedules.POST("/jobs", h.jobs.Submit)
	schedules.GET("/jobs/:id", h.jobs.Get)

	timetables := api.Group("/timetables")
	timetables.POST("", h.timetables.Save)
	timetables.GET("", h.timetables.List)
	timetables.GET("/:id/entries", h.timetables.Entries)
	timetables.POST("/:id/publish", h.timetables.Publish)
	timetables.DELETE("/:id", h.timetables.Delete)
	timetables.GET("/:id/export", h.timetables.Export)

	return r
}
