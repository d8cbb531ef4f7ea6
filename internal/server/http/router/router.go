package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chanddari/subbot/internal/config"
	"github.com/chanddari/subbot/internal/metrics"
	"github.com/chanddari/subbot/internal/server/http/handlers"
	"github.com/chanddari/subbot/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.BotFacade, registry *prometheus.Registry, collector metrics.Collector, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	webhookHandler := handlers.NewWebhookHandler(facade, collector, logger, cfg.EventTimeout)
	opsHandler := handlers.NewOpsHandler(facade, facade, logger)

	engine.POST("/telegram/webhook", webhookHandler.Receive)
	engine.GET("/cron/daily", opsHandler.DailySweep)
	engine.GET("/", opsHandler.Liveness)
	engine.GET("/healthz", opsHandler.Readiness)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return engine
}
