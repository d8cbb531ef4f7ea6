package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpsHandler serves the cron trigger and health endpoints.
type OpsHandler struct {
	sweep  SweepFacade
	health HealthFacade
	logger *slog.Logger
}

// NewOpsHandler constructs the operations handler.
func NewOpsHandler(sweep SweepFacade, health HealthFacade, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{sweep: sweep, health: health, logger: logger}
}

// DailySweep handles GET /cron/daily, running one sweep synchronously.
func (h *OpsHandler) DailySweep(c *gin.Context) {
	if err := h.sweep.RunSweep(c.Request.Context()); err != nil {
		h.logger.Error("cron sweep failed", slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "ERR")
		return
	}
	c.String(http.StatusOK, "OK")
}

// Liveness handles GET /.
func (h *OpsHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Readiness handles GET /healthz, probing storage.
func (h *OpsHandler) Readiness(c *gin.Context) {
	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		c.String(http.StatusServiceUnavailable, "ERR")
		return
	}
	c.String(http.StatusOK, "OK")
}
