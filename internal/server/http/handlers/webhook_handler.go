package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/metrics"
)

// WebhookHandler accepts bot API updates. The webhook is acknowledged as
// soon as the payload parses; processing happens on a detached context so a
// slow handler never makes the bot API re-deliver the update.
type WebhookHandler struct {
	facade       UpdateFacade
	collector    metrics.Collector
	logger       *slog.Logger
	eventTimeout time.Duration
}

// NewWebhookHandler constructs the webhook handler.
func NewWebhookHandler(facade UpdateFacade, collector metrics.Collector, logger *slog.Logger, eventTimeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		facade:       facade,
		collector:    collector,
		logger:       logger,
		eventTimeout: eventTimeout,
	}
}

// Receive handles POST /telegram/webhook.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		// A malformed body is acknowledged too; re-delivery cannot fix it.
		h.logger.Warn("malformed webhook payload", slog.String("error", err.Error()))
		c.Status(http.StatusOK)
		return
	}

	c.Status(http.StatusOK)

	go h.process(upd)
}

func (h *WebhookHandler) process(upd telegram.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), h.eventTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			h.collector.RecordEventFailure()
			h.logger.Error("panic while processing update", slog.Any("panic", r), slog.Int64("update_id", upd.UpdateID))
		}
	}()

	if err := h.facade.ProcessUpdate(ctx, upd); err != nil {
		h.collector.RecordEventFailure()
		h.logger.Error("process update failed",
			slog.Int64("update_id", upd.UpdateID),
			slog.String("error", err.Error()))
	}
}
