package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/config"
	"github.com/chanddari/subbot/internal/content"
	"github.com/chanddari/subbot/internal/metrics"
	"github.com/chanddari/subbot/internal/usecase"
)

// Module wires the expiry sweeper.
var Module = fx.Provide(
	func(u *usecase.OrderUseCase) SubscriptionFacade { return u },
	func(p *content.Provider) SweepSettings { return p },
	func(facade SubscriptionFacade, settings SweepSettings, gateway telegram.Client, collector metrics.Collector, cfg *config.Config, logger *slog.Logger) *Sweeper {
		return NewSweeper(facade, settings, gateway, collector, cfg.SweepInterval, logger)
	},
)
