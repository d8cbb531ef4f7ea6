package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/config"
)

// Module exposes the gateway client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.TelegramAPIBase, p.Config.TelegramToken, p.Config.SendRate, p.Config.SendBurst, p.Logger)
}
