package di

import (
	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/app"
	"github.com/chanddari/subbot/internal/bot"
	"github.com/chanddari/subbot/internal/config"
	"github.com/chanddari/subbot/internal/content"
	"github.com/chanddari/subbot/internal/logger"
	"github.com/chanddari/subbot/internal/metrics"
	"github.com/chanddari/subbot/internal/server/http/router"
	"github.com/chanddari/subbot/internal/session"
	"github.com/chanddari/subbot/internal/storage/postgres"
	"github.com/chanddari/subbot/internal/usecase"
	"github.com/chanddari/subbot/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		postgres.Module,
		content.Module,
		session.Module,
		telegram.Module,
		usecase.Module,
		bot.Module,
		worker.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
