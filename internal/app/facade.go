package app

import (
	"context"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/bot"
	"github.com/chanddari/subbot/internal/storage/postgres"
	"github.com/chanddari/subbot/internal/worker"
)

// BotFacade aggregates the runtime operations the HTTP layer drives.
type BotFacade struct {
	engine  *bot.Engine
	sweeper *worker.Sweeper
	storage *postgres.Storage
}

// NewBotFacade constructs the facade.
func NewBotFacade(engine *bot.Engine, sweeper *worker.Sweeper, storage *postgres.Storage) *BotFacade {
	return &BotFacade{engine: engine, sweeper: sweeper, storage: storage}
}

// ProcessUpdate routes one inbound update through the conversation engine.
func (f *BotFacade) ProcessUpdate(ctx context.Context, upd telegram.Update) error {
	return f.engine.HandleUpdate(ctx, upd)
}

// RunSweep executes one expiry sweep pass.
func (f *BotFacade) RunSweep(ctx context.Context) error {
	return f.sweeper.RunOnce(ctx)
}

// HealthCheck probes the storage backend.
func (f *BotFacade) HealthCheck(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}
