package handlers

import (
	"context"

	"github.com/chanddari/subbot/internal/adapter/telegram"
)

// UpdateFacade processes inbound bot updates.
type UpdateFacade interface {
	ProcessUpdate(ctx context.Context, upd telegram.Update) error
}

// SweepFacade triggers the expiry sweep on demand.
type SweepFacade interface {
	RunSweep(ctx context.Context) error
}

// HealthFacade reports storage reachability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// BotFacade aggregates the full set of operations used across handlers.
type BotFacade interface {
	UpdateFacade
	SweepFacade
	HealthFacade
}
