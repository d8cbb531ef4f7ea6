package session

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/config"
)

// Module wires the TTL session store and its janitor lifecycle.
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) *MemoryStore { return NewMemoryStore(cfg.SessionTTL) },
		func(s *MemoryStore) Store { return s },
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, store *MemoryStore, cfg *config.Config) {
	janitorInterval := cfg.SessionTTL / 4
	if janitorInterval < time.Minute {
		janitorInterval = time.Minute
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			store.StartJanitor(janitorInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			store.Stop()
			return nil
		},
	})
}
