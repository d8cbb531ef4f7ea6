package content

import (
	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/config"
	"github.com/chanddari/subbot/internal/domain/repository"
)

// Module wires the caching content provider.
var Module = fx.Provide(func(repo repository.ContentRepository, cfg *config.Config) *Provider {
	return NewProvider(repo, cfg.ContentCacheTTL)
})
