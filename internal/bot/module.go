package bot

import (
	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/content"
	"github.com/chanddari/subbot/internal/usecase"
)

// Module wires the conversation engine and its collaborator interfaces.
var Module = fx.Provide(
	func(u *usecase.OrderUseCase) Orders { return u },
	func(u *usecase.CatalogUseCase) Catalog { return u },
	func(p *content.Provider) Content { return p },
	NewEngine,
)
