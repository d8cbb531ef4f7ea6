package repository

import (
	"context"

	"github.com/chanddari/subbot/internal/domain/model"
)

// PlanRepository exposes the read-only plan catalog.
type PlanRepository interface {
	// ListActive returns active plans for the pair, ordered by duration.
	ListActive(ctx context.Context, category model.PlanCategory, tier model.PlanTier) ([]model.Plan, error)
	GetByID(ctx context.Context, category model.PlanCategory, id string) (*model.Plan, error)
}
