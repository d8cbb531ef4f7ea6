package usecase

import (
	"context"

	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/domain/repository"
)

// CatalogUseCase exposes plan catalog lookups.
type CatalogUseCase struct {
	plans repository.PlanRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(plans repository.PlanRepository) *CatalogUseCase {
	return &CatalogUseCase{plans: plans}
}

// List returns active plans for the pair, shortest duration first.
func (u *CatalogUseCase) List(ctx context.Context, category model.PlanCategory, tier model.PlanTier) ([]model.Plan, error) {
	return u.plans.ListActive(ctx, category, tier)
}

// Get resolves one plan by identifier within a category.
func (u *CatalogUseCase) Get(ctx context.Context, category model.PlanCategory, id string) (*model.Plan, error) {
	return u.plans.GetByID(ctx, category, id)
}
