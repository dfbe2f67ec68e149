package store

import (
	"context"

	"github.com/nutriplan/nutriplan-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres, sqlite).
type Store interface {
	Users() Users
	Plans() Plans
	Recipes() Recipes
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Plans persists plan snapshots. Save is the transactional save-plan unit of
// work: deactivate-others (when makeActive), upsert the plan row by
// (owner, name), then fan out an upsert for every recipe embedded in the
// document library. Either all of it commits or none of it is visible.
type Plans interface {
	Save(ctx context.Context, ownerID, name string, doc *model.PlanDocument, makeActive bool) (*model.Plan, error)
	List(ctx context.Context, ownerID string) ([]*model.PlanSummary, error)
	Get(ctx context.Context, ownerID, planID string) (*model.Plan, error)
	// GetActive returns the single active plan for the owner, or
	// model.ErrNotFound when no plan is active. Recipes are left untouched
	// by Delete: the catalog outlives any plan.
	GetActive(ctx context.Context, ownerID string) (*model.Plan, error)
	Delete(ctx context.Context, ownerID, planID string) error
}

// Recipes keeps the deduplicated per-user catalog. Upsert is last-writer-wins
// by (owner, recipe id) and idempotent; there is no delete path, recipes are
// immortal once created.
type Recipes interface {
	Upsert(ctx context.Context, ownerID string, r *model.Recipe) (*model.Recipe, error)
	Get(ctx context.Context, ownerID, recipeID string) (*model.Recipe, error)
	List(ctx context.Context, ownerID string) ([]*model.Recipe, error)
}
