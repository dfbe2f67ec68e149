package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// RecipeService exposes the deduplicated per-user recipe catalog.
type RecipeService struct {
	store   store.Store
	timeout time.Duration
	log     zerolog.Logger
}

func NewRecipeService(s store.Store, timeout time.Duration, log zerolog.Logger) *RecipeService {
	return &RecipeService{store: s, timeout: timeout, log: log}
}

// UpsertRecipe writes a recipe by (owner, id), last writer wins. Repeated
// calls with identical input converge to the same stored state.
func (s *RecipeService) UpsertRecipe(ctx context.Context, ownerID string, r *model.Recipe) (*model.Recipe, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: recipe is required", model.ErrValidation)
	}
	if err := validateRecipe(r); err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Recipes().Upsert(ctx, ownerID, r)
}

// GetRecipe returns a recipe from the catalog.
func (s *RecipeService) GetRecipe(ctx context.Context, ownerID, recipeID string) (*model.Recipe, error) {
	if ownerID == "" || recipeID == "" {
		return nil, fmt.Errorf("%w: owner id and recipe id are required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Recipes().Get(ctx, ownerID, recipeID)
}

// ListRecipes returns the owner's full catalog.
func (s *RecipeService) ListRecipes(ctx context.Context, ownerID string) ([]*model.Recipe, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Recipes().List(ctx, ownerID)
}

func (s *RecipeService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
