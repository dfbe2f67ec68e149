package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// PlanService orchestrates plan persistence: it validates incoming payloads
// before any store interaction and runs every store call under a bounded
// timeout so no request blocks indefinitely.
type PlanService struct {
	store   store.Store
	timeout time.Duration
	log     zerolog.Logger
}

func NewPlanService(s store.Store, timeout time.Duration, log zerolog.Logger) *PlanService {
	return &PlanService{store: s, timeout: timeout, log: log}
}

// SavePlan validates and persists a plan snapshot. The document is rejected
// before the transaction opens when it is malformed; the store then performs
// the atomic deactivate/upsert/fan-out unit of work.
func (s *PlanService) SavePlan(ctx context.Context, ownerID, name string, doc *model.PlanDocument, makeActive bool) (*model.Plan, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", model.ErrValidation)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	plan, err := s.store.Plans().Save(ctx, ownerID, name, doc, makeActive)
	if err != nil {
		s.log.Error().Stack().Err(err).
			Str("ownerId", ownerID).
			Str("plan", name).
			Msg("save plan failed, transaction rolled back")
		return nil, err
	}
	s.log.Info().
		Str("ownerId", ownerID).
		Str("planId", plan.PlanID).
		Bool("active", plan.IsActive).
		Int("recipes", len(doc.Library)).
		Msg("plan saved")
	return plan, nil
}

// ListPlans returns plan summaries, newest-modified first.
func (s *PlanService) ListPlans(ctx context.Context, ownerID string) ([]*model.PlanSummary, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Plans().List(ctx, ownerID)
}

// GetPlan returns the full plan document by id.
func (s *PlanService) GetPlan(ctx context.Context, ownerID, planID string) (*model.Plan, error) {
	if ownerID == "" || planID == "" {
		return nil, fmt.Errorf("%w: owner id and plan id are required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Plans().Get(ctx, ownerID, planID)
}

// GetActivePlan returns the owner's active plan, or (nil, nil) when no plan
// is active. Absence is a normal state for the mobile consumer, distinct
// from a store fault.
func (s *PlanService) GetActivePlan(ctx context.Context, ownerID string) (*model.Plan, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	plan, err := s.store.Plans().GetActive(ctx, ownerID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	return plan, err
}

// DeletePlan removes the plan row. Recipes are never cascaded.
func (s *PlanService) DeletePlan(ctx context.Context, ownerID, planID string) error {
	if ownerID == "" || planID == "" {
		return fmt.Errorf("%w: owner id and plan id are required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.Plans().Delete(ctx, ownerID, planID); err != nil {
		return err
	}
	s.log.Info().Str("ownerId", ownerID).Str("planId", planID).Msg("plan deleted")
	return nil
}

func (s *PlanService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// validateDocument enforces the payload contract ahead of the transaction:
// a present (possibly empty) library, week/slot ranges, and the g/ml unit
// contract downstream consumers rely on.
func validateDocument(doc *model.PlanDocument) error {
	if doc == nil || doc.Library == nil {
		return fmt.Errorf("%w: data.library is required", model.ErrValidation)
	}
	seen := make(map[string]bool, len(doc.Library))
	for i := range doc.Library {
		r := &doc.Library[i]
		if err := validateRecipe(r); err != nil {
			return err
		}
		if seen[r.RecipeID] {
			return fmt.Errorf("%w: duplicate recipe id %q in library", model.ErrValidation, r.RecipeID)
		}
		seen[r.RecipeID] = true
	}
	for week, slots := range doc.Planner {
		if week < 1 || week > model.MaxWeek {
			return fmt.Errorf("%w: planner week %d out of range", model.ErrValidation, week)
		}
		for slot := range slots {
			if !validSlot(slot) {
				return fmt.Errorf("%w: unknown meal slot %q", model.ErrValidation, slot)
			}
		}
	}
	for week := range doc.Themes {
		if week < 1 || week > model.MaxWeek {
			return fmt.Errorf("%w: theme week %d out of range", model.ErrValidation, week)
		}
	}
	return nil
}

func validateRecipe(r *model.Recipe) error {
	if r.RecipeID == "" {
		return fmt.Errorf("%w: recipe id is required", model.ErrValidation)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: recipe %q has no name", model.ErrValidation, r.RecipeID)
	}
	for _, ing := range r.Ingredients {
		// Grams and milliliters are the only persisted units; kilogram
		// display values must be converted back before saving.
		if ing.Unit != model.UnitGram && ing.Unit != model.UnitMilliliter {
			return fmt.Errorf("%w: recipe %q ingredient %q uses unit %q, only %q/%q are stored",
				model.ErrValidation, r.RecipeID, ing.Name, ing.Unit, model.UnitGram, model.UnitMilliliter)
		}
		if ing.DailyQty < 0 {
			return fmt.Errorf("%w: recipe %q ingredient %q has negative quantity", model.ErrValidation, r.RecipeID, ing.Name)
		}
	}
	return nil
}

func validSlot(slot string) bool {
	for _, s := range model.MealSlots {
		if s == slot {
			return true
		}
	}
	return false
}
