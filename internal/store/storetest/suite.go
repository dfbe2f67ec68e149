package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	ownerID := "u-" + uuid.New().String()
	email := ownerID + "@example.test"

	// Users
	u := &model.User{UserID: ownerID, Name: "Test Author", Email: email}
	if _, err := s.Users().Create(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, ownerID); err != nil || got == nil || got.Email != email {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, email); err != nil || got == nil || got.UserID != ownerID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Create(ctx, &model.User{UserID: "u2-" + uuid.New().String(), Name: "Dup", Email: email}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateUser duplicate email: want ErrConflict, got %v", err)
	}

	// No plans yet: get-active is the explicit not-found outcome.
	if _, err := s.Plans().GetActive(ctx, ownerID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetActive with no plans: want ErrNotFound, got %v", err)
	}

	doc := sampleDocument()
	plan, err := s.Plans().Save(ctx, ownerID, "Cutting Phase", doc, true)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if plan.PlanID == "" || !plan.IsActive {
		t.Fatalf("SavePlan: unexpected result %+v", plan)
	}

	// Round-trip: the stored document is deep-equal to what was saved.
	got, err := s.Plans().Get(ctx, ownerID, plan.PlanID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	assertDocEqual(t, doc, &got.Document)

	// Fan-out: the library recipes landed in the catalog.
	if rec, err := s.Recipes().Get(ctx, ownerID, "rec_01"); err != nil || rec.Name != "Frango Grelhado" {
		t.Fatalf("Recipe fan-out: got=%v err=%v", rec, err)
	}

	// Upsert idempotence: a second identical write converges to the same state.
	first, err := s.Recipes().Get(ctx, ownerID, "rec_01")
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if _, err := s.Recipes().Upsert(ctx, ownerID, &doc.Library[0]); err != nil {
		t.Fatalf("Upsert repeat: %v", err)
	}
	again, err := s.Recipes().Get(ctx, ownerID, "rec_01")
	if err != nil {
		t.Fatalf("GetRecipe after repeat: %v", err)
	}
	first.UpdatedAt, again.UpdatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("Upsert not idempotent:\n first=%+v\nagain=%+v", first, again)
	}

	// Saving under the same name updates in place, never duplicates.
	doc2 := sampleDocument()
	doc2.Planner[1][model.SlotDinner] = "rec_02"
	if _, err := s.Plans().Save(ctx, ownerID, "Cutting Phase", doc2, true); err != nil {
		t.Fatalf("SavePlan update: %v", err)
	}
	lst, err := s.Plans().List(ctx, ownerID)
	if err != nil || len(lst) != 1 {
		t.Fatalf("ListPlans after update: n=%d err=%v", len(lst), err)
	}
	if !lst[0].IsActive || lst[0].Name != "Cutting Phase" {
		t.Fatalf("ListPlans summary: %+v", lst[0])
	}

	// Single-active invariant across saves of distinct plans.
	time.Sleep(5 * time.Millisecond) // keep updated_at ordering deterministic
	if _, err := s.Plans().Save(ctx, ownerID, "Bulking Phase", sampleDocument(), true); err != nil {
		t.Fatalf("SavePlan second: %v", err)
	}
	lst, err = s.Plans().List(ctx, ownerID)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListPlans: n=%d err=%v", len(lst), err)
	}
	if lst[0].Name != "Bulking Phase" {
		t.Fatalf("ListPlans order: newest-modified first, got %q", lst[0].Name)
	}
	activeCount := 0
	for _, p := range lst {
		if p.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("single-active invariant violated: %d active plans", activeCount)
	}
	if act, err := s.Plans().GetActive(ctx, ownerID); err != nil || act.Name != "Bulking Phase" {
		t.Fatalf("GetActive: got=%v err=%v", act, err)
	}

	// Saving with makeActive=false leaves the current active plan alone.
	if _, err := s.Plans().Save(ctx, ownerID, "Draft", sampleDocument(), false); err != nil {
		t.Fatalf("SavePlan inactive: %v", err)
	}
	if act, err := s.Plans().GetActive(ctx, ownerID); err != nil || act.Name != "Bulking Phase" {
		t.Fatalf("GetActive after inactive save: got=%v err=%v", act, err)
	}

	// Atomicity: a fan-out failure aborts the whole save. The second recipe
	// violates the catalog's non-empty-name constraint.
	badDoc := &model.PlanDocument{
		Library: []model.Recipe{
			{RecipeID: "rec_ok", Name: "Sopa", Category: "jantar"},
			{RecipeID: "rec_bad", Name: "", Category: "jantar"},
		},
		Planner: model.PlannerGrid{},
		Themes:  map[int]string{},
	}
	if _, err := s.Plans().Save(ctx, ownerID, "Broken Plan", badDoc, true); err == nil {
		t.Fatalf("SavePlan with invalid recipe: expected error")
	}
	if _, err := s.Recipes().Get(ctx, ownerID, "rec_ok"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("atomicity: rec_ok leaked out of rolled-back save: %v", err)
	}
	foundBroken := false
	lst, _ = s.Plans().List(ctx, ownerID)
	for _, p := range lst {
		if p.Name == "Broken Plan" {
			foundBroken = true
		}
	}
	if foundBroken {
		t.Fatalf("atomicity: plan row visible after rollback")
	}
	// The failed makeActive save must not have deactivated the current plan.
	if act, err := s.Plans().GetActive(ctx, ownerID); err != nil || act.Name != "Bulking Phase" {
		t.Fatalf("atomicity: active flag lost after rollback: got=%v err=%v", act, err)
	}

	// Delete removes the plan row only; recipes outlive the plan.
	target, err := s.Plans().Get(ctx, ownerID, plan.PlanID)
	if err != nil {
		t.Fatalf("GetPlan before delete: %v", err)
	}
	if err := s.Plans().Delete(ctx, ownerID, target.PlanID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := s.Plans().Get(ctx, ownerID, target.PlanID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetPlan after delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.Recipes().Get(ctx, ownerID, "rec_01"); err != nil {
		t.Fatalf("recipes must survive plan deletion: %v", err)
	}
	if err := s.Plans().Delete(ctx, ownerID, target.PlanID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeletePlan repeat: want ErrNotFound, got %v", err)
	}

	// Ownership: another user's ids resolve to not-found, not leakage.
	other := "u-" + uuid.New().String()
	if _, err := s.Plans().Get(ctx, other, plan.PlanID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-owner GetPlan: want ErrNotFound, got %v", err)
	}

	// Catalog listing.
	recs, err := s.Recipes().List(ctx, ownerID)
	if err != nil || len(recs) < 2 {
		t.Fatalf("ListRecipes: n=%d err=%v", len(recs), err)
	}
}

func sampleDocument() *model.PlanDocument {
	return &model.PlanDocument{
		Library: []model.Recipe{
			{
				RecipeID: "rec_01",
				Name:     "Frango Grelhado",
				Category: model.SlotLunch,
				Icon:     "fa-drumstick-bite",
				Ingredients: []model.Ingredient{
					{Name: "Peito de frango", DailyQty: 200, Unit: model.UnitGram, Aisle: "carnes"},
					{Name: "Azeite", DailyQty: 10, Unit: model.UnitMilliliter, Aisle: "mercearia"},
				},
				Steps: []string{"Tempere o frango", "Grelhe por 8 minutos"},
			},
			{
				RecipeID: "rec_02",
				Name:     "Omelete",
				Category: model.SlotBreakfast,
				Icon:     "fa-egg",
				Ingredients: []model.Ingredient{
					{Name: "Ovos", DailyQty: 150, Unit: model.UnitGram, Aisle: "mercearia"},
				},
				Steps: []string{"Bata os ovos", "Frite em fogo baixo"},
			},
		},
		Planner: model.PlannerGrid{
			1: {model.SlotBreakfast: "rec_02", model.SlotLunch: "rec_01"},
			2: {model.SlotLunch: "rec_01"},
		},
		Themes: map[int]string{1: "High Protein", 2: "Low Carb"},
	}
}

func assertDocEqual(t *testing.T, want, got *model.PlanDocument) {
	t.Helper()
	w, g := *want, *got
	for i := range w.Library {
		w.Library[i].OwnerID, w.Library[i].UpdatedAt = "", time.Time{}
	}
	for i := range g.Library {
		g.Library[i].OwnerID, g.Library[i].UpdatedAt = "", time.Time{}
	}
	if !reflect.DeepEqual(w, g) {
		t.Fatalf("document round-trip mismatch:\n want=%+v\n  got=%+v", w, g)
	}
}
