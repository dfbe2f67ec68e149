package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// fakeStore records whether any store call was made so tests can assert the
// fail-fast contract: validation errors must not touch the store.
type fakeStore struct {
	plans   fakePlans
	touched *bool
}

func newFakeStore() *fakeStore {
	touched := false
	return &fakeStore{plans: fakePlans{touched: &touched}, touched: &touched}
}

func (f *fakeStore) Users() store.Users     { panic("not used") }
func (f *fakeStore) Plans() store.Plans     { return &f.plans }
func (f *fakeStore) Recipes() store.Recipes { panic("not used") }

type fakePlans struct {
	touched   *bool
	active    *model.Plan
	activeErr error
	saveErr   error
}

func (f *fakePlans) Save(ctx context.Context, ownerID, name string, doc *model.PlanDocument, makeActive bool) (*model.Plan, error) {
	*f.touched = true
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &model.Plan{PlanID: "p1", OwnerID: ownerID, Name: name, Document: *doc, IsActive: makeActive}, nil
}
func (f *fakePlans) List(ctx context.Context, ownerID string) ([]*model.PlanSummary, error) {
	*f.touched = true
	return nil, nil
}
func (f *fakePlans) Get(ctx context.Context, ownerID, planID string) (*model.Plan, error) {
	*f.touched = true
	return nil, model.ErrNotFound
}
func (f *fakePlans) GetActive(ctx context.Context, ownerID string) (*model.Plan, error) {
	*f.touched = true
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	if f.active == nil {
		return nil, model.ErrNotFound
	}
	return f.active, nil
}
func (f *fakePlans) Delete(ctx context.Context, ownerID, planID string) error {
	*f.touched = true
	return nil
}

func newPlanService(fs *fakeStore) *PlanService {
	return NewPlanService(fs, 2*time.Second, zerolog.Nop())
}

func validDoc() *model.PlanDocument {
	return &model.PlanDocument{
		Library: []model.Recipe{{
			RecipeID:    "rec_01",
			Name:        "Frango",
			Category:    model.SlotLunch,
			Ingredients: []model.Ingredient{{Name: "Frango", DailyQty: 200, Unit: model.UnitGram, Aisle: "carnes"}},
		}},
		Planner: model.PlannerGrid{1: {model.SlotLunch: "rec_01"}},
		Themes:  map[int]string{1: "High Protein"},
	}
}

func TestSavePlan_RejectsMissingLibraryBeforeStore(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	_, err := svc.SavePlan(context.Background(), "owner", "Plano", &model.PlanDocument{Planner: model.PlannerGrid{}}, true)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, *fs.touched, "store must not be touched on validation failure")

	_, err = svc.SavePlan(context.Background(), "owner", "Plano", nil, true)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, *fs.touched)
}

func TestSavePlan_EmptyLibraryIsValid(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	doc := &model.PlanDocument{Library: []model.Recipe{}, Planner: model.PlannerGrid{}, Themes: map[int]string{}}
	plan, err := svc.SavePlan(context.Background(), "owner", "Plano Vazio", doc, false)
	require.NoError(t, err)
	assert.Equal(t, "Plano Vazio", plan.Name)
}

func TestSavePlan_RejectsBadWeekAndSlot(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	doc := validDoc()
	doc.Planner[7] = map[string]string{model.SlotLunch: "rec_01"}
	_, err := svc.SavePlan(context.Background(), "owner", "Plano", doc, false)
	require.ErrorIs(t, err, model.ErrValidation)

	doc = validDoc()
	doc.Planner[1]["brunch"] = "rec_01"
	_, err = svc.SavePlan(context.Background(), "owner", "Plano", doc, false)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, *fs.touched)
}

func TestSavePlan_RejectsNonPersistedUnits(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	doc := validDoc()
	doc.Library[0].Ingredients[0].Unit = "kg"
	_, err := svc.SavePlan(context.Background(), "owner", "Plano", doc, false)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, *fs.touched)
}

func TestSavePlan_RejectsDuplicateLibraryIDs(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	doc := validDoc()
	doc.Library = append(doc.Library, doc.Library[0])
	_, err := svc.SavePlan(context.Background(), "owner", "Plano", doc, false)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSavePlan_PropagatesStoreFailure(t *testing.T) {
	fs := newFakeStore()
	fs.plans.saveErr = errors.New("connection reset")
	svc := newPlanService(fs)

	_, err := svc.SavePlan(context.Background(), "owner", "Plano", validDoc(), true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrValidation)
}

func TestGetActivePlan_NoneIsNotAnError(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	plan, err := svc.GetActivePlan(context.Background(), "owner")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestGetActivePlan_StoreFaultIsAnError(t *testing.T) {
	fs := newFakeStore()
	fs.plans.activeErr = errors.New("timeout")
	svc := newPlanService(fs)

	_, err := svc.GetActivePlan(context.Background(), "owner")
	require.Error(t, err)
}

func TestGetPlan_RequiresIDs(t *testing.T) {
	fs := newFakeStore()
	svc := newPlanService(fs)

	_, err := svc.GetPlan(context.Background(), "", "p1")
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.GetPlan(context.Background(), "owner", "")
	require.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, *fs.touched)
}
