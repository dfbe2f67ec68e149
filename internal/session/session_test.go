package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriplan/nutriplan-server/internal/model"
)

func loadedSession() *Session {
	return Load(&model.Plan{
		Name: "Cutting Phase",
		Document: model.PlanDocument{
			Library: []model.Recipe{{
				RecipeID: "rec_01",
				Name:     "Frango Grelhado",
				Category: model.SlotLunch,
				Ingredients: []model.Ingredient{
					{Name: "Frango", DailyQty: 200, Unit: model.UnitGram, Aisle: "carnes"},
				},
				Steps: []string{"Grelhar."},
			}},
			Planner: model.PlannerGrid{1: {model.SlotLunch: "rec_01"}},
			Themes:  map[int]string{1: "High Protein"},
		},
	})
}

func TestLoadStartsClean(t *testing.T) {
	s := loadedSession()
	assert.False(t, s.HasUnsavedChanges())
	assert.Equal(t, "Cutting Phase", s.PlanName)
}

func TestEditThenMarkSaved(t *testing.T) {
	s := loadedSession()

	s.Planner[2] = map[string]string{model.SlotDinner: "rec_01"}
	assert.True(t, s.HasUnsavedChanges())

	s.MarkSaved()
	assert.False(t, s.HasUnsavedChanges())
}

func TestFingerprintIgnoresMapIterationOrder(t *testing.T) {
	s := New()
	s.Themes[2] = "Low Carb"
	s.Themes[1] = "High Protein"
	s.MarkSaved()

	// Touch the maps without changing content.
	s.Themes[1] = "High Protein"
	s.Planner[1] = map[string]string{}
	delete(s.Planner, 1)
	assert.False(t, s.HasUnsavedChanges())
}

func TestImportPlan_FromProseWrappedJSON(t *testing.T) {
	s := New()
	text := `Claro! Aqui está o seu plano mensal:

{"library":[{"id":"rec_01","name":"Frango Grelhado","cat":"almoco","ingredients":[{"n":"Frango","q_daily":200,"u":"g","cat":"carnes"}],"steps":["Grelhar."]}],"planner":{"1":{"almoco":"rec_01"}},"themes":{"1":"High Protein"}}

Bom apetite!`

	require.NoError(t, s.ImportPlan(text))
	require.Len(t, s.Library, 1)
	assert.Equal(t, "Frango Grelhado", s.Library[0].Name)
	assert.Equal(t, "rec_01", s.Planner[1][model.SlotLunch])
	assert.Equal(t, "High Protein", s.Themes[1])
	assert.True(t, s.HasUnsavedChanges())
}

func TestImportPlan_WrapsBareLibraryFragment(t *testing.T) {
	s := New()
	text := `"library":[{"id":"rec_01","name":"Omelete","cat":"cafe","ingredients":[],"steps":[]}],"planner":{"1":{"cafe":"rec_01"}},"themes":{}`

	require.NoError(t, s.ImportPlan(text))
	require.Len(t, s.Library, 1)
	assert.Equal(t, "Omelete", s.Library[0].Name)
}

func TestImportPlan_LibraryIsFirstWriteWins(t *testing.T) {
	s := loadedSession()

	text := `{"library":[{"id":"rec_01","name":"Frango Novo","cat":"almoco","ingredients":[],"steps":[]},{"id":"rec_02","name":"Omelete","cat":"cafe","ingredients":[],"steps":[]}],"planner":{"2":{"cafe":"rec_02"}},"themes":{"2":"Low Carb"}}`
	require.NoError(t, s.ImportPlan(text))

	// The existing rec_01 survives; only the new recipe is added.
	require.Len(t, s.Library, 2)
	assert.Equal(t, "Frango Grelhado", s.FindRecipe("rec_01").Name)
	assert.Equal(t, "Omelete", s.FindRecipe("rec_02").Name)

	// Planner and themes are replaced wholesale.
	assert.Empty(t, s.Planner[1])
	assert.Equal(t, "rec_02", s.Planner[2][model.SlotBreakfast])
	assert.Equal(t, map[int]string{2: "Low Carb"}, s.Themes)
}

func TestImportPlan_RejectsPayloadWithoutPlanner(t *testing.T) {
	s := loadedSession()
	before, err := s.ExportPlan()
	require.NoError(t, err)

	err = s.ImportPlan(`{"library":[{"id":"rec_09","name":"X","cat":"cafe","ingredients":[],"steps":[]}]}`)
	require.ErrorIs(t, err, ErrInvalidInput)

	// Failed imports leave the session untouched.
	after, exportErr := s.ExportPlan()
	require.NoError(t, exportErr)
	assert.JSONEq(t, string(before), string(after))
	assert.False(t, s.HasUnsavedChanges())
}

func TestImportPlan_RejectsGarbage(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.ImportPlan("isso não é um plano"), ErrInvalidInput)
	assert.ErrorIs(t, s.ImportPlan(""), ErrInvalidInput)
	assert.False(t, s.HasUnsavedChanges())
}

func TestImportRecipes_LastWriteWins(t *testing.T) {
	s := loadedSession()

	n, err := s.ImportRecipes(`[{"id":"rec_01","name":"Frango ao Curry","cat":"almoco","ingredients":[],"steps":[]},{"id":"rec_02","name":"Omelete","cat":"cafe","ingredients":[],"steps":[]}]`)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Opposite of the plan merge: the import overwrites rec_01.
	require.Len(t, s.Library, 2)
	assert.Equal(t, "Frango ao Curry", s.FindRecipe("rec_01").Name)
	assert.Equal(t, "Omelete", s.FindRecipe("rec_02").Name)

	// The planner is untouched by recipe imports.
	assert.Equal(t, "rec_01", s.Planner[1][model.SlotLunch])
}

func TestImportRecipes_AcceptsLibraryWrapper(t *testing.T) {
	s := New()
	n, err := s.ImportRecipes(`{"library":[{"id":"rec_05","name":"Vitamina","cat":"lanche","ingredients":[],"steps":[]}]}`)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, s.FindRecipe("rec_05"))
}

func TestImportRecipes_RejectsEmptyBatch(t *testing.T) {
	s := New()
	_, err := s.ImportRecipes(`[]`)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.ImportRecipes(`{"library":[]}`)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportLibraryRoundTrips(t *testing.T) {
	s := loadedSession()
	out, err := s.ExportLibrary()
	require.NoError(t, err)

	fresh := New()
	n, err := fresh.ImportRecipes(string(out))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Frango Grelhado", fresh.FindRecipe("rec_01").Name)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already clean object", `{"a":1}`, `{"a":1}`},
		{"already clean array", `[1,2]`, `[1,2]`},
		{"prose around object", "Segue o JSON:\n{\"a\":1}\nAbraços!", `{"a":1}`},
		{"prose around array", "Aqui: [1,2] pronto.", `[1,2]`},
		{"bare library fragment", `"library":[]`, `{"library":[]}`},
		{"bare library fragment with planner", `"library":[{"id":"rec_01"}],"planner":{"1":{}}`, `{"library":[{"id":"rec_01"}],"planner":{"1":{}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, json.Valid([]byte(got)))
		})
	}

	_, err := ExtractJSON("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDisplayQuantity(t *testing.T) {
	v, u := DisplayQuantity(1500, model.UnitGram)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, "kg", u)

	v, u = DisplayQuantity(999, model.UnitGram)
	assert.Equal(t, 999.0, v)
	assert.Equal(t, model.UnitGram, u)

	// Milliliters never convert, even above a liter.
	v, u = DisplayQuantity(1500, model.UnitMilliliter)
	assert.Equal(t, 1500.0, v)
	assert.Equal(t, model.UnitMilliliter, u)
}

func TestStoreQuantity(t *testing.T) {
	v, u := StoreQuantity(1.5, "kg")
	assert.Equal(t, 1500.0, v)
	assert.Equal(t, model.UnitGram, u)

	v, u = StoreQuantity(200, "G")
	assert.Equal(t, 200.0, v)
	assert.Equal(t, model.UnitGram, u)

	v, u = StoreQuantity(250, model.UnitMilliliter)
	assert.Equal(t, 250.0, v)
	assert.Equal(t, model.UnitMilliliter, u)
}
