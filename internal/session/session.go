// Package session holds the in-memory editing model for a diet plan: the
// recipe library, the four-week planner grid and the weekly themes. A
// session is loaded from a persisted plan (or starts blank), mutated by
// imports and edits, and compared against a fingerprint snapshot to decide
// whether there is anything to save.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nutriplan/nutriplan-server/internal/model"
)

// ErrInvalidInput marks import payloads that could not be parsed or are
// missing required parts. The session state is never modified when an
// import fails.
var ErrInvalidInput = errors.New("invalid input")

// Session is one user's working copy of a plan.
type Session struct {
	PlanName string
	Library  []model.Recipe
	Planner  model.PlannerGrid
	Themes   map[int]string

	savedFingerprint string
}

// New returns an empty session with initialized containers.
func New() *Session {
	s := &Session{
		Library: []model.Recipe{},
		Planner: model.PlannerGrid{},
		Themes:  map[int]string{},
	}
	s.MarkSaved()
	return s
}

// Load replaces the session content with a persisted plan and snapshots the
// fingerprint, so HasUnsavedChanges reports false until the next edit.
func Load(plan *model.Plan) *Session {
	s := New()
	if plan == nil {
		return s
	}
	s.PlanName = plan.Name
	if plan.Document.Library != nil {
		s.Library = append([]model.Recipe(nil), plan.Document.Library...)
	}
	for week, slots := range plan.Document.Planner {
		cp := make(map[string]string, len(slots))
		for slot, id := range slots {
			cp[slot] = id
		}
		s.Planner[week] = cp
	}
	for week, theme := range plan.Document.Themes {
		s.Themes[week] = theme
	}
	s.MarkSaved()
	return s
}

// Document returns the session content as a persistable plan document.
func (s *Session) Document() *model.PlanDocument {
	return &model.PlanDocument{
		Library: s.Library,
		Planner: s.Planner,
		Themes:  s.Themes,
	}
}

// fingerprint is the canonical serialization used for dirty tracking. Struct
// field order is fixed and encoding/json sorts map keys, so equal content
// always yields equal bytes.
func (s *Session) fingerprint() string {
	b, err := json.Marshal(s.Document())
	if err != nil {
		// The document is plain data; marshal cannot fail for it.
		panic(err)
	}
	return string(b)
}

// MarkSaved snapshots the current content as the last persisted state.
func (s *Session) MarkSaved() {
	s.savedFingerprint = s.fingerprint()
}

// HasUnsavedChanges reports whether the content differs from the last
// MarkSaved snapshot.
func (s *Session) HasUnsavedChanges() bool {
	return s.fingerprint() != s.savedFingerprint
}

// FindRecipe returns the library entry with the given id, or nil.
func (s *Session) FindRecipe(id string) *model.Recipe {
	for i := range s.Library {
		if s.Library[i].RecipeID == id {
			return &s.Library[i]
		}
	}
	return nil
}

// ImportPlan merges a full plan payload, typically pasted from a chat
// assistant with prose around the JSON. The library merge keeps existing
// recipes when ids collide; planner and themes are replaced wholesale so the
// imported schedule wins.
func (s *Session) ImportPlan(text string) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}

	var doc struct {
		Library []model.Recipe            `json:"library"`
		Planner map[int]map[string]string `json:"planner"`
		Themes  map[int]string            `json:"themes"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return errors.Wrap(ErrInvalidInput, "plan payload is not valid JSON")
	}
	if doc.Library == nil || doc.Planner == nil {
		return errors.Wrap(ErrInvalidInput, "plan payload needs both library and planner")
	}

	merged := append([]model.Recipe(nil), s.Library...)
	for _, rec := range doc.Library {
		if rec.RecipeID == "" {
			return errors.Wrap(ErrInvalidInput, "imported recipe has no id")
		}
		if containsRecipe(merged, rec.RecipeID) {
			continue
		}
		merged = append(merged, rec)
	}

	planner := model.PlannerGrid{}
	for week, slots := range doc.Planner {
		if week < 1 || week > model.MaxWeek {
			return errors.Wrapf(ErrInvalidInput, "planner week %d out of range", week)
		}
		planner[week] = slots
	}
	themes := map[int]string{}
	for week, theme := range doc.Themes {
		themes[week] = theme
	}

	s.Library = merged
	s.Planner = planner
	s.Themes = themes
	return nil
}

// ImportRecipes merges a recipe batch: either a bare JSON array or an object
// with a "library" key. Imported recipes overwrite existing ones with the
// same id.
func (s *Session) ImportRecipes(text string) (int, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return 0, err
	}

	var batch []model.Recipe
	if err := json.Unmarshal([]byte(raw), &batch); err != nil {
		var wrapper struct {
			Library []model.Recipe `json:"library"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapper); err != nil || wrapper.Library == nil {
			return 0, errors.Wrap(ErrInvalidInput, "recipe payload is neither an array nor a library object")
		}
		batch = wrapper.Library
	}
	if len(batch) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "recipe payload is empty")
	}

	for _, rec := range batch {
		if rec.RecipeID == "" || rec.Name == "" {
			return 0, errors.Wrap(ErrInvalidInput, "imported recipe needs id and name")
		}
	}
	for _, rec := range batch {
		if existing := s.FindRecipe(rec.RecipeID); existing != nil {
			*existing = rec
			continue
		}
		s.Library = append(s.Library, rec)
	}
	return len(batch), nil
}

// ExportPlan serializes the full session content for download.
func (s *Session) ExportPlan() ([]byte, error) {
	b, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export plan: %w", err)
	}
	return b, nil
}

// ExportLibrary serializes only the recipe library, the shape ImportRecipes
// accepts back.
func (s *Session) ExportLibrary() ([]byte, error) {
	b, err := json.MarshalIndent(map[string]interface{}{"library": s.Library}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export library: %w", err)
	}
	return b, nil
}

func containsRecipe(list []model.Recipe, id string) bool {
	for i := range list {
		if list[i].RecipeID == id {
			return true
		}
	}
	return false
}
