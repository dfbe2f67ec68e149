package model

import "time"

// Meal slots recognized by the planner grid. The slot names are wire
// constants shared with the mobile client and the import format.
const (
	SlotBreakfast = "cafe"
	SlotLunch     = "almoco"
	SlotSnack     = "lanche"
	SlotDinner    = "jantar"
)

// MealSlots lists every planner slot in display order.
var MealSlots = []string{SlotBreakfast, SlotLunch, SlotSnack, SlotDinner}

// MaxWeek is the number of weeks a plan covers. Week numbers run 1..MaxWeek.
const MaxWeek = 4

// Units that may be persisted on an ingredient. Kilograms are a display
// convenience only and must be converted to grams before storage.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
)

// User represents an account in the system. Credential checks and token
// issuance live in the auth collaborator; the store only keeps the hash.
type User struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"creationTime"`
}

// Ingredient is one line of a recipe. DailyQty is the per-day quantity in the
// persisted unit ("g" or "ml"); Aisle is the shopping-list grouping tag.
type Ingredient struct {
	Name     string  `json:"n"`
	DailyQty float64 `json:"q_daily"`
	Unit     string  `json:"u"`
	Aisle    string  `json:"cat"`
}

// Recipe is a reusable dish owned per-user and identified by an
// author-assigned slug (e.g. "rec_01"). Re-saving under the same id
// overwrites the stored copy; recipes outlive any single plan.
type Recipe struct {
	RecipeID    string       `json:"id"`
	OwnerID     string       `json:"-"`
	Name        string       `json:"name"`
	Category    string       `json:"cat"`
	Icon        string       `json:"icon,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	UpdatedAt   time.Time    `json:"-"`
}

// PlannerGrid maps week number (1-4) to meal slot to recipe id. Missing
// entries mean the slot is unassigned.
type PlannerGrid map[int]map[string]string

// PlanDocument is the complete editable snapshot of a plan: the embedded
// recipe library, the weekly grid, and the per-week theme labels.
type PlanDocument struct {
	Library []Recipe       `json:"library"`
	Planner PlannerGrid    `json:"planner"`
	Themes  map[int]string `json:"themes"`
}

// Plan is a named, owned snapshot of a PlanDocument. At most one plan per
// owner carries IsActive=true; the plan name is the natural upsert key.
type Plan struct {
	PlanID    string       `json:"id"`
	OwnerID   string       `json:"-"`
	Name      string       `json:"plan_name"`
	Document  PlanDocument `json:"data"`
	IsActive  bool         `json:"is_active"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// PlanSummary is the lightweight list projection of a plan.
type PlanSummary struct {
	PlanID    string    `json:"id"`
	Name      string    `json:"plan_name"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}
