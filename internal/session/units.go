package session

import (
	"strings"

	"github.com/nutriplan/nutriplan-server/internal/model"
)

// DisplayQuantity converts a stored quantity to what the editor shows. Gram
// values of a kilogram or more read better as kilograms; milliliters are
// never auto-converted because liter recipes are rare and "ml" stays exact.
func DisplayQuantity(qty float64, unit string) (float64, string) {
	if unit == model.UnitGram && qty >= 1000 {
		return qty / 1000, "kg"
	}
	return qty, unit
}

// StoreQuantity converts an edited quantity back to a persisted unit.
// Kilograms become grams; "g" and "ml" pass through unchanged. Unknown units
// pass through lowered and are caught by validation at save time.
func StoreQuantity(qty float64, unit string) (float64, string) {
	unit = strings.ToLower(unit)
	if unit == "kg" {
		return qty * 1000, model.UnitGram
	}
	return qty, unit
}
