package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nutriplan/nutriplan-server/internal/api/respond"
	"github.com/nutriplan/nutriplan-server/internal/auth"
	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/services"
)

// RecipeHandler exposes the recipe catalog.
type RecipeHandler struct {
	svc        *services.RecipeService
	authorizer auth.Authorizer
}

func NewRecipeHandler(svc *services.RecipeService, authorizer auth.Authorizer) *RecipeHandler {
	return &RecipeHandler{svc: svc, authorizer: authorizer}
}

// ListRecipes GET /api/recipes
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	recipes, err := h.svc.ListRecipes(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if recipes == nil {
		recipes = []*model.Recipe{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"library": recipes, "count": len(recipes)})
}

// GetRecipe GET /api/recipes/{recipeId}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.GetRecipe(r.Context(), ownerID, mux.Vars(r)["recipeId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// UpsertRecipe PUT /api/recipes/{recipeId}
// The path id wins over any id in the body so a rename cannot fork the row.
func (h *RecipeHandler) UpsertRecipe(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var rec model.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	rec.RecipeID = mux.Vars(r)["recipeId"]
	out, err := h.svc.UpsertRecipe(r.Context(), ownerID, &rec)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteSaved(w, "Receita salva com sucesso", out.RecipeID)
}

func (h *RecipeHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := auth.ExtractBearerToken(r)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return "", false
	}
	ownerID, err := h.authorizer.Authorize(r.Context(), token)
	if err != nil {
		respond.WriteUnauthorized(w, "Unauthorized: "+err.Error())
		return "", false
	}
	return ownerID, true
}
