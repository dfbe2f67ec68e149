package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nutriplan/nutriplan-server/internal/api/respond"
	"github.com/nutriplan/nutriplan-server/internal/auth"
	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/services"
)

// PlanHandler is a thin HTTP transport over PlanService.
type PlanHandler struct {
	svc        *services.PlanService
	authorizer auth.Authorizer
}

func NewPlanHandler(svc *services.PlanService, authorizer auth.Authorizer) *PlanHandler {
	return &PlanHandler{svc: svc, authorizer: authorizer}
}

// savePlanRequest mirrors the wire shape the web editor posts.
type savePlanRequest struct {
	Name     string              `json:"name"`
	Data     *model.PlanDocument `json:"data"`
	IsActive bool                `json:"is_active"`
}

// planDocumentResponse is the read shape: the document fields at top level,
// the way the editor and the mobile client consume them, plus the flags
// storage adds.
type planDocumentResponse struct {
	Library   []model.Recipe    `json:"library"`
	Planner   model.PlannerGrid `json:"planner"`
	Themes    map[int]string    `json:"themes"`
	PlanName  string            `json:"plan_name"`
	IsActive  bool              `json:"is_active"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func planDocument(p *model.Plan) planDocumentResponse {
	return planDocumentResponse{
		Library:   p.Document.Library,
		Planner:   p.Document.Planner,
		Themes:    p.Document.Themes,
		PlanName:  p.Name,
		IsActive:  p.IsActive,
		UpdatedAt: p.UpdatedAt,
	}
}

// SavePlan POST /api/plans
func (h *PlanHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req savePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	plan, err := h.svc.SavePlan(r.Context(), ownerID, req.Name, req.Data, req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteSaved(w, "Plano salvo com sucesso", plan.PlanID)
}

// ListPlans GET /api/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	summaries, err := h.svc.ListPlans(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []*model.PlanSummary{}
	}
	respond.WriteJSON(w, http.StatusOK, summaries)
}

// GetActivePlan GET /api/plans/active
// Responds 204 when no plan is active; the mobile consumer treats that as
// "nothing to show", not as a fault.
func (h *PlanHandler) GetActivePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	plan, err := h.svc.GetActivePlan(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if plan == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respond.WriteJSON(w, http.StatusOK, planDocument(plan))
}

// GetPlan GET /api/plans/{planId}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	plan, err := h.svc.GetPlan(r.Context(), ownerID, mux.Vars(r)["planId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, planDocument(plan))
}

// DeletePlan DELETE /api/plans/{planId}
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePlan(r.Context(), ownerID, mux.Vars(r)["planId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlanHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
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

// writeServiceError maps service errors onto the HTTP status contract.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
