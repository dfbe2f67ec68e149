package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nutriplan/nutriplan-server/internal/api/respond"
	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/services"
)

// UserHandler covers account provisioning. Tokens are issued by the external
// auth service; this surface only creates and reads the account record.
type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

// CreateUser POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	u := &model.User{UserID: req.UserID, Name: req.Name, Email: req.Email}
	out, err := h.svc.CreateUser(r.Context(), u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetUser GET /api/users/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
