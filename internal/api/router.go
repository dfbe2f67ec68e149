package api

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nutriplan/nutriplan-server/internal/api/recovery"
	"github.com/nutriplan/nutriplan-server/internal/auth"
	"github.com/nutriplan/nutriplan-server/internal/services"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// NewRouter wires the HTTP surface: recovery middleware, domain services and
// their handlers, and the route table.
func NewRouter(st store.Store, authorizer auth.Authorizer, storeTimeout time.Duration, log zerolog.Logger, isHealthy func() bool) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	planSvc := services.NewPlanService(st, storeTimeout, log)
	recipeSvc := services.NewRecipeService(st, storeTimeout, log)
	userSvc := services.NewUserService(st, storeTimeout)

	healthHandler := NewHealthHandler(isHealthy)
	planHandler := NewPlanHandler(planSvc, authorizer)
	recipeHandler := NewRecipeHandler(recipeSvc, authorizer)
	userHandler := NewUserHandler(userSvc)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// User endpoints
	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users/{userId}", userHandler.GetUser).Methods("GET")

	// Plan endpoints. "active" is registered before the id route so the
	// literal wins over the {planId} capture.
	router.HandleFunc("/api/plans", planHandler.SavePlan).Methods("POST")
	router.HandleFunc("/api/plans", planHandler.ListPlans).Methods("GET")
	router.HandleFunc("/api/plans/active", planHandler.GetActivePlan).Methods("GET")
	router.HandleFunc("/api/plans/{planId}", planHandler.GetPlan).Methods("GET")
	router.HandleFunc("/api/plans/{planId}", planHandler.DeletePlan).Methods("DELETE")

	// Recipe catalog endpoints
	router.HandleFunc("/api/recipes", recipeHandler.ListRecipes).Methods("GET")
	router.HandleFunc("/api/recipes/{recipeId}", recipeHandler.GetRecipe).Methods("GET")
	router.HandleFunc("/api/recipes/{recipeId}", recipeHandler.UpsertRecipe).Methods("PUT")

	return router
}
