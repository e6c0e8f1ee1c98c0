package routes

import (
	"net/http"

	"github.com/healthatlas/facility-registry/internal/api/handlers"
	"github.com/healthatlas/facility-registry/internal/api/middleware"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler  *handlers.FacilityHandler
	lookupHandler    *handlers.LookupHandler
	importHandler    *handlers.ImportHandler
	authHandler      *handlers.AuthHandler
	dashboardHandler *handlers.DashboardHandler

	auth           *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	lookupHandler *handlers.LookupHandler,
	importHandler *handlers.ImportHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	auth *middleware.AuthMiddleware,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		facilityHandler:  facilityHandler,
		lookupHandler:    lookupHandler,
		importHandler:    importHandler,
		authHandler:      authHandler,
		dashboardHandler: dashboardHandler,
		auth:             auth,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes registers all endpoints. Reads are public; writes need the
// editor role and user administration needs admin.
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.Handle("POST /api/auth/register",
		r.auth.RequireRole(entities.RoleAdmin, http.HandlerFunc(r.authHandler.Register)))
	r.mux.Handle("GET /api/auth/me",
		r.auth.RequireAuth(http.HandlerFunc(r.authHandler.Me)))

	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("GET /api/facilities/external/{externalId}", r.facilityHandler.GetFacilityByExternalID)
	r.mux.Handle("POST /api/facilities",
		r.auth.RequireRole(entities.RoleEditor, http.HandlerFunc(r.facilityHandler.CreateFacility)))
	r.mux.Handle("PUT /api/facilities/{id}",
		r.auth.RequireRole(entities.RoleEditor, http.HandlerFunc(r.facilityHandler.UpdateFacility)))
	r.mux.Handle("DELETE /api/facilities/{id}",
		r.auth.RequireRole(entities.RoleEditor, http.HandlerFunc(r.facilityHandler.DeleteFacility)))

	r.mux.Handle("POST /api/facilities/import",
		r.auth.RequireRole(entities.RoleEditor, http.HandlerFunc(r.importHandler.ImportFacilities)))

	r.mux.HandleFunc("GET /api/states", r.lookupHandler.ListStates)
	r.mux.HandleFunc("GET /api/states/{stateId}/regions", r.lookupHandler.ListRegions)
	r.mux.HandleFunc("GET /api/regions/{regionId}/districts", r.lookupHandler.ListDistricts)
	r.mux.HandleFunc("GET /api/facility-types", r.lookupHandler.ListFacilityTypes)
	r.mux.HandleFunc("GET /api/ownerships", r.lookupHandler.ListOwnerships)
	r.mux.HandleFunc("GET /api/operational-statuses", r.lookupHandler.ListOperationalStatuses)

	r.mux.HandleFunc("GET /api/dashboard/summary", r.dashboardHandler.GetSummary)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)
	return handler
}
