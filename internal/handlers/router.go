// internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/internal/pkg/logger"
)

const apiV1 = "/api/v1"

// Router groups the handlers served by the API
type Router struct {
	Warehouses *WarehouseHandler
	Movements  *MovementHandler
	Queries    *QueryHandler
	Exports    *ExportHandler
	Health     *HealthHandler
	Metrics    http.Handler
}

// Register mounts every route on mux using method-specific patterns
func (rt *Router) Register(mux *http.ServeMux, cfg config.ServerConfig) {
	if cfg.EnableHealthCheck && rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", rt.Health.Health)
	}
	if cfg.EnableMetrics && rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	scoped := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, withWarehouse(h))
	}

	// Warehouse registry
	mux.HandleFunc("POST "+apiV1+"/warehouses", rt.Warehouses.CreateWarehouse)
	mux.HandleFunc("GET "+apiV1+"/warehouses", rt.Warehouses.ListWarehouses)
	scoped("GET "+apiV1+"/warehouses/{id}", rt.Warehouses.GetWarehouse)
	scoped("POST "+apiV1+"/warehouses/{id}/activate", rt.Warehouses.ActivateWarehouse)
	scoped("POST "+apiV1+"/warehouses/{id}/deactivate", rt.Warehouses.DeactivateWarehouse)
	mux.HandleFunc("GET "+apiV1+"/branches/{branchId}/warehouse", rt.Warehouses.GetBranchWarehouse)

	// Movements
	scoped("POST "+apiV1+"/warehouses/{id}/income", rt.Movements.Income)
	scoped("POST "+apiV1+"/warehouses/{id}/outcome", rt.Movements.Outcome)

	// Reservations
	scoped("POST "+apiV1+"/warehouses/{id}/reservations", rt.Movements.Reserve)
	scoped("GET "+apiV1+"/warehouses/{id}/reservations", rt.Queries.ListReservations)
	scoped("GET "+apiV1+"/warehouses/{id}/reservations/{rid}", rt.Queries.GetReservation)
	scoped("POST "+apiV1+"/warehouses/{id}/reservations/{rid}/release", rt.Movements.Release)
	scoped("POST "+apiV1+"/warehouses/{id}/reservations/{rid}/consume", rt.Movements.Consume)

	// Read models
	scoped("GET "+apiV1+"/warehouses/{id}/stock", rt.Queries.GetStock)
	scoped("GET "+apiV1+"/warehouses/{id}/movements", rt.Queries.ListMovements)
	mux.HandleFunc("GET "+apiV1+"/items/{itemId}/availability", rt.Queries.GetAvailability)

	// Exports
	if rt.Exports != nil {
		scoped("GET "+apiV1+"/warehouses/{id}/stock/export", rt.Exports.ExportStock)
		scoped("POST "+apiV1+"/warehouses/{id}/stock/snapshots", rt.Exports.RequestSnapshot)
	}
}

// withWarehouse tags the request context with the warehouse in the path
func withWarehouse(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := r.PathValue("id"); id != "" {
			r = r.WithContext(logger.WithValue(r.Context(), logger.ContextKeyWarehouseID, id))
		}
		next(w, r)
	}
}
