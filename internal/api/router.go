package api

import (
	"earthwork-route-service/internal/api/handlers"
	"earthwork-route-service/internal/ports"
	"net/http"
)

// Dependencies of the HTTP surface. Nil ports disable the endpoints or
// features that need them.
type Deps struct {
	Fields  ports.FieldRepository
	Routes  ports.RouteRepository
	Cache   ports.RouteCache
	Tours   ports.TourSolver
	Workers int
	Checks  map[string]handlers.HealthCheck
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Checks: d.Checks}
	fieldHandler := &handlers.FieldHandler{Repo: d.Fields}
	routeHandler := &handlers.RouteHandler{
		Fields:  d.Fields,
		Routes:  d.Routes,
		Cache:   d.Cache,
		Tours:   d.Tours,
		Workers: d.Workers,
	}

	mux.HandleFunc("GET /health", healthHandler.Health)
	if d.Fields != nil {
		mux.HandleFunc("POST /fields", fieldHandler.Create)
		mux.HandleFunc("GET /fields/{id}", fieldHandler.Get)
	}
	mux.HandleFunc("POST /routes", routeHandler.Plan)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)

	return requestIDMiddleware(loggingMiddleware(mux))
}
