/*
server.go - HTTP router and middleware configuration

PURPOSE:

	Configures the HTTP router (chi), middleware stack, and route
	definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
 1. Logger:     Request logging
 2. Recoverer:  Panic recovery (500 instead of crash)
 3. RequestID:  Unique ID per request for tracing
 4. CORS:       Cross-origin requests for the dashboard frontend

SECURITY NOTE:

	No authentication middleware. Endpoints are public; auth and
	impersonation live in the surrounding application.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// People + evaluation
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Get("/{id}/compensation", h.EvaluateCompensation)
			r.Get("/{id}/dashboard", h.Dashboard)
			r.Get("/{id}/assignments", h.GetAssignments)
			r.Post("/{id}/sales", h.AddSoldProduct)
			r.Post("/{id}/activities", h.AddActivity)
		})

		// Plans
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
			r.Put("/{id}/order", h.ReorderPlan)
		})

		// Catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.GetCatalog)
			r.Post("/lobs", h.CreateLob)
			r.Post("/products", h.CreateProduct)
			r.Post("/buckets", h.CreateBucketDef)
		})

		// Assignments
		r.Post("/assignments", h.CreateAssignment)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed-defaults", h.SeedDefaults)
		})
	})

	return r
}
