/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, picked up by logger.FromContext
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /health               Liveness and store ping
  /api/products/*       Catalog management
  /api/sales/*          Sales and their commission entries
  /api/reports/*        Cash flow and role summaries
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. The X-Owner-ID header scopes data but does
  not prove identity.

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", OwnerHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Catalog routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.withOwner(h.ListProducts))
			r.Post("/", h.withOwner(h.CreateProduct))
			r.Post("/import", h.withOwner(h.ImportCatalog))
			r.Get("/export", h.withOwner(h.ExportCatalog))
			r.Get("/{id}", h.withOwner(h.GetProduct))
			r.Delete("/{id}", h.withOwner(h.DeleteProduct))
		})

		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.withOwner(h.ListSales))
			r.Post("/", h.withOwner(h.CreateSale))
			r.Post("/preview", h.withOwner(h.PreviewSale))
			r.Get("/{id}", h.withOwner(h.GetSale))
			r.Put("/{id}", h.withOwner(h.UpdateSale))
			r.Delete("/{id}", h.withOwner(h.DeleteSale))

			// Entry routes
			r.Route("/{id}/entries/{entryID}", func(r chi.Router) {
				r.Post("/received", h.withOwner(h.ToggleReceived))
				r.Post("/block", h.withOwner(h.ToggleBlocked))
				r.Post("/reschedule", h.withOwner(h.RescheduleEntry))
				r.Patch("/", h.withOwner(h.EditEntryAmount))
				r.Delete("/", h.withOwner(h.DeleteEntry))
			})
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/cashflow", h.withOwner(h.CashFlow))
			r.Get("/roles", h.withOwner(h.RoleSummaries))
			r.Get("/roles/{role}", h.withOwner(h.RoleSummary))
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.withOwner(h.GetCurrentScenario))
			r.Post("/load", h.withOwner(h.LoadScenario))
		})
	})

	return r
}
