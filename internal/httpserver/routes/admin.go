package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
)

func init() { Register(registerAdmin, mw.RequireRole(mw.RoleAdmin)) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRs, d.TrustProxy, d.Logger))

		admin.Post("/refresh", handlers.Refresh(d))
		admin.Post("/ingest", handlers.Ingest(d))
		admin.Post("/cache/flush", handlers.FlushCache(d))
	})
}
