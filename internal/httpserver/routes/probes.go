package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
)

func init() { RegisterRoot(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRs, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
