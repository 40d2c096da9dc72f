package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/handlers"
)

func init() { Register(registerQuery) }

func registerQuery(r chi.Router, d deps.Deps) {
	r.Get("/search", handlers.Search(d))
	r.Post("/availability", handlers.CheckAvailability(d))
	r.Post("/availability/multi", handlers.CheckMultiAvailability(d))
	r.Post("/resolve", handlers.ResolveTerms(d))
	r.Get("/synonyms", handlers.ListSynonyms(d))
	r.Get("/status", handlers.Status(d))
}
