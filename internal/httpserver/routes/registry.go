package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Scope is the router a registrar is mounted on.
type Scope int

const (
	// ScopeRoot routes live outside /api and skip auth and rate limiting (probes).
	ScopeRoot Scope = iota
	// ScopeAPI routes are mounted under /api behind auth and rate limiting.
	ScopeAPI
)

type entry struct {
	scope Scope
	reg   Registrar
	mws   []Middleware
}

var registry []entry

// Register adds an /api registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{scope: ScopeAPI, reg: reg, mws: mws})
}

// RegisterRoot adds a registrar mounted at the router root.
func RegisterRoot(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{scope: ScopeRoot, reg: reg, mws: mws})
}

// RegisterAll mounts every registrar of the given scope. Called from server.New.
func RegisterAll(r chi.Router, scope Scope, d deps.Deps) {
	for _, e := range registry {
		if e.scope != scope {
			continue
		}
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}
}
