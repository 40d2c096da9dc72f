package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/respond"
)

// Search handles GET /api/search?q=&includeSourcing=
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		includeSourcing := false
		if raw := q.Get("includeSourcing"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				respond.Error(w, r, d.Logger, apperrors.Validation("includeSourcing must be a boolean"))
				return
			}
			includeSourcing = v
		}

		res, err := d.Availability.Search(r.Context(), q.Get("q"), includeSourcing)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

type availabilityRequest struct {
	Query    string `json:"query"`
	Quantity *int   `json:"quantity,omitempty"`
	Urgent   *bool  `json:"urgent,omitempty"`
}

// CheckAvailability handles POST /api/availability
func CheckAvailability(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req availabilityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		res, err := d.Availability.CheckAvailability(r.Context(), req.Query, req.Quantity, req.Urgent)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

type multiRequest struct {
	Query  string `json:"query"`
	Urgent *bool  `json:"urgent,omitempty"`
}

// CheckMultiAvailability handles POST /api/availability/multi
func CheckMultiAvailability(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req multiRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		res, err := d.Availability.CheckMultiAvailability(r.Context(), req.Query, req.Urgent)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

type resolveRequest struct {
	Terms []string `json:"terms"`
}

// ResolveTerms handles POST /api/resolve
func ResolveTerms(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		res, err := d.Availability.ResolveTerms(r.Context(), req.Terms)
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// ListSynonyms handles GET /api/synonyms
func ListSynonyms(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Availability.ListSynonyms(r.Context())
		if err != nil {
			respond.Error(w, r, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// Status handles GET /api/status. A degraded service still answers 200.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, d.Availability.Status(r.Context()))
	}
}
