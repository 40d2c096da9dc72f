package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/respond"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Products int    `json:"products"`
	Origin   string `json:"origin"`
	Reason   string `json:"reason,omitempty"`
}

// Readyz reports ready once a catalog snapshot has been loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Catalog.Status()
		if !st.Populated {
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{
				Origin: st.Origin,
				Reason: "catalog not loaded",
			})
			return
		}
		respond.JSON(w, http.StatusOK, readyzResponse{
			Ready:    true,
			Products: st.Products,
			Origin:   st.Origin,
		})
	}
}
