package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool          `json:"ready"`
	Waiting []domain.Kind `json:"waiting,omitempty"`
}

// Readyz answers 200 once every store has loaded its catalog, 503 before.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Registry.Ready() {
			writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
			return
		}

		var waiting []domain.Kind
		for _, kind := range d.Registry.Kinds() {
			if d.Registry.LastReload(kind).IsZero() {
				waiting = append(waiting, kind)
			}
		}
		writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Waiting: waiting})
	}
}
