package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

// registerProbes mounts the orchestrator probes. Liveness is open;
// readiness follows the operator CIDR list.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
