package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// registerOps mounts the operator endpoints behind the CIDR list.
// /metrics skips the host check so in-cluster scrapers can reach it.
func registerOps(r chi.Router, d deps.Deps) {
	operator := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

	operator.Handle("/metrics", d.Metrics.Handler())

	guarded := operator.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	guarded.Get("/infra", handlers.Infra(d))
	guarded.Post("/reload", handlers.Reload(d))
}
