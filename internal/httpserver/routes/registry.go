package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register adds a named route group, with optional middlewares applied
// to every route of the group. Called from init in each route file.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Groups lists the registered route groups in mount order.
func Groups() []string {
	names := make([]string, 0, len(registry))
	for _, e := range sorted() {
		names = append(names, e.name)
	}
	return names
}

// RegisterAll mounts every group on r, sorted by name so the mount order
// does not depend on file init order. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range sorted() {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}
	d.Logger.Debug("routes mounted", logger.Strings("groups", Groups()))
}

func sorted() []entry {
	out := append([]entry(nil), registry...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
