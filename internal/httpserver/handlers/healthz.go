package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Stores        int     `json:"stores"`
	Persistent    bool    `json:"persistent"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz is the liveness probe. It never touches Redis or the catalog:
// a process that answers is alive, readiness is /readyz's job.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	stores := 0
	if d.Registry != nil {
		stores = len(d.Registry.Kinds())
	}
	persistent := d.RedisClient != nil

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(start).Seconds(),
			Stores:        stores,
			Persistent:    persistent,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
