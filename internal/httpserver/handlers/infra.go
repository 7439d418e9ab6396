package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
	"github.com/MrSnakeDoc/lifehub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/lifehub/internal/index"
)

const redisPingTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type storeStatus struct {
	index.Status
	LastReload string `json:"lastReload"`
}

type infraResponse struct {
	Mode         string                     `json:"mode"`
	Components   map[string]componentStatus `json:"components"`
	Stores       []storeStatus              `json:"stores"`
	PendingFlush []domain.Kind              `json:"pendingFlush"`
	Players      int                        `json:"players"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := d.Registry.Statuses()
		stores := make([]storeStatus, len(statuses))
		for i, st := range statuses {
			lastReload := "never"
			if !st.LastReload.IsZero() {
				lastReload = st.LastReload.Format("2006-01-02 15:04:05")
			}
			stores[i] = storeStatus{Status: st, LastReload: lastReload}
		}

		components := map[string]componentStatus{
			"catalog": catalogStatus(statuses),
			"redis":   checkRedis(r.Context(), d),
		}

		resp := infraResponse{
			Mode:         determineMode(components),
			Components:   components,
			Stores:       stores,
			PendingFlush: []domain.Kind{},
		}
		if d.Flusher != nil {
			resp.PendingFlush = d.Flusher.Pending()
		}
		if d.Players != nil {
			resp.Players = d.Players.Len()
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func catalogStatus(statuses []index.Status) componentStatus {
	for _, st := range statuses {
		if st.Error != "" {
			return componentStatus{OK: false, Mode: "stale", Impact: "serving-last-catalog", Error: st.Error}
		}
		if st.LastReload.IsZero() {
			return componentStatus{OK: false, Mode: "loading", Impact: "empty-catalog"}
		}
	}
	return componentStatus{OK: true, Mode: "loaded"}
}

func determineMode(components map[string]componentStatus) string {
	// No catalog loaded = critical
	if catalog, exists := components["catalog"]; exists && catalog.Mode == "loading" {
		return "critical"
	}

	// Redis down or stale catalog = degraded (state kept in memory only)
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}

	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "memory-only",
			Impact: "state-not-persisted",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "memory-only",
			Impact: "state-not-persisted",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "persistent",
		Impact: "state-persisted",
	}
}
