package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/lifehub/internal/index"
	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/metrics"
	"github.com/MrSnakeDoc/lifehub/internal/player"
	"github.com/MrSnakeDoc/lifehub/internal/scheduler"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra/reload
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst    int              // per-IP burst on /api
	RatePerMin   int              // per-IP refill on /api

	RedisClient   *redis.Client                // Redis client connection (nil = no durable storage)
	Registry      *index.Registry              // One collection per kind
	Metrics       *metrics.Metrics             // Prometheus collectors (nil-safe)
	Players       *player.Sessions             // Music player per user
	Flusher       *scheduler.ProjectionFlusher // Projection writer (nil-safe in /infra)
	ReloadTrigger chan struct{}                // Channel to trigger manual catalog reload
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
