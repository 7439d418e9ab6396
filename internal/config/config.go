package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/domain"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Stores
	CatalogFile      string         // path to the catalog seed YAML
	ReloadInterval   time.Duration  // interval to reload the catalog (default: 1h)
	CatalogRetries   uint64         // retries of one catalog read (default: 4)
	CatalogRetryWait time.Duration  // first wait between catalog read retries (default: 200ms)
	FlushInterval    time.Duration  // interval to persist dirty projections (default: 30s)
	HistoryLimit     int            // history entries kept per user (default: 100)
	SearchLatency    time.Duration  // artificial delay before a search publishes (default: 0)
	Weights          domain.Weights // ranking weights
	RateBurst        int            // per-IP burst on /api
	RatePerMin       int            // per-IP refill on /api
	CORSOrigins      []string       // allowed browser origins (empty = any)
	SyncTimeout      time.Duration  // bound of the startup projection sync (ex: 10s)
	SyncRetries      uint64         // retries of one projection read at startup (default: 3)
	SyncRetryWait    time.Duration  // first wait between projection read retries (default: 500ms)

	// Redis (empty address => memory only, nothing persisted)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /infra, /readyz, /reload, /metrics to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Redis reports whether durable storage is configured.
func (c *Config) Redis() bool { return c.RedisAddr != "" }

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LIFEHUB_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LIFEHUB_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LIFEHUB_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LIFEHUB_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LIFEHUB_PRETTY_LOG", true),

		// Stores
		CatalogFile:      getenv("LIFEHUB_CATALOG_FILE", "/app/catalog.yaml"),
		ReloadInterval:   mustDuration("LIFEHUB_RELOAD_INTERVAL", time.Hour),
		CatalogRetries:   uint64(max(getenvInt("LIFEHUB_CATALOG_RETRIES", 4), 0)),
		CatalogRetryWait: mustDuration("LIFEHUB_CATALOG_RETRY_WAIT", 200*time.Millisecond),
		FlushInterval:    mustDuration("LIFEHUB_FLUSH_INTERVAL", 30*time.Second),
		HistoryLimit:     getenvInt("LIFEHUB_HISTORY_LIMIT", 100),
		SearchLatency:    mustDuration("LIFEHUB_SEARCH_LATENCY", 0),
		Weights: domain.Weights{
			Quality:    getenvFloat("LIFEHUB_RECOMMEND_QUALITY_WEIGHT", domain.DefaultQualityWeight),
			Popularity: getenvFloat("LIFEHUB_RECOMMEND_POPULAR_WEIGHT", domain.DefaultPopularityWeight),
			Reviews:    getenvFloat("LIFEHUB_POPULAR_REVIEWS_WEIGHT", domain.DefaultReviewsWeight),
			Rating:     getenvFloat("LIFEHUB_POPULAR_RATING_WEIGHT", domain.DefaultRatingWeight),
		},
		RateBurst:   getenvInt("LIFEHUB_RATE_BURST", 60),
		RatePerMin:  getenvInt("LIFEHUB_RATE_PER_MIN", 600),
		CORSOrigins: splitAndTrim(getenv("LIFEHUB_CORS_ORIGINS", "")),
		SyncTimeout:   mustDuration("LIFEHUB_SYNC_TIMEOUT", 10*time.Second),
		SyncRetries:   uint64(max(getenvInt("LIFEHUB_SYNC_RETRIES", 3), 0)),
		SyncRetryWait: mustDuration("LIFEHUB_SYNC_RETRY_WAIT", 500*time.Millisecond),

		// Redis settings
		RedisAddr:             getenv("LIFEHUB_REDIS_ADDR", ""),
		RedisUser:             getenv("LIFEHUB_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LIFEHUB_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LIFEHUB_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LIFEHUB_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LIFEHUB_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LIFEHUB_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LIFEHUB_TRUST_PROXY", false),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.Redis() && c.RedisPasswordRequired && c.RedisPassword == "":
		return fmt.Errorf("LIFEHUB_REDIS_PASSWORD is required when LIFEHUB_REDIS_PASSWORD_REQUIRED=true")
	case c.CatalogFile == "":
		return fmt.Errorf("LIFEHUB_CATALOG_FILE must not be empty")
	case c.HistoryLimit < 1:
		return fmt.Errorf("LIFEHUB_HISTORY_LIMIT must be >= 1, got %d", c.HistoryLimit)
	case c.RequestTimeout <= c.SearchLatency:
		return fmt.Errorf("LIFEHUB_REQUEST_TIMEOUT (%v) must exceed LIFEHUB_SEARCH_LATENCY (%v)", c.RequestTimeout, c.SearchLatency)
	}
	for name, w := range map[string]float64{
		"LIFEHUB_RECOMMEND_QUALITY_WEIGHT": c.Weights.Quality,
		"LIFEHUB_RECOMMEND_POPULAR_WEIGHT": c.Weights.Popularity,
		"LIFEHUB_POPULAR_REVIEWS_WEIGHT":   c.Weights.Reviews,
		"LIFEHUB_POPULAR_RATING_WEIGHT":    c.Weights.Rating,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", name, w)
		}
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
