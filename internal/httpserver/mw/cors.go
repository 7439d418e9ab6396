package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
const corsMaxAge = 12 * 60 * 60

// CORS allows browser clients from allowedOrigins. An empty list allows
// every origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-User-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.Handler(opts)
}
