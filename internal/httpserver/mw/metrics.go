package mw

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/lifehub/internal/metrics"
)

// Metrics records one observation per request, labelled by the matched
// route pattern so ids never reach label values.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(ww, r)

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequest(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}
