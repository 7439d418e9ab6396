package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/lifehub/internal/logger"
	"github.com/MrSnakeDoc/lifehub/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	for i, wantRemaining := range []string{"1", "0"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request #%d = %d, want 200", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != wantRemaining {
			t.Errorf("request #%d remaining = %q, want %s", i+1, got, wantRemaining)
		}
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(rec.Body.String(), `"rate limit exceeded"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	now = now.Add(time.Second)
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("after refill = %d, want 200", rec.Code)
	}

	// buckets are per client IP
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	if rec := serve(h, req); rec.Code != http.StatusOK {
		t.Errorf("other client = %d, want 200", rec.Code)
	}
}

func TestLimiterRefill(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 60})
	now := time.Now()

	if ok, _, _ := l.allow("ip", now); !ok {
		t.Fatal("first token refused")
	}
	ok, _, retry := l.allow("ip", now)
	if ok || retry != 1 {
		t.Fatalf("empty bucket: ok=%v retry=%d, want refused with retry 1", ok, retry)
	}
	if ok, _, _ := l.allow("ip", now.Add(time.Second)); !ok {
		t.Error("token not refilled after one second")
	}
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"hub.example.com", "hub.example.com", true},
		{"api.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil-example.com", "*.example.com", false},
		{".example.com", "*.example.com", false},
		{"hub.example.org", "hub.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"~"+tt.pattern, func(t *testing.T) {
			if got := matchHost(tt.host, tt.pattern); got != tt.want {
				t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	log := logger.NewNop()

	open := EnforceHost(nil, log)(okHandler)
	if rec := serve(open, httptest.NewRequest(http.MethodGet, "http://anything.test/", nil)); rec.Code != http.StatusOK {
		t.Errorf("passthrough = %d, want 200", rec.Code)
	}

	h := EnforceHost([]string{"*.example.com"}, log)(okHandler)
	for _, u := range []string{"http://hub.example.com/", "http://HUB.example.com:8080/"} {
		if rec := serve(h, httptest.NewRequest(http.MethodGet, u, nil)); rec.Code != http.StatusOK {
			t.Errorf("allowed host %s = %d, want 200", u, rec.Code)
		}
	}
	if rec := serve(h, httptest.NewRequest(http.MethodGet, "http://hub.example.org/", nil)); rec.Code != http.StatusForbidden {
		t.Errorf("foreign host = %d, want 403", rec.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(okHandler)

	inside := httptest.NewRequest(http.MethodGet, "/infra", nil)
	inside.RemoteAddr = "10.1.2.3:5000"
	if rec := serve(h, inside); rec.Code != http.StatusOK {
		t.Errorf("inside range = %d, want 200", rec.Code)
	}

	outside := httptest.NewRequest(http.MethodGet, "/infra", nil)
	outside.RemoteAddr = "192.0.2.1:5000"
	outside.Header.Set("X-Forwarded-For", "10.1.2.3")
	if rec := serve(h, outside); rec.Code != http.StatusForbidden {
		t.Errorf("untrusted forwarded header = %d, want 403", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/news/relations/favorites/1", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "X-User-ID")
		return serve(h, req)
	}

	rec := preflight("https://app.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Allow-Methods = %q, want POST", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "43200" {
		t.Errorf("Max-Age = %q, want 43200", got)
	}

	rec = preflight("https://evil.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/{kind}/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/news/items/42", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := serve(m.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`lifehub_http_requests_total{method="GET",route="/api/{kind}/items/{id}",status="404"} 1`,
		`route="unmatched"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
	if strings.Contains(body, "items/42") {
		t.Error("raw path leaked into labels")
	}
}
