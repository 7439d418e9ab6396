package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "ipv6 remote addr", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4", remote: "[::ffff:10.0.0.1]:80", want: "10.0.0.1"},
		{
			name:    "headers ignored without trust",
			remote:  "192.0.2.10:5555",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9"},
			want:    "192.0.2.10",
		},
		{
			name:       "left-most forwarded entry",
			remote:     "127.0.0.1:5555",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"},
			trustProxy: true,
			want:       "203.0.113.9",
		},
		{
			name:   "cloudflare header wins",
			remote: "127.0.0.1:5555",
			headers: map[string]string{
				"CF-Connecting-IP": "198.51.100.4",
				"X-Forwarded-For":  "203.0.113.9",
			},
			trustProxy: true,
			want:       "198.51.100.4",
		},
		{
			name:       "garbage header falls through",
			remote:     "127.0.0.1:5555",
			headers:    map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.5"},
			trustProxy: true,
			want:       "198.51.100.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.7 ", "2001:db8::/32", "not-an-ip", ""})

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.20.30.40", true},
		{"192.0.2.7", true},
		{"192.0.2.8", false},
		{"2001:db8::42", true},
		{"::ffff:10.1.1.1", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() || !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("matcher without valid rules should be empty")
	}
}
