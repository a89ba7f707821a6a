package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{name: "direct client", remoteAddr: "203.0.113.7:5000", want: "203.0.113.7"},
		{name: "untrusted peer ignores forwarded header", remoteAddr: "203.0.113.7:5000", xff: "198.51.100.1", want: "203.0.113.7"},
		{name: "trusted proxy forwarded-for", remoteAddr: "10.0.0.2:80", xff: "198.51.100.1, 10.0.0.9", want: "198.51.100.1"},
		{name: "trusted proxy real-ip", remoteAddr: "127.0.0.1:80", xri: "198.51.100.2", want: "198.51.100.2"},
		{name: "trusted proxy garbage header", remoteAddr: "192.168.1.1:80", xff: "not-an-ip", want: "192.168.1.1"},
		{name: "unparsable remote addr", remoteAddr: "weird", want: "weird"},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/periods", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(req); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{name: "normal api call", method: http.MethodGet, target: "/api/periods?page=2", want: false},
		{name: "curl is fine", method: http.MethodGet, target: "/api/dashboard", agent: "curl/8.0", want: false},
		{name: "dotenv scan", method: http.MethodGet, target: "/.env", want: true},
		{name: "sql injection in query", method: http.MethodGet, target: "/api/periods?q=1%20union%20select", want: true},
		{name: "scanner agent", method: http.MethodGet, target: "/", agent: "sqlmap/1.7", want: true},
		{name: "trace method", method: http.MethodTrace, target: "/", want: true},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := d.GetMetrics().SuspiciousRequests; got != 4 {
		t.Errorf("SuspiciousRequests = %d, want 4", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/periods", nil))
	for key, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on a plain HTTP request")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/periods", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}
