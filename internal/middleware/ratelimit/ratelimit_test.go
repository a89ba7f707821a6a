package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute})
	t.Cleanup(rl.Stop)
	clock := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("user:1") {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
	}
	if rl.Allow("user:1") {
		t.Error("fourth request allowed, want rejected")
	}
	if !rl.Allow("user:2") {
		t.Error("other client rejected, want allowed")
	}

	*clock = clock.Add(time.Minute)
	if !rl.Allow("user:1") {
		t.Error("request in a new window rejected, want allowed")
	}

	if got := rl.GetMetrics(); got.Rejected != 1 || got.ClientCount != 2 {
		t.Errorf("GetMetrics() = %+v, want 1 rejected and 2 clients", got)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)
	rl.Allow("a")
	*clock = clock.Add(90 * time.Second)
	rl.Allow("b")
	*clock = clock.Add(90 * time.Second)

	rl.cleanupStaleEntries()

	if got := rl.GetMetrics().ClientCount; got != 1 {
		t.Errorf("ClientCount after cleanup = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)
	h := rl.Middleware(
		func(r *http.Request) string { return r.Header.Get("X-User-ID") },
		nil,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req.Header.Set("X-User-ID", "1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}
	*clock = clock.Add(20 * time.Second)
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "40" {
		t.Errorf("Retry-After = %q, want 40", got)
	}
}
