package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"dompet/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "no header", incoming: "", keep: false},
		{name: "valid uuid kept", incoming: "7f1c8a2e-4a5b-4c3d-9e8f-0a1b2c3d4e5f", keep: true},
		{name: "garbage replaced", incoming: "../../etc/passwd", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(log.Discard(), nil)

			var seen string
			h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = r.Context().Value(RequestIDKey).(string)
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/periods", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("request ID %q is not a uuid: %v", seen, err)
			}
			if got := rec.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header = %q, want %q", got, seen)
			}
			if tt.keep && seen != tt.incoming {
				t.Errorf("request ID = %q, want incoming %q", seen, tt.incoming)
			}
			if !tt.keep && seen == tt.incoming {
				t.Errorf("request ID %q should have been replaced", seen)
			}
		})
	}
}

func TestMiddlewareMetrics(t *testing.T) {
	m := NewMiddleware(log.Discard(), func(*http.Request) string { return "127.0.0.1" })
	status := http.StatusOK
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	status = http.StatusInternalServerError
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	got := m.GetMetrics()
	if got.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", got.TotalRequests)
	}
	if got.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", got.ServerErrors)
	}
}
