package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dompet/internal/core"
	"dompet/internal/log"
)

// validationErrors are reported to the client as 422 with the error text.
var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidKind,
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrInvalidPayday,
	core.ErrInvalidNamingFormat,
	core.ErrInvalidLocale,
}

// writeError maps a service error to its HTTP response. Unexpected errors
// are logged and hidden behind a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	// A failed reset may wrap any storage error and is always reported as such.
	if errors.Is(err, core.ErrArchiveFailed) {
		s.logError(r, op, err)
		InternalServerError(CodeResetFailed, core.ErrArchiveFailed.Error()).Write(w)
		return
	}

	for _, target := range validationErrors {
		if errors.Is(err, target) {
			UnprocessableEntityError(target.Error()).Write(w)
			return
		}
	}

	switch {
	case errors.Is(err, core.ErrEmptyPeriodReset):
		ConflictError(CodeEmptyPeriod, core.ErrEmptyPeriodReset.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("resource not found").Write(w)
	case errors.Is(err, core.ErrPeriodArchived), errors.Is(err, core.ErrActivePeriodExists):
		ConflictError(CodeConflict, err.Error()).Write(w)
	default:
		s.logError(r, op, err)
		InternalServerError(CodeInternal, "internal error").Write(w)
	}
}

func (s *Server) logError(r *http.Request, op string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, log.NewFields().WithUser(userFrom(r.Context())))
}

type userKey struct{}

// requireUser rejects requests without a valid X-User-ID and stores the ID in
// the request context.
func requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ParseUserID(r)
		if err != nil {
			UnauthorizedError(err.Error()).Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, userID)
		next(w, r.WithContext(ctx))
	}
}

func userFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userKey{}).(int64)
	return id
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports ready only when the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "not_ready", "storage unavailable").Write(w)
		return
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

// handleMetrics writes request, rate limit, scanner and cache counters in the
// Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	writeMetric(w, "rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", limitMetrics.Rejected)
	writeMetric(w, "rate_limit_clients", "gauge", "Clients tracked by the rate limiter", limitMetrics.ClientCount)
	writeMetric(w, "suspicious_requests_total", "counter", "Requests flagged as vulnerability scans", securityMetrics.SuspiciousRequests)
	writeMetric(w, "settings_cache_entries", "gauge", "User settings held in the cache", int64(s.settingsCache.Len()))
}

func writeMetric(w io.Writer, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n", name, help, name, kind, name, value)
}
