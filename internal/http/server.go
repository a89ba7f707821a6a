package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/middleware/trace"
	"dompet/internal/period"
	"dompet/internal/services"
)

// Options wires the server to its store and period manager.
type Options struct {
	Store              period.Store
	Periods            *period.Manager
	Logger             *log.Logger
	RateLimitPerMinute int
	// TrustedProxies are CIDR ranges whose forwarding headers are honoured
	// in addition to the private and loopback defaults.
	TrustedProxies []string
	// Now defaults to time.Now.
	Now func() time.Time
}

const (
	settingsCacheSize = 1024
	settingsCacheTTL  = 5 * time.Minute
)

type Server struct {
	http.Server

	logger       *log.Logger
	store        period.Store
	periods      *period.Manager
	transactions *services.TransactionService
	settings     *services.SettingsService
	dashboard    *services.DashboardService

	limiter       *ratelimit.Limiter
	janitor       *cache.Janitor
	settingsCache *cache.LRU[int64, core.UserSettings]
	detector      *security.Detector
	tracer        *trace.Middleware
	now           func() time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	settingsCache := cache.NewLRU[int64, core.UserSettings](settingsCacheSize, settingsCacheTTL)
	janitor := cache.NewJanitor(logger)
	janitor.Register(settingsCache)
	janitor.Start(settingsCacheTTL)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s := &Server{
		logger:        logger,
		store:         opts.Store,
		periods:       opts.Periods,
		transactions:  services.NewTransactionService(opts.Store, opts.Periods),
		settings:      services.NewSettingsService(opts.Store, opts.Periods, settingsCache),
		dashboard:     services.NewDashboardService(opts.Store, opts.Periods),
		janitor:       janitor,
		settingsCache: settingsCache,
		limiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:      detector,
		tracer:        trace.NewMiddleware(logger, detector.ExtractClientIP),
		now:           now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.api(mux, "GET /api/dashboard", s.handleDashboard)
	s.api(mux, "GET /api/periods", s.handlePeriodHistory)
	s.api(mux, "GET /api/periods/active", s.handleActivePeriod)
	s.api(mux, "GET /api/periods/{id}", s.handlePeriodDetail)
	s.api(mux, "POST /api/periods/reset", s.handleResetPeriod)
	s.api(mux, "GET /api/transactions", s.handleListTransactions)
	s.api(mux, "POST /api/transactions", s.handleCreateTransaction)
	s.api(mux, "PUT /api/transactions/{id}", s.handleUpdateTransaction)
	s.api(mux, "DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	s.api(mux, "GET /api/settings/period", s.handleGetSettings)
	s.api(mux, "PUT /api/settings/period", s.handleUpdateSettings)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(s.withScanDetection(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// api registers an authenticated, rate limited route.
func (s *Server) api(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	limited := s.limiter.Middleware(s.rateLimitKey, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})
	mux.Handle(pattern, limited(requireUser(h)))
}

// rateLimitKey buckets callers by user, falling back to the client address.
func (s *Server) rateLimitKey(r *http.Request) string {
	if userID, err := ParseUserID(r); err == nil {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) withScanDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.janitor.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
