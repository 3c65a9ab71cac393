package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "familybudget/internal/log"
	"familybudget/internal/services"
)

// Pinger is implemented by stores that can check their own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to the application services.
type Options struct {
	Reports *services.ReportService
	Ledger  *services.LedgerService
	Exports *services.ExportService

	// Store is checked by /readyz when it implements Pinger.
	Store interface{}

	Logger             *applog.Logger
	RateLimitPerMinute int

	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	reports     *services.ReportService
	ledger      *services.LedgerService
	exports     *services.ExportService
	store       interface{}
	base        *applog.Logger
	logger      *applog.Logger
	rateLimiter *rateLimiter
	security    *securityMetrics
	now         func() time.Time
	started     time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		reports:     opts.Reports,
		ledger:      opts.Ledger,
		exports:     opts.Exports,
		store:       opts.Store,
		base:        logger,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		security:    &securityMetrics{},
		now:         now,
		started:     now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("GET /api/reports/monthly", s.withMiddleware(s.handleMonthlyReport))
	mux.Handle("POST /api/reports/monthly", s.withMiddleware(s.handleMonthlyReport))
	mux.Handle("GET /api/reports/analysis", s.withMiddleware(s.handleAnalysisReport))
	mux.Handle("POST /api/reports/analysis", s.withMiddleware(s.handleAnalysisReport))

	mux.Handle("GET /api/exports/{name}", s.withMiddleware(s.handleExportDownload))
	mux.Handle("POST /api/exports", s.withMiddleware(s.handleExportEnqueue))

	mux.Handle("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.Handle("GET /api/incomes", s.withMiddleware(s.handleListIncomes))
	mux.Handle("POST /api/incomes", s.withMiddleware(s.handleCreateIncome))
	mux.Handle("GET /api/goals", s.withMiddleware(s.handleListGoals))
	mux.Handle("POST /api/goals", s.withMiddleware(s.handleSetGoal))
	mux.Handle("DELETE /api/{kind}/{id}", s.withMiddleware(s.handleDeleteRecord))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware wraps an API handler with the logger-in-context, tracing,
// rate limiting and security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.Handler {
	var h http.Handler = s.withSecurityHeaders(next)
	h = applog.RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get(requestIDHeader)
	})(h)
	h = s.withRequestID(h)
	h = applog.ComponentMiddleware(applog.ComponentHTTP)(h)
	return applog.Middleware(s.base)(h)
}

// withRequestID keeps a well-formed caller request id or assigns a new one,
// and echoes it on the response.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !validRequestID(id) {
			id = generateRequestID()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := applog.FromContext(ctx)
		structured := applog.NewStructuredLogger(logger)

		clientIP := extractClientIP(r, s.security)
		structured.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.security) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if r.Method != http.MethodGet && r.Method != http.MethodHead && !s.rateLimiter.allow(clientIP, s.security) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldComponent, applog.ComponentRateLimit,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
				Header("Retry-After", "60").
				Write(rw)
		} else {
			next(rw, r)
		}

		structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
