package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/middleware/ratelimit"
	"finance/internal/middleware/security"
	"finance/internal/middleware/trace"
	"finance/internal/sheets"
	appweb "finance/web"
)

// TransactionService is what the handlers need from the service layer.
type TransactionService interface {
	List(ctx context.Context, rng core.DateRange) ([]core.Transaction, error)
	Create(ctx context.Context, tx core.Transaction) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Summary(ctx context.Context, rng core.DateRange) (core.Summary, error)
	Ping(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr               string
	Logger             *applog.Logger
	TrustedProxies     []string
	RateLimitPerMinute int
}

// Server serves the dashboard and the JSON API.
type Server struct {
	http.Server

	templates  *template.Template
	service    TransactionService
	categories sheets.CategoryReader
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// categories may be nil, in which case the built-in suggestions are served.
func NewServer(opts Options, svc TransactionService, categories sheets.CategoryReader) (*Server, error) {
	detector, err := security.NewDetector(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		service:    svc,
		categories: categories,
		limiter:    ratelimit.NewLimiter(rlConfig),
		detector:   detector,
		tracer:     trace.NewMiddleware(detector.ExtractClientIP),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	limited := s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimit)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.Handle("POST /api/transactions", limited(http.HandlerFunc(s.handleCreateTransaction)))
	mux.Handle("DELETE /api/transactions/{id}", limited(http.HandlerFunc(s.handleDeleteTransaction)))
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	// Outermost first.
	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = recoverPanic(handler)
	handler = applog.RequestIDMiddleware(trace.GetRequestID)(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}

	return s, nil
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// recoverPanic turns a handler panic into a 500 JSON response.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "Handler panic",
					"panic", rec,
					applog.FieldPath, r.URL.Path,
					"stack", string(debug.Stack()))
				writeError(w, r, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Metrics returns request and rate limit counters.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()

		trafficMetrics, limitMetrics, securityMetrics := s.Metrics()
		slog.Info("HTTP server shutting down",
			applog.FieldOperation, applog.OpShutdown,
			"total_requests", trafficMetrics.TotalRequests,
			"server_errors", trafficMetrics.ServerErrors,
			"rate_limit_hits", limitMetrics.TotalHits,
			"suspicious_requests", securityMetrics.SuspiciousRequests)

		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
