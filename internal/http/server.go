// Package http serves the dashboard's JSON API, its login and summary
// pages, and the health endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"burnrate/internal/auth"
	"burnrate/internal/core"
	applog "burnrate/internal/log"
	"burnrate/internal/middleware/ratelimit"
	"burnrate/internal/middleware/security"
	"burnrate/internal/middleware/trace"
	"burnrate/internal/services"
	appweb "burnrate/web"

	"github.com/gorilla/mux"
)

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr               string
	RateLimitPerMinute int
	Logger             *applog.Logger
}

// Services are the collaborators the handlers call.
type Services struct {
	Ledger    *services.LedgerService
	Import    *services.ImportService
	Dashboard *services.DashboardService
	Auth      *auth.Authenticator
	Health    Pinger
}

// Server is an http.Server with the dashboard routes and middleware.
type Server struct {
	http.Server

	ledger    *services.LedgerService
	importer  *services.ImportService
	dashboard *services.DashboardService
	auth      *auth.Authenticator
	health    Pinger
	templates *template.Template

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	metrics     appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	started     time.Time
	ledgerWrite atomic.Int64
	imports     atomic.Int64
	forecasts   atomic.Int64
	loginFailed atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, deps Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		ledger:      deps.Ledger,
		importer:    deps.Import,
		dashboard:   deps.Dashboard,
		auth:        deps.Auth,
		health:      deps.Health,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:    security.NewDetector(),
	}
	s.metrics.started = time.Now()
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	s.routes(router)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", s.detector.ExtractClientIP(r), "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})

	var handler http.Handler = router
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = applog.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, req)
		})).Methods(http.MethodGet)
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogoutForm).Methods(http.MethodPost)
	r.HandleFunc("/", s.requirePage(s.handleIndex)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(handleNotFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	api.Use(security.NoStore)

	api.HandleFunc("/auth", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth", s.handleAuthStatus).Methods(http.MethodGet)
	api.HandleFunc("/auth", s.handleLogout).Methods(http.MethodDelete)
	api.HandleFunc("/authenticate", s.handleAuthenticate).Methods(http.MethodPost)

	api.HandleFunc("/assets", s.requireAPI(s.handleListAssets)).Methods(http.MethodGet)
	api.HandleFunc("/assets", s.requireAPI(s.handleCreateAsset)).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id:[0-9]+}", s.requireAPI(s.handleUpdateAsset)).Methods(http.MethodPut)
	api.HandleFunc("/assets/{id:[0-9]+}", s.requireAPI(s.handleDeleteAsset)).Methods(http.MethodDelete)

	api.HandleFunc("/asset-categories", s.requireAPI(s.handleListCategories)).Methods(http.MethodGet)
	api.HandleFunc("/asset-categories", s.requireAPI(s.handleUpsertCategory)).Methods(http.MethodPost)

	api.HandleFunc("/spending", s.requireAPI(s.handleListSpending)).Methods(http.MethodGet)
	api.HandleFunc("/spending", s.requireAPI(s.handleCreateSpending)).Methods(http.MethodPost)
	api.HandleFunc("/spending/upload-csv", s.requireAPI(s.handleUploadCSV)).Methods(http.MethodPost)
	api.HandleFunc("/spending/{id:[0-9]+}", s.requireAPI(s.handleUpdateSpending)).Methods(http.MethodPut)
	api.HandleFunc("/spending/{id:[0-9]+}", s.requireAPI(s.handleDeleteSpending)).Methods(http.MethodDelete)
	api.HandleFunc("/spending/{id:[0-9]+}/transactions", s.requireAPI(s.handleListTransactions)).Methods(http.MethodGet)

	api.HandleFunc("/revenue", s.requireAPI(s.handleListRevenue)).Methods(http.MethodGet)
	api.HandleFunc("/revenue", s.requireAPI(s.handleCreateRevenue)).Methods(http.MethodPost)
	api.HandleFunc("/revenue/{id:[0-9]+}", s.requireAPI(s.handleUpdateRevenue)).Methods(http.MethodPut)
	api.HandleFunc("/revenue/{id:[0-9]+}", s.requireAPI(s.handleDeleteRevenue)).Methods(http.MethodDelete)

	api.HandleFunc("/financial-data", s.requireAPI(s.handleFinancialData)).Methods(http.MethodGet)
	api.HandleFunc("/financial-data/forcast", s.requireAPI(s.handleFinancialData)).Methods(http.MethodGet)
	api.HandleFunc("/financial-data/forecast", s.requireAPI(s.handleForecast)).Methods(http.MethodPost)
	api.HandleFunc("/financial-data/export.xlsx", s.requireAPI(s.handleExport)).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/statistics", s.requireAPI(s.handleStatistics)).Methods(http.MethodGet)

	// Registered last: a known path with an unsupported method answers 405
	// without depending on the router's method-mismatch tracking.
	for _, path := range apiPaths {
		api.HandleFunc(path, handleMethodNotAllowed)
	}
}

// apiPaths lists every /api route template.
var apiPaths = []string{
	"/auth",
	"/authenticate",
	"/assets",
	"/assets/{id:[0-9]+}",
	"/asset-categories",
	"/spending",
	"/spending/upload-csv",
	"/spending/{id:[0-9]+}",
	"/spending/{id:[0-9]+}/transactions",
	"/revenue",
	"/revenue/{id:[0-9]+}",
	"/financial-data",
	"/financial-data/forcast",
	"/financial-data/forecast",
	"/financial-data/export.xlsx",
	"/statistics",
}

// requireAPI answers 401 to requests without a valid session.
func (s *Server) requireAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || !s.auth.Authenticated(r) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next(w, r)
	}
}

// requirePage sends unauthenticated page requests to the login form.
func (s *Server) requirePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || !s.auth.Authenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// Shutdown stops the rate limiter and drains the HTTP server. It is safe
// to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethod)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady pings the ledger store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"ledger": "ok", "templates": "ok"}
	status, code := "ready", http.StatusOK

	if s.health == nil {
		checks["ledger"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.health.Ping(ctx); err != nil {
		checks["ledger"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	tm := s.tracer.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	sec := s.detector.GetMetrics()

	metric := func(name, kind, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tm.TotalRequests)
	metric("http_server_errors_total", "counter", "Requests answered with a 5xx status", tm.ServerErrors)
	metric("ledger_writes_total", "counter", "Successful ledger create, update and delete requests", s.metrics.ledgerWrite.Load())
	metric("csv_imports_total", "counter", "Successful CSV spending imports", s.metrics.imports.Load())
	metric("forecasts_total", "counter", "Forecast reports computed", s.metrics.forecasts.Load())
	metric("login_failures_total", "counter", "Rejected dashboard passwords", s.metrics.loginFailed.Load())
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rl.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Clients tracked by the rate limiter", rl.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests flagged as suspicious", sec.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Seconds since the server started", int64(time.Since(s.metrics.started).Seconds()))
}

var templateFuncs = template.FuncMap{
	"dollars": core.FormatDollars,
	"months": func(p *float64) string {
		if p == nil {
			return "∞"
		}
		return fmt.Sprintf("%.1f", *p)
	},
	"percent": func(p *float64) string {
		if p == nil {
			return "n/a"
		}
		return fmt.Sprintf("%+.1f%%", *p)
	},
}
