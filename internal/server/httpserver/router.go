// Package httpserver provides the HTTP/HTTPS server for issuemesh.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/yndnr/issuemesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/issuemesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Issues serves the read-only API and the readiness check.
	Issues handler.IssueReader

	// WebSocket handles observer connections on /ws and on / upgrades.
	WebSocket http.Handler

	// Metrics is exposed on MetricsPath when set.
	Metrics     *metric.Registry
	MetricsPath string

	// StaticDir, when set, is served on / for plain (non-upgrade) requests.
	StaticDir string

	// Logger for request logging.
	Logger *slog.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP rate for the API and connection attempts
	// (requests/second). Zero disables it.
	RateLimit float64
	RateBurst int

	// TrustProxyHeaders takes the client IP from X-Forwarded-For and
	// X-Real-IP. Enable only behind a reverse proxy that sets them.
	TrustProxyHeaders bool

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath: "/metrics",
		EnableAudit: true,
	}
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := handler.New(cfg.Issues, logger)

	clientIP := ClientIP(cfg.TrustProxyHeaders)
	r := mux.NewRouter()

	// Order: Recover -> RequestID -> Audit -> Handler
	r.Use(mux.MiddlewareFunc(Recover(logger)), mux.MiddlewareFunc(RequestID()))
	if cfg.EnableAudit {
		r.Use(mux.MiddlewareFunc(Audit(logger, cfg.Metrics, clientIP)))
	}

	var limited []Middleware
	if cfg.RateLimit > 0 {
		limited = append(limited, RateLimit(cfg.RateLimit, cfg.RateBurst, clientIP))
	}

	// Health endpoints
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(h.Health)
	r.Methods(http.MethodGet).Path("/ready").HandlerFunc(h.Ready)

	// Metrics endpoint
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Methods(http.MethodGet).Path(path).Handler(cfg.Metrics.Handler())
	}

	// Read-only API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(mux.MiddlewareFunc(CORS(cfg.CORSAllowedOrigins)))
	for _, m := range limited {
		api.Use(mux.MiddlewareFunc(m))
	}
	api.Methods(http.MethodGet, http.MethodOptions).Path("/issues").HandlerFunc(h.ListIssues)
	api.Methods(http.MethodGet, http.MethodOptions).Path("/issues/{id}").HandlerFunc(h.GetIssue)

	// Observer connections
	if cfg.WebSocket != nil {
		ws := Chain(cfg.WebSocket, limited...)
		r.Methods(http.MethodGet).Path("/ws").Handler(ws)
		r.Methods(http.MethodGet).Path("/").MatcherFunc(isUpgrade).Handler(ws)
	}

	// Static assets
	if cfg.StaticDir != "" {
		r.Methods(http.MethodGet, http.MethodHead).PathPrefix("/").
			Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

func isUpgrade(r *http.Request, _ *mux.RouteMatch) bool {
	return websocket.IsWebSocketUpgrade(r)
}
