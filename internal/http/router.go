// Package httpapi wires the HTTP transport (Gin) to the error boundary,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → boundary)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Every failure path (handler errors, panics, NoRoute, NoMethod) exits
//     through the same content-negotiated error boundary
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-responder/internal/config"
	"github.com/tbourn/go-error-responder/internal/domain"
	"github.com/tbourn/go-error-responder/internal/http/handlers"
	"github.com/tbourn/go-error-responder/internal/http/middleware"
	"github.com/tbourn/go-error-responder/internal/httperr"
	"github.com/tbourn/go-error-responder/internal/repo"
)

// journalShim adapts the repository free functions to the handlers.JournalStore
// interface expected by the admin API. This keeps handlers decoupled from the
// concrete repo package while reusing existing functions.
type journalShim struct {
	db *gorm.DB
}

// Count proxies repo.CountEvents.
func (s journalShim) Count(ctx context.Context) (int64, error) {
	return repo.CountEvents(ctx, s.db)
}

// ListPage proxies repo.ListEventsPage.
func (s journalShim) ListPage(ctx context.Context, offset, limit int) ([]domain.ErrorEvent, error) {
	return repo.ListEventsPage(ctx, s.db, offset, limit)
}

// PruneBefore proxies repo.PruneEventsBefore.
func (s journalShim) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return repo.PruneEventsBefore(ctx, s.db, cutoff)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), response
// compression, CORS and security headers, the terminal error boundary, health
// and metrics endpoints, and then mounts the admin journal API under the
// configured prefix.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured request logging
//  4. Gzip compression (outside the boundary so error bodies compress too)
//  5. Error boundary: panics and recorded errors become negotiated responses
//  6. Body size limiter
//  7. Metrics
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Compression; registered before the boundary so negotiated error
	// bodies are written through the same gzip writer as everything else.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 5) Terminal error boundary
	var sink httperr.LogSink = httperr.ZerologSink{}
	if cfg.Errors.LogRPS > 0 {
		sink = httperr.NewThrottledSink(sink, cfg.Errors.LogRPS, cfg.Errors.LogBurst)
	}
	h := httperr.New(httperr.Options{
		LogErrors: cfg.Errors.LogErrors,
		Sink:      sink,
	})
	var record middleware.EventRecorder
	if cfg.Errors.JournalEnabled {
		record = func(ctx context.Context, ev *domain.ErrorEvent) error {
			return repo.CreateEvent(ctx, db, ev)
		}
	}
	r.Use(middleware.ErrorBoundary(middleware.BoundaryOptions{
		Handler:        h,
		DisplayDetails: cfg.Errors.DisplayDetails,
		Record:         record,
	}))

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					hdr := c.Writer.Header()
					hdr.Set("Access-Control-Allow-Origin", origin)
					hdr.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    false,
	}))

	// Fallbacks: route through the boundary so the 404/405 bodies are
	// negotiated like every other error.
	r.NoRoute(func(c *gin.Context) {
		c.Error(httperr.NewHTTPError(http.StatusNotFound, "route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.Error(httperr.NewMethodNotAllowed(allowedMethods(r, c.Request.URL.Path)...))
	})

	// Dependency injection: handlers ← repo/db
	hs := handlers.New(journalShim{db: db})

	// Liveness/health
	r.GET("/health", hs.Health)

	// Admin journal API
	admin := groupWithPrefix(r, cfg.AdminPrefix)
	{
		admin.GET("/errors", hs.ListEvents)
		admin.DELETE("/errors", hs.PruneEvents)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// allowedMethods reports which methods are registered for path, sorted in
// the order routes were registered. Parameterized segments are matched
// loosely by comparing path lengths segment by segment.
func allowedMethods(r *gin.Engine, path string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, ri := range r.Routes() {
		if !routeMatches(ri.Path, path) {
			continue
		}
		if _, ok := seen[ri.Method]; ok {
			continue
		}
		seen[ri.Method] = struct{}{}
		out = append(out, ri.Method)
	}
	return out
}

// routeMatches reports whether a registered route pattern matches a concrete
// request path. Segments starting with ':' match any single segment; '*'
// matches the rest of the path.
func routeMatches(pattern, path string) bool {
	if pattern == path {
		return true
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	rs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(rs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != rs[i] {
			return false
		}
	}
	return len(ps) == len(rs)
}
