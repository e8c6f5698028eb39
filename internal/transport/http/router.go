package http

import (
	"net/http"
	"time"

	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"github.com/IgorGrieder/slugs/internal/processing/ratelimit"
	"github.com/IgorGrieder/slugs/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

var spanNames = map[string]string{
	"GET /health":            "health",
	"GET /metrics":           "metrics",
	"POST /api/shorten":      "links.shorten",
	"POST /api/links":        "links.create",
	"GET /api/links":         "links.list",
	"GET /api/links/stats":   "links.stats",
	"DELETE /api/links/{id}": "links.delete",
	"POST /api/keys":         "apikeys.create",
	"GET /api/keys":          "apikeys.list",
	"DELETE /api/keys/{id}":  "apikeys.revoke",
	"GET /{slug}":            "links.redirect",
}

type Dependencies struct {
	Links   *links.Service
	APIKeys *apikeys.Authority
	Limiter middleware.RateChecker
	Checks  []HealthCheck
}

type RouterOptions struct {
	ServiceName string

	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
	CORSOrigins   []string

	Policies           middleware.Policies
	TrustProxyHeaders  bool
	RateLimitTimeout   time.Duration
	StoreTimeout       time.Duration
	HealthCheckTimeout time.Duration

	LinksHandlerOptions LinksHandlerOptions
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		ServiceName:   "slugs",
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
		Policies: middleware.Policies{
			Authenticated: ratelimit.Policy{Max: 100, Window: 10 * time.Minute},
			Anonymous:     ratelimit.Policy{Max: 10, Window: 10 * time.Minute},
		},
		RateLimitTimeout:   200 * time.Millisecond,
		StoreTimeout:       3 * time.Second,
		HealthCheckTimeout: 2 * time.Second,
		LinksHandlerOptions: LinksHandlerOptions{
			RedirectStatus: http.StatusFound,
		},
	}
}

func NewRouter(deps Dependencies, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(opts.HealthCheckTimeout, deps.Checks...)
	linksHandler := NewLinksHandler(deps.Links, deps.APIKeys, opts.LinksHandlerOptions)
	keysHandler := NewKeysHandler(deps.APIKeys, opts.LinksHandlerOptions.MaxBodyBytes)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	// Store calls made while serving a route share one deadline.
	storeTimeout := middleware.RequestTimeout(opts.StoreTimeout)
	handle := func(pattern string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
		mux.Handle(pattern, middleware.Chain(h, append([]func(http.Handler) http.Handler{storeTimeout}, mws...)...))
	}

	shortenLimit := middleware.RateLimitMiddleware(deps.Limiter,
		middleware.ShortenRule(opts.Policies, opts.TrustProxyHeaders), opts.RateLimitTimeout)
	userLimit := middleware.RateLimitMiddleware(deps.Limiter,
		middleware.UserRule(opts.Policies.Authenticated), opts.RateLimitTimeout)

	handle("POST /api/shorten", linksHandler.Shorten, shortenLimit)

	// Dashboard routes. RequirePrincipal must run before the per-user limiter.
	handle("POST /api/links", linksHandler.Create, middleware.RequirePrincipal, userLimit)
	handle("GET /api/links", linksHandler.List, middleware.RequirePrincipal)
	handle("GET /api/links/stats", linksHandler.Stats, middleware.RequirePrincipal)
	handle("DELETE /api/links/{id}", linksHandler.Delete, middleware.RequirePrincipal)

	handle("POST /api/keys", keysHandler.Create, middleware.RequirePrincipal)
	handle("GET /api/keys", keysHandler.List, middleware.RequirePrincipal)
	handle("DELETE /api/keys/{id}", keysHandler.Revoke, middleware.RequirePrincipal)

	handle("GET /{slug}", linksHandler.Redirect)

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(opts.CORSOrigins)(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "slugs"
	}

	return otelhttp.NewHandler(nameSpans(innerHandler), serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}

// nameSpans renames the server span once the mux has matched a route.
// Raw paths are not used as span names because every slug is distinct.
func nameSpans(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		span := trace.SpanFromContext(r.Context())
		if name, ok := spanNames[r.Pattern]; ok {
			span.SetName(name)
		} else if r.Pattern != "" {
			span.SetName(r.Pattern)
		}
	})
}
