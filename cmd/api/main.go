package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IgorGrieder/slugs/internal/config"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/IgorGrieder/slugs/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"github.com/IgorGrieder/slugs/internal/processing/ratelimit"
	"github.com/IgorGrieder/slugs/internal/storage"
	"github.com/IgorGrieder/slugs/internal/storage/memory"
	redisStorage "github.com/IgorGrieder/slugs/internal/storage/redis"
	httpTransport "github.com/IgorGrieder/slugs/internal/transport/http"
	"github.com/IgorGrieder/slugs/internal/transport/http/middleware"
	"github.com/IgorGrieder/slugs/pkg/breaker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("instance_id", cfg.App.InstanceID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdownTracer func(context.Context) error
	if cfg.OTel.Enabled {
		shutdownTracer, err = telemetry.InitTracer(ctx, telemetry.Config{
			Endpoint:       cfg.OTel.Endpoint,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			InstanceID:     cfg.App.InstanceID,
		})
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			logger.Info("OpenTelemetry tracer initialized", zap.String("endpoint", cfg.OTel.Endpoint))
		}
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer backend.Close()

	linkSvc := links.NewService(
		backend.Links,
		links.NewURLValidator(cfg.Shortener.BlockedPatterns...),
		links.NewNanoSlugger(),
		links.ServiceOptions{
			SlugLength:   cfg.Shortener.SlugLength,
			AsyncClicks:  cfg.Shortener.AsyncClicks,
			ClickTimeout: cfg.Shortener.ClickTimeout,
		},
	)
	authority := apikeys.NewAuthority(backend.APIKeys)

	checks := []httpTransport.HealthCheck{{Name: backend.Name, Ping: backend.Ping}}

	fallback := memory.NewWindowCounter()
	go fallback.RunSweeper(ctx, cfg.RateLimit.FallbackSweepPeriod)

	var primary ratelimit.Store
	if cfg.Redis.Enabled {
		redisClient := redisStorage.Connect(ctx, redisStorage.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer func() { _ = redisClient.Close() }()

		primary = redisStorage.NewWindowStore(redisClient)
		checks = append(checks, httpTransport.HealthCheck{
			Name:     "redis",
			Ping:     func(ctx context.Context) error { return redisStorage.Ping(ctx, redisClient) },
			Optional: true,
		})
	} else {
		logger.Warn("Redis disabled, rate limits are per instance")
	}

	limiter := ratelimit.NewLimiter(primary, fallback,
		breaker.New("rate-limit-store", cfg.RateLimit.BreakerFailures, cfg.RateLimit.BreakerOpenTimeout, logger.Named("breaker")),
		ratelimit.Options{
			StoreTimeout: cfg.RateLimit.StoreTimeout,
			InstanceID:   cfg.App.InstanceID,
		},
	)

	routerOpts := httpTransport.DefaultRouterOptions()
	routerOpts.ServiceName = cfg.App.Name
	routerOpts.CORSOrigins = cfg.Server.CORSOrigins
	routerOpts.TrustProxyHeaders = cfg.Security.TrustProxyHeaders
	routerOpts.RateLimitTimeout = cfg.RateLimit.StoreTimeout
	routerOpts.StoreTimeout = cfg.Storage.Timeout
	routerOpts.Policies = middleware.Policies{
		Authenticated: ratelimit.Policy{Max: int64(cfg.RateLimit.AuthenticatedMax), Window: cfg.RateLimit.Window},
		Anonymous:     ratelimit.Policy{Max: int64(cfg.RateLimit.AnonymousMax), Window: cfg.RateLimit.Window},
	}
	routerOpts.LinksHandlerOptions = httpTransport.LinksHandlerOptions{
		BaseURL:        cfg.Shortener.BaseURL,
		RedirectStatus: cfg.Shortener.RedirectStatus,
		NotFoundURL:    cfg.Shortener.NotFoundURL,
		MaxBodyBytes:   cfg.Shortener.MaxBodyBytes,
	}

	router := httpTransport.NewRouter(httpTransport.Dependencies{
		Links:   linkSvc,
		APIKeys: authority,
		Limiter: limiter,
		Checks:  checks,
	}, routerOpts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
		if shutdownTracer != nil {
			if err := shutdownTracer(shutdownCtx); err != nil {
				logger.Warn("Tracer shutdown error", zap.Error(err))
			}
		}
	}()

	logger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("storage", backend.Name),
		zap.String("address", fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)),
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
