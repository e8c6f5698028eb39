package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/IgorGrieder/slugs/pkg/breaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/IgorGrieder/slugs/internal/processing/ratelimit")

const keyPrefix = "rate-limit:"

var errNoPrimary = errors.New("no shared rate limit store configured")

// Policy allows Max requests per fixed Window.
type Policy struct {
	Max    int64
	Window time.Duration
}

type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Store increments the counter for key, creating it with a TTL of window
// when absent. It returns the post-increment count and the remaining TTL;
// a non-positive ttl means the store could not report one.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type Options struct {
	// StoreTimeout bounds each call to the primary store.
	StoreTimeout time.Duration
	// InstanceID tags degradation logs.
	InstanceID string
}

// Limiter counts requests in a shared primary store and degrades to an
// in-process fallback when the primary is unavailable. Counts held by the
// fallback are per instance, so the effective limit is looser while
// degraded.
type Limiter struct {
	primary      Store
	fallback     Store
	breaker      *breaker.Breaker
	storeTimeout time.Duration
	instanceID   string
	now          func() time.Time
}

// NewLimiter wires a limiter. primary may be nil, in which case every check
// goes to fallback; breaker may be nil to always try the primary.
func NewLimiter(primary, fallback Store, cb *breaker.Breaker, opts Options) *Limiter {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 200 * time.Millisecond
	}
	return &Limiter{
		primary:      primary,
		fallback:     fallback,
		breaker:      cb,
		storeTimeout: opts.StoreTimeout,
		instanceID:   opts.InstanceID,
		now:          time.Now,
	}
}

// Check counts one request for identity against p. It never returns an
// error: if both stores fail the request is allowed.
func (l *Limiter) Check(ctx context.Context, identity string, p Policy) Result {
	if identity == "" {
		identity = "unknown"
	}
	key := keyPrefix + identity
	now := l.now()

	ctx, span := tracer.Start(ctx, "ratelimit.Check")
	defer span.End()

	count, ttl, err := l.incrementPrimary(ctx, key, p.Window)
	span.SetAttributes(attribute.Bool("ratelimit.degraded", err != nil))
	if err != nil {
		count, ttl, err = l.fallback.Increment(ctx, key, p.Window)
		if err != nil {
			checksTotal.WithLabelValues("failed_open").Inc()
			logger.Error("rate limit stores unavailable, allowing request",
				zap.Error(err),
				zap.String("identity", identity),
			)
			return Result{Allowed: true, Limit: p.Max, Remaining: p.Max, ResetAt: now.Add(p.Window)}
		}
	}

	res := buildResult(count, ttl, now, p)
	span.SetAttributes(
		attribute.Bool("ratelimit.allowed", res.Allowed),
		attribute.Int64("ratelimit.remaining", res.Remaining),
	)
	return res
}

func (l *Limiter) incrementPrimary(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if l.primary == nil {
		return 0, 0, errNoPrimary
	}
	if l.breaker != nil {
		if err := l.breaker.Allow(); err != nil {
			fallbackTotal.WithLabelValues("breaker_open").Inc()
			return 0, 0, err
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	count, ttl, err := l.primary.Increment(storeCtx, key, window)
	if err != nil {
		if l.breaker != nil {
			l.breaker.OnFailure()
		}
		fallbackTotal.WithLabelValues("store_error").Inc()
		logger.Warn("shared rate limit store failed, using in-process counter",
			zap.Error(err),
			zap.String("key", key),
			zap.String("instance_id", l.instanceID),
		)
		return 0, 0, err
	}
	if l.breaker != nil {
		l.breaker.OnSuccess()
	}
	return count, ttl, nil
}

func buildResult(count int64, ttl time.Duration, now time.Time, p Policy) Result {
	resetAt := now.Add(p.Window)
	if ttl > 0 {
		resetAt = now.Add(ttl)
	}

	allowed := count <= p.Max
	if allowed {
		checksTotal.WithLabelValues("allowed").Inc()
	} else {
		checksTotal.WithLabelValues("denied").Inc()
	}

	return Result{
		Allowed:   allowed,
		Limit:     p.Max,
		Remaining: max(0, p.Max-count),
		ResetAt:   resetAt,
	}
}
