package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/processing/ratelimit"
	"github.com/IgorGrieder/slugs/pkg/httputils"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

type RateChecker interface {
	Check(ctx context.Context, identity string, p ratelimit.Policy) ratelimit.Result
}

// RateRule picks the bucket and policy for a request. name labels metrics.
type RateRule func(r *http.Request) (identity string, policy ratelimit.Policy, name string)

// RateLimitBody is the 429 payload: the error envelope plus the window state.
type RateLimitBody struct {
	httputils.APIResponse
	Limit     int64 `json:"limit"`
	Remaining int64 `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// RateLimitMiddleware counts the request before anything else runs. The
// X-RateLimit-* headers are set on every response it lets through and on
// the 429 it writes itself; Reset is Unix milliseconds.
func RateLimitMiddleware(checker RateChecker, rule RateRule, timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, policy, name := rule(r)

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			res := checker.Check(ctx, identity, policy)
			cancel()

			setRateLimitHeaders(w, res)
			if !res.Allowed {
				rateLimitRejections.WithLabelValues(name).Inc()
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(res.ResetAt), 10))
				httputils.WriteJSON(w, http.StatusTooManyRequests, RateLimitBody{
					APIResponse: httputils.NewErrorResponse(r, constants.ErrRateLimited, nil),
					Limit:       res.Limit,
					Remaining:   res.Remaining,
					Reset:       res.ResetAt.UnixMilli(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	h := w.Header()
	h.Set(HeaderRateLimitLimit, strconv.FormatInt(res.Limit, 10))
	h.Set(HeaderRateLimitRemaining, strconv.FormatInt(res.Remaining, 10))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(res.ResetAt.UnixMilli(), 10))
}

func retryAfterSeconds(resetAt time.Time) int64 {
	secs := int64(time.Until(resetAt).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// BearerToken returns the credential from the Authorization header. A value
// without the "Bearer " scheme is taken whole.
func BearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", false
	}
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw, raw != ""
}

// Policies holds the two creation-endpoint policies.
type Policies struct {
	Authenticated ratelimit.Policy
	Anonymous     ratelimit.Policy
}

// ShortenRule buckets bearer callers by the hash of their credential and
// everyone else by client IP. The credential is not validated here.
func ShortenRule(p Policies, trustProxy bool) RateRule {
	return func(r *http.Request) (string, ratelimit.Policy, string) {
		if token, ok := BearerToken(r); ok {
			return "api_key:" + apikeys.HashSecret(token), p.Authenticated, "authenticated"
		}
		return "ip:" + ClientIP(r, trustProxy), p.Anonymous, "anonymous"
	}
}

// UserRule buckets signed-in users by id. It must run after
// RequirePrincipal.
func UserRule(policy ratelimit.Policy) RateRule {
	return func(r *http.Request) (string, ratelimit.Policy, string) {
		userID, _ := Principal(r.Context())
		return "user:" + userID, policy, "user"
	}
}
