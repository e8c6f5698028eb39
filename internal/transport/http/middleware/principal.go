package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/pkg/httputils"
)

// UserIDHeader carries the signed-in user id. It is set by the session
// layer in front of this service and must not be accepted from the open
// internet.
const UserIDHeader = "X-User-Id"

type principalKey struct{}

// RequirePrincipal rejects requests without a user id and stores it on the
// request context for handlers.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			httputils.WriteAPIError(w, r, constants.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), userID)))
	})
}

func WithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// Principal returns the user id stored by RequirePrincipal.
func Principal(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}
