package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "programscheduler/internal/delivery/http/helpers"
	"programscheduler/internal/domain"
)

type contextKey string

const accessKey contextKey = "access"

// WithAccess returns a context carrying the caller's access scope. Used by auth middleware.
func WithAccess(ctx context.Context, access domain.AccessContext) context.Context {
	return context.WithValue(ctx, accessKey, access)
}

// AccessFromContext returns the authenticated caller's access scope, if present.
func AccessFromContext(ctx context.Context) (domain.AccessContext, bool) {
	access, ok := ctx.Value(accessKey).(domain.AccessContext)
	return access, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and stores the
// caller's AccessContext in the request context. If the token is missing or
// invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			access, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(WithAccess(r.Context(), access)))
		}
	}
}
