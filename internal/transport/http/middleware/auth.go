package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-api-checkin/internal/domain"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// TokenResolver looks up the user behind an opaque token and keeps the
// token alive while it is in use.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*domain.SafeUser, error)
	Touch(ctx context.Context, token string) error
}

// Auth returns middleware that resolves the request's token, restarts its
// TTL and injects the cached user into the context. The Authorization
// header may carry the bare token or "Bearer <token>".
func Auth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}
			u, err := resolver.Resolve(r.Context(), token)
			if err == nil {
				err = resolver.Touch(r.Context(), token)
			}
			if err != nil {
				if errors.Is(err, domain.ErrUnavailable) {
					slog.ErrorContext(r.Context(), "token lookup failed", "err", err)
					writeJSONError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user injected by Auth.
func UserFromContext(ctx context.Context) (*domain.SafeUser, bool) {
	u, ok := ctx.Value(UserKey).(*domain.SafeUser)
	return u, ok && u != nil
}

// TokenFromContext returns the token the request authenticated with.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(TokenKey).(string)
	return t, ok && t != ""
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		h = strings.TrimSpace(h[7:])
	}
	return h
}
