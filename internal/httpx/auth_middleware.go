package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bookcollect/internal/platform/crypto"
)

// SessionCookie carries the administrator token for browser clients.
const SessionCookie = "admin_session"

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// BearerOrCookieToken returns the session token from the Authorization
// header, falling back to the session cookie.
func BearerOrCookieToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// AdminOnly rejects requests without a valid, unrevoked administrator token.
func AdminOnly(secret string, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerOrCookieToken(r)
			if token == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Требуется вход администратора", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Сессия недействительна", nil)
				return
			}
			adminID, err := claims.AdminID()
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Сессия недействительна", nil)
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					slog.Error("revocation check failed", "request_id", RequestIDFrom(r), "error", err)
				}
				if err != nil || isRevoked {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Сессия недействительна", nil)
					return
				}
			}

			ctx := ContextWithAdmin(r.Context(), adminID, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
