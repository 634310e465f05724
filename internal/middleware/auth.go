package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/task-tracker/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity returns the authenticated session payload from the request
// context, or nil when the request is anonymous.
func Identity(ctx context.Context) *session.Payload {
	p, _ := ctx.Value(identityKey).(*session.Payload)
	return p
}

// SessionToken returns the raw session cookie value, or "".
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth validates the session cookie and injects the identity into the
// request context. Missing, unknown and expired sessions all get the same
// 401 body.
func RequireAuth(sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			identity, err := sessions.Get(r.Context(), token)
			if err != nil || identity == nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the identity when a valid session is present but
// never rejects the request. Used by /auth/me.
func OptionalAuth(sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := SessionToken(r); token != "" {
				if identity, err := sessions.Get(r.Context(), token); err == nil && identity != nil {
					r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Unauthorized"}`))
}
