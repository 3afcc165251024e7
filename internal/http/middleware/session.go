package middleware

import (
	"context"
	"net/http"

	"github.com/sistemacitas/consola/internal/session"
)

type contextKey string

const (
	sessionCtxKey contextKey = "session"
	sidCtxKey     contextKey = "sid"
)

// LoadSession resolves the session cookie against the store and puts
// the session in the request context. It never blocks rendering on a
// missing session; the guard decides what to do with an absent one.
func LoadSession(store *session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sidCtxKey, cookie.Value)
			sess, err := store.Get(ctx, cookie.Value)
			if err != nil {
				// Expired session or store unreachable: proceed
				// unauthenticated and let the guard redirect.
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, sessionCtxKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the loaded session, if any.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey).(session.Session)
	return sess, ok
}

// SessionID returns the session cookie value seen on this request,
// whether or not it resolved to a live session.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sidCtxKey).(string)
	return sid
}
