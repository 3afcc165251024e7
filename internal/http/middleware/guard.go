package middleware

import (
	"net/http"

	"github.com/sistemacitas/consola/internal/observability/metrics"
)

// RequireRole gates a route group on the session loaded by
// LoadSession. The decision is made synchronously from storage; the
// upstream server is never consulted here.
//
// Unauthenticated requests redirect to loginPath. An authenticated
// session with the wrong role redirects to its own home route rather
// than an error page, so the guard doesn't leak which routes exist.
// An empty requiredRole degrades to the historical role-less guard:
// any authenticated session passes.
func RequireRole(requiredRole, loginPath string, m *metrics.ConsoleMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.IsAuthenticated() {
				m.ObserveGuardDenied("unauthenticated")
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			if requiredRole != "" && sess.Role != requiredRole {
				m.ObserveGuardDenied("role_mismatch")
				http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
