package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemacitas/consola/internal/observability/metrics"
	"github.com/sistemacitas/consola/internal/session"
	"github.com/sistemacitas/consola/pkg/logging"
)

const testCookie = "consola_session"

func newGuardedHandler(t *testing.T, requiredRole, loginPath string) (*session.Store, http.Handler) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := session.NewStore(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		time.Hour,
		logging.New("error"),
	)
	m := metrics.NewConsoleMetrics(prometheus.NewRegistry())

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("rendered"))
	})
	h := LoadSession(store, testCookie)(RequireRole(requiredRole, loginPath, m)(inner))
	return store, h
}

func doGuarded(t *testing.T, h http.Handler, sid string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/pacientes", nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sid})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGuardRedirectsWithoutCookie(t *testing.T) {
	_, h := newGuardedHandler(t, session.RoleCliente, "/login")

	w := doGuarded(t, h, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardRedirectsUnknownSession(t *testing.T) {
	_, h := newGuardedHandler(t, session.RoleCliente, "/login")

	w := doGuarded(t, h, "sid-that-never-existed")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGuardOwnerAreaRedirectsToOwnerLogin(t *testing.T) {
	_, h := newGuardedHandler(t, session.RoleOwner, "/owner/login")

	w := doGuarded(t, h, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/owner/login", w.Header().Get("Location"))
}

func TestGuardRoleMatrix(t *testing.T) {
	tests := []struct {
		name         string
		role         string
		requiredRole string
		wantRender   bool
		wantLocation string
	}{
		{"cliente on cliente area", session.RoleCliente, session.RoleCliente, true, ""},
		{"owner on owner area", session.RoleOwner, session.RoleOwner, true, ""},
		{"owner on cliente area", session.RoleOwner, session.RoleCliente, false, "/owner/dashboard"},
		{"cliente on owner area", session.RoleCliente, session.RoleOwner, false, "/"},
		{"no required role, cliente", session.RoleCliente, "", true, ""},
		{"no required role, owner", session.RoleOwner, "", true, ""},
		{"no required role, roleless session", "", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, h := newGuardedHandler(t, tt.requiredRole, "/login")

			sid := session.NewID()
			require.NoError(t, store.Set(context.Background(), sid, session.Session{
				Token: "tok", UserName: "ana", Role: tt.role,
			}))

			w := doGuarded(t, h, sid)
			if tt.wantRender {
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, "rendered", w.Body.String())
			} else {
				assert.Equal(t, http.StatusSeeOther, w.Code)
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
		})
	}
}

func TestGuardIgnoresRoleWithoutToken(t *testing.T) {
	// A session that somehow has a role but no token is still
	// unauthenticated.
	store, h := newGuardedHandler(t, session.RoleCliente, "/login")

	sid := session.NewID()
	require.NoError(t, store.Set(context.Background(), sid, session.Session{UserName: "ana", Role: session.RoleCliente}))

	w := doGuarded(t, h, sid)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionFromContextOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := SessionFromContext(req.Context())
	assert.False(t, ok)
	assert.Empty(t, SessionID(req.Context()))
}
