// Package handlers serves the console's screens. Every screen reads
// fresh data from the upstream clinic API on each request and every
// mutation is post-redirect-get, so the visible list always reflects
// the last successful write.
package handlers

import (
	"errors"
	"net/http"

	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/http/middleware"
	"github.com/sistemacitas/consola/internal/session"
	"github.com/sistemacitas/consola/pkg/logging"
)

// Console bundles the dependencies shared by all screens.
type Console struct {
	api          *clinicapi.Client
	sessions     *session.Store
	renderer     *Renderer
	logger       *logging.Logger
	cookieName   string
	cookieSecure bool
}

// Option configures the Console.
type Option func(*Console)

// WithCookie overrides the session cookie name and secure flag.
func WithCookie(name string, secure bool) Option {
	return func(c *Console) {
		c.cookieName = name
		c.cookieSecure = secure
	}
}

// NewConsole creates the screen handlers.
func NewConsole(api *clinicapi.Client, sessions *session.Store, logger *logging.Logger, opts ...Option) *Console {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Console{
		api:        api,
		sessions:   sessions,
		renderer:   NewRenderer(),
		logger:     logger,
		cookieName: "consola_session",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Console) expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSession drops the server-side session and the cookie.
func (c *Console) clearSession(w http.ResponseWriter, r *http.Request) {
	if sid := middleware.SessionID(r.Context()); sid != "" {
		if err := c.sessions.Clear(r.Context(), sid); err != nil {
			c.logger.Error("failed to clear session", "error", err)
		}
	}
	c.expireSessionCookie(w)
}

// failUpstream handles a failed clinic API call. A 401 means the
// token went stale: the session is cleared and the user lands on the
// login screen instead of a dead error page. Anything else becomes a
// flash message on fallbackPath; there is no automatic retry.
func (c *Console) failUpstream(w http.ResponseWriter, r *http.Request, err error, message, loginPath, fallbackPath string) {
	if errors.Is(err, clinicapi.ErrUnauthorized) {
		c.logger.Warn("upstream rejected session token", "path", r.URL.Path)
		c.clearSession(w, r)
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	c.logger.Error("upstream call failed", "path", r.URL.Path, "error", err)
	setFlash(w, flashError, message)
	http.Redirect(w, r, fallbackPath, http.StatusSeeOther)
}
