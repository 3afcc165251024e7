package handlers

import (
	"errors"
	"net/http"

	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/http/middleware"
	"github.com/sistemacitas/consola/internal/session"
)

type loginView struct {
	Title     string
	Action    string
	Flash     *Flash
	ErrorMsg  string
	UserName  string
	OwnerArea bool
}

// LoginPage renders the cliente login screen. An already-authenticated
// session skips straight to its home route.
func (c *Console) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok && sess.IsAuthenticated() {
		http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
		return
	}
	c.render(w, r, "login.html", loginView{
		Title:  "Iniciar Sesión",
		Action: "/login",
		Flash:  popFlash(w, r),
	})
}

// Login handles the cliente credential form.
func (c *Console) Login(w http.ResponseWriter, r *http.Request) {
	c.login(w, r, session.RoleCliente)
}

// OwnerLoginPage renders the owner login screen.
func (c *Console) OwnerLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok && sess.IsAuthenticated() {
		http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
		return
	}
	c.render(w, r, "login.html", loginView{
		Title:     "Acceso Propietario",
		Action:    "/owner/login",
		Flash:     popFlash(w, r),
		OwnerArea: true,
	})
}

// OwnerLogin handles the owner credential form.
func (c *Console) OwnerLogin(w http.ResponseWriter, r *http.Request) {
	c.login(w, r, session.RoleOwner)
}

// login exchanges credentials for an upstream token and opens a
// server-side session with the role of the area being entered.
func (c *Console) login(w http.ResponseWriter, r *http.Request, role string) {
	nombre := r.PostFormValue("nombre")
	password := r.PostFormValue("password")

	view := loginView{
		Title:     "Iniciar Sesión",
		Action:    "/login",
		UserName:  nombre,
		OwnerArea: role == session.RoleOwner,
	}
	if view.OwnerArea {
		view.Title = "Acceso Propietario"
		view.Action = "/owner/login"
	}

	tok, err := c.api.Login(r.Context(), nombre, password)
	if err != nil {
		if errors.Is(err, clinicapi.ErrUnauthorized) {
			view.ErrorMsg = "Credenciales incorrectas"
			w.WriteHeader(http.StatusUnauthorized)
			c.render(w, r, "login.html", view)
			return
		}
		c.logger.Error("login call failed", "error", err)
		view.ErrorMsg = "No se pudo iniciar sesión. Intenta de nuevo."
		w.WriteHeader(http.StatusBadGateway)
		c.render(w, r, "login.html", view)
		return
	}

	sess := session.Session{Token: tok, UserName: nombre, Role: role}
	sid := session.NewID()
	if err := c.sessions.Set(r.Context(), sid, sess); err != nil {
		c.logger.Error("failed to persist session", "error", err)
		view.ErrorMsg = "No se pudo iniciar sesión. Intenta de nuevo."
		w.WriteHeader(http.StatusInternalServerError)
		c.render(w, r, "login.html", view)
		return
	}

	c.setSessionCookie(w, sid)
	setFlash(w, flashSuccess, "Inicio de sesión exitoso")
	http.Redirect(w, r, sess.HomePath(), http.StatusSeeOther)
}

// Logout closes the session and returns to the cliente login.
func (c *Console) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	c.clearSession(w, r)
	http.Redirect(w, r, sess.LoginPath(), http.StatusSeeOther)
}
