package handlers

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "consola_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash is a one-shot message surfaced on the next rendered screen.
type Flash struct {
	Severity string
	Message  string
}

// setFlash queues a message for the next GET. The value survives one
// redirect in a cookie; popFlash consumes it.
func setFlash(w http.ResponseWriter, severity, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(severity + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and expires the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	severity, message, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil
	}
	return &Flash{Severity: severity, Message: message}
}

// Renderer renders the console's HTML screens from embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded screen templates. A broken template
// is a programming error, so this panics at startup rather than
// failing per request.
func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"deref": func(b *bool) bool { return b != nil && *b },
	}
	return &Renderer{
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

// Render writes the named screen. Render errors after the header has
// gone out can only be logged by the caller.
func (rd *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("handlers: render %s: %w", name, err)
	}
	return nil
}

func (c *Console) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := c.renderer.Render(w, name, data); err != nil {
		c.logger.Error("render failed", "template", name, "error", err)
	}
}
