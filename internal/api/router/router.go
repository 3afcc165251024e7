// Package router wires the console's screens, guards and operational
// endpoints into one chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sistemacitas/consola/internal/http/handlers"
	"github.com/sistemacitas/consola/internal/http/middleware"
	"github.com/sistemacitas/consola/internal/observability/metrics"
	"github.com/sistemacitas/consola/internal/session"
	"github.com/sistemacitas/consola/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	Console        *handlers.Console
	Sessions       *session.Store
	Metrics        *metrics.ConsoleMetrics
	MetricsHandler http.Handler
	CookieName     string
}

// New creates the console router. Every route below the guards runs
// with a loaded session; the guards never consult the upstream.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.LoadSession(cfg.Sessions, cfg.CookieName))

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Get("/login", cfg.Console.LoginPage)
		public.Post("/login", cfg.Console.Login)
		public.Get("/owner/login", cfg.Console.OwnerLoginPage)
		public.Post("/owner/login", cfg.Console.OwnerLogin)
		public.Get("/logout", cfg.Console.Logout)
		public.Get("/session/watch", cfg.Console.WatchSession)
	})

	// Cliente area.
	r.Group(func(cliente chi.Router) {
		cliente.Use(middleware.RequireRole(session.RoleCliente, "/login", cfg.Metrics))

		cliente.Get("/", cfg.Console.Patients)
		cliente.Get("/pacientes", cfg.Console.Patients)
		cliente.Get("/agregar-paciente", cfg.Console.NewPatientPage)
		cliente.Post("/agregar-paciente", cfg.Console.CreatePatient)
		cliente.Get("/editar-paciente/{id}", cfg.Console.EditPatientPage)
		cliente.Post("/editar-paciente/{id}", cfg.Console.EditPatient)
		cliente.Post("/pacientes/{id}/eliminar", cfg.Console.DeletePatient)
		cliente.Get("/pacientes/{id}/historico", cfg.Console.History)
		cliente.Get("/agendar-cita/{id}", cfg.Console.SchedulePage)
		cliente.Post("/agendar-cita/{id}", cfg.Console.ScheduleCita)
		cliente.Post("/citas/{id}/eliminar", cfg.Console.DeleteCita)
		cliente.Post("/citas/{id}/asistencia", cfg.Console.Attendance)
	})

	// Owner area.
	r.Group(func(owner chi.Router) {
		owner.Use(middleware.RequireRole(session.RoleOwner, "/owner/login", cfg.Metrics))

		owner.Get("/owner/dashboard", cfg.Console.OwnerDashboard)
		owner.Get("/owner/clientes", cfg.Console.OwnerAccounts)
		owner.Get("/owner/clientes/create", cfg.Console.NewAccountPage)
		owner.Post("/owner/clientes/create", cfg.Console.CreateAccount)
		owner.Get("/owner/clientes/edit/{id}", cfg.Console.EditAccountPage)
		owner.Post("/owner/clientes/edit/{id}", cfg.Console.EditAccount)
		owner.Post("/owner/clientes/{id}/eliminar", cfg.Console.DeleteAccount)
		owner.Get("/owner/pacientes", cfg.Console.OwnerPatients)
		owner.Get("/owner/citas", cfg.Console.OwnerCitas)
	})

	return r
}
