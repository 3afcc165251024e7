package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/http/middleware"
)

const ownerLoginPath = "/owner/login"

type ownerDashboardView struct {
	UserName string
	Flash    *Flash
	Accounts int
	Patients int
	Citas    int
}

// OwnerDashboard summarizes the whole system for the owner. It is
// the fallback screen for the owner area, so failures render here
// with a flash instead of redirecting.
func (c *Console) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	view := ownerDashboardView{UserName: sess.UserName}
	err := func() error {
		accounts, err := c.api.ListAccounts(r.Context(), sess.Token)
		if err != nil {
			return err
		}
		patients, err := c.api.OwnerPatients(r.Context(), sess.Token)
		if err != nil {
			return err
		}
		citas, err := c.api.OwnerAppointments(r.Context(), sess.Token)
		if err != nil {
			return err
		}
		view.Accounts = len(accounts)
		view.Patients = len(patients)
		view.Citas = len(citas)
		return nil
	}()
	if err != nil {
		if errors.Is(err, clinicapi.ErrUnauthorized) {
			c.clearSession(w, r)
			http.Redirect(w, r, ownerLoginPath, http.StatusSeeOther)
			return
		}
		c.logger.Error("upstream call failed", "path", r.URL.Path, "error", err)
		view.Flash = &Flash{Severity: flashError, Message: "No se pudieron cargar los datos."}
		c.render(w, r, "owner_dashboard.html", view)
		return
	}

	view.Flash = popFlash(w, r)
	c.render(w, r, "owner_dashboard.html", view)
}

type ownerAccountsView struct {
	UserName string
	Flash    *Flash
	Accounts []clinicapi.Account
}

// OwnerAccounts lists the provider accounts.
func (c *Console) OwnerAccounts(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	accounts, err := c.api.ListAccounts(r.Context(), sess.Token)
	if err != nil {
		c.failUpstream(w, r, err, "No se pudieron cargar los clientes.", ownerLoginPath, "/owner/dashboard")
		return
	}
	c.render(w, r, "owner_accounts.html", ownerAccountsView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Accounts: accounts,
	})
}

type ownerAccountFormView struct {
	UserName string
	Flash    *Flash
	Title    string
	Action   string
	Editing  bool
	Input    clinicapi.AccountInput
}

// NewAccountPage renders the empty account form.
func (c *Console) NewAccountPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	c.render(w, r, "owner_account_form.html", ownerAccountFormView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Title:    "Crear Cliente",
		Action:   "/owner/clientes/create",
	})
}

// CreateAccount registers a provider account and returns to the list,
// which refetches on the follow-up GET.
func (c *Console) CreateAccount(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	in := accountInputFromForm(r)
	if _, err := c.api.CreateAccount(r.Context(), sess.Token, in); err != nil {
		c.failUpstream(w, r, err, "No se pudo crear el cliente.", ownerLoginPath, "/owner/clientes/create")
		return
	}

	setFlash(w, flashSuccess, "Cliente creado correctamente")
	http.Redirect(w, r, "/owner/clientes", http.StatusSeeOther)
}

// EditAccountPage loads an account into the form. The password field
// always starts blank; leaving it blank on submit keeps the current
// one.
func (c *Console) EditAccountPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	account, err := c.api.GetAccount(r.Context(), sess.Token, id)
	if err != nil {
		c.failUpstream(w, r, err, "No se pudieron cargar los clientes.", ownerLoginPath, "/owner/clientes")
		return
	}

	c.render(w, r, "owner_account_form.html", ownerAccountFormView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Title:    "Editar Cliente",
		Action:   "/owner/clientes/edit/" + strconv.FormatInt(id, 10),
		Editing:  true,
		Input: clinicapi.AccountInput{
			Nombre:    account.Nombre,
			Direccion: account.Direccion,
			Telefono:  account.Telefono,
			Profesion: account.Profesion,
		},
	})
}

// EditAccount updates a provider account.
func (c *Console) EditAccount(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	in := accountInputFromForm(r)
	if _, err := c.api.UpdateAccount(r.Context(), sess.Token, id, in); err != nil {
		c.failUpstream(w, r, err, "No se pudo actualizar el cliente.", ownerLoginPath, "/owner/clientes")
		return
	}

	setFlash(w, flashSuccess, "Cliente actualizado correctamente")
	http.Redirect(w, r, "/owner/clientes", http.StatusSeeOther)
}

// DeleteAccount removes a provider account.
func (c *Console) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := c.api.DeleteAccount(r.Context(), sess.Token, id); err != nil {
		c.failUpstream(w, r, err, "No se pudo eliminar el cliente.", ownerLoginPath, "/owner/clientes")
		return
	}

	setFlash(w, flashSuccess, "Cliente eliminado correctamente")
	http.Redirect(w, r, "/owner/clientes", http.StatusSeeOther)
}

type ownerPatientsView struct {
	UserName string
	Flash    *Flash
	Patients []clinicapi.Patient
}

// OwnerPatients lists every patient across all providers.
func (c *Console) OwnerPatients(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	patients, err := c.api.OwnerPatients(r.Context(), sess.Token)
	if err != nil {
		c.failUpstream(w, r, err, "No se pudieron cargar los pacientes.", ownerLoginPath, "/owner/dashboard")
		return
	}
	c.render(w, r, "owner_patients.html", ownerPatientsView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Patients: patients,
	})
}

type ownerCitasView struct {
	UserName string
	Flash    *Flash
	Citas    []clinicapi.Appointment
}

// OwnerCitas lists every cita across all providers.
func (c *Console) OwnerCitas(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	citas, err := c.api.OwnerAppointments(r.Context(), sess.Token)
	if err != nil {
		c.failUpstream(w, r, err, "No se pudieron cargar las citas.", ownerLoginPath, "/owner/dashboard")
		return
	}
	c.render(w, r, "owner_citas.html", ownerCitasView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Citas:    citas,
	})
}

func accountInputFromForm(r *http.Request) clinicapi.AccountInput {
	return clinicapi.AccountInput{
		Nombre:    strings.TrimSpace(r.PostFormValue("nombre")),
		Password:  r.PostFormValue("password"),
		Direccion: strings.TrimSpace(r.PostFormValue("direccion")),
		Telefono:  strings.TrimSpace(r.PostFormValue("telefono")),
		Profesion: strings.TrimSpace(r.PostFormValue("profesion")),
	}
}
