package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/http/middleware"
	"github.com/sistemacitas/consola/internal/validate"
)

const patientsPerPage = 6

type patientsView struct {
	UserName   string
	Flash      *Flash
	Query      string
	Patients   []clinicapi.Patient
	Page       int
	TotalPages int
	PrevPage   int
	NextPage   int
}

// Patients renders the cliente home: the patient list, filtered by
// the q parameter, ordered by each patient's next cita and paginated.
func (c *Console) Patients(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	patients, err := c.api.ListPatients(r.Context(), sess.Token)
	if err != nil {
		if errors.Is(err, clinicapi.ErrUnauthorized) {
			c.clearSession(w, r)
			http.Redirect(w, r, sess.LoginPath(), http.StatusSeeOther)
			return
		}
		// Render the screen with the error rather than redirecting;
		// this is the fallback target for other failures, so a
		// redirect here could loop.
		c.logger.Error("upstream call failed", "path", r.URL.Path, "error", err)
		c.render(w, r, "patients.html", patientsView{
			UserName:   sess.UserName,
			Flash:      &Flash{Severity: flashError, Message: "No se pudieron cargar los pacientes."},
			Page:       1,
			TotalPages: 1,
		})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		filtered := patients[:0]
		needle := strings.ToLower(query)
		for _, p := range patients {
			if strings.Contains(strings.ToLower(p.Nombre), needle) {
				filtered = append(filtered, p)
			}
		}
		patients = filtered
	}

	// Patients with an upcoming cita first, soonest first; patients
	// without any parseable cita keep their relative order at the end.
	sort.SliceStable(patients, func(i, j int) bool {
		a, aOK := patients[i].NextAppointment()
		b, bOK := patients[j].NextAppointment()
		if aOK != bOK {
			return aOK
		}
		if !aOK {
			return false
		}
		return a.Before(b)
	})

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	totalPages := (len(patients) + patientsPerPage - 1) / patientsPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * patientsPerPage
	end := start + patientsPerPage
	if end > len(patients) {
		end = len(patients)
	}

	c.render(w, r, "patients.html", patientsView{
		UserName:   sess.UserName,
		Flash:      popFlash(w, r),
		Query:      query,
		Patients:   patients[start:end],
		Page:       page,
		TotalPages: totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	})
}

type patientFormView struct {
	UserName    string
	Flash       *Flash
	Title       string
	Action      string
	Input       clinicapi.PatientInput
	FieldErrors validate.FieldErrors
}

// NewPatientPage renders the empty registration form.
func (c *Console) NewPatientPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	c.render(w, r, "patient_form.html", patientFormView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Title:    "Agregar Paciente",
		Action:   "/agregar-paciente",
	})
}

// CreatePatient validates the form and registers the patient. All
// field violations are reported together and nothing reaches the
// upstream until the form is clean.
func (c *Console) CreatePatient(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	in := clinicapi.PatientInput{
		Nombre:   strings.TrimSpace(r.PostFormValue("nombre")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Telefono: strings.TrimSpace(r.PostFormValue("telefono")),
	}

	if fieldErrs := validate.Patient(in); fieldErrs.Any() {
		w.WriteHeader(http.StatusUnprocessableEntity)
		c.render(w, r, "patient_form.html", patientFormView{
			UserName:    sess.UserName,
			Flash:       &Flash{Severity: flashError, Message: "Corrige los campos marcados en rojo."},
			Title:       "Agregar Paciente",
			Action:      "/agregar-paciente",
			Input:       in,
			FieldErrors: fieldErrs,
		})
		return
	}

	if _, err := c.api.CreatePatient(r.Context(), sess.Token, in); err != nil {
		c.failUpstream(w, r, err, "Hubo un problema al agregar el paciente", sess.LoginPath(), "/agregar-paciente")
		return
	}

	setFlash(w, flashSuccess, "Paciente agregado exitosamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditPatientPage loads the patient into the edit form.
func (c *Console) EditPatientPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patient, err := c.api.GetPatient(r.Context(), sess.Token, id)
	if err != nil {
		c.failUpstream(w, r, err, "No se pudieron cargar los pacientes.", sess.LoginPath(), "/")
		return
	}

	c.render(w, r, "patient_form.html", patientFormView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Title:    "Editar Paciente",
		Action:   "/editar-paciente/" + strconv.FormatInt(id, 10),
		Input: clinicapi.PatientInput{
			Nombre:   patient.Nombre,
			Email:    patient.Email,
			Telefono: patient.Telefono,
		},
	})
}

// EditPatient submits the edited fields as-is. Field validation only
// gates registration; edits go straight to the upstream.
func (c *Console) EditPatient(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	in := clinicapi.PatientInput{
		Nombre:   strings.TrimSpace(r.PostFormValue("nombre")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Telefono: strings.TrimSpace(r.PostFormValue("telefono")),
	}

	if _, err := c.api.UpdatePatient(r.Context(), sess.Token, id, in); err != nil {
		c.failUpstream(w, r, err, "No se pudo actualizar el paciente.", sess.LoginPath(), "/")
		return
	}

	setFlash(w, flashSuccess, "Paciente actualizado correctamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeletePatient removes the patient and returns to the list, which
// refetches from the upstream on the follow-up GET.
func (c *Console) DeletePatient(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := c.api.DeletePatient(r.Context(), sess.Token, id); err != nil {
		c.failUpstream(w, r, err, "No se pudo eliminar el paciente.", sess.LoginPath(), "/")
		return
	}

	setFlash(w, flashSuccess, "Paciente eliminado correctamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type historyView struct {
	UserName string
	Flash    *Flash
	Patient  *clinicapi.Patient
	Citas    []clinicapi.Appointment
	Attended int
	Missed   int
	Pending  int
}

// History renders every cita the patient has had, with an attendance
// tally. Citas without a recorded asistencia count as pending.
func (c *Console) History(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patient, err := c.api.GetPatient(r.Context(), sess.Token, id)
	if err != nil {
		c.failUpstream(w, r, err, "Error al obtener historial de citas", sess.LoginPath(), "/")
		return
	}
	citas, err := c.api.AppointmentHistory(r.Context(), sess.Token, id)
	if err != nil {
		c.failUpstream(w, r, err, "Error al obtener historial de citas", sess.LoginPath(), "/")
		return
	}

	view := historyView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Patient:  patient,
		Citas:    citas,
	}
	for _, cita := range citas {
		switch {
		case cita.Asistio == nil:
			view.Pending++
		case *cita.Asistio:
			view.Attended++
		default:
			view.Missed++
		}
	}
	c.render(w, r, "history.html", view)
}

// pathID parses the {id} route parameter. Unparseable IDs can only
// come from a hand-edited URL, so they get a plain 404.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
