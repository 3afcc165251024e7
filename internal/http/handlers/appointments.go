package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/http/middleware"
	"github.com/sistemacitas/consola/internal/validate"
)

type scheduleView struct {
	UserName string
	Flash    *Flash
	Patient  *clinicapi.Patient
	Input    clinicapi.AppointmentInput
	DateErr  string
}

// SchedulePage renders the cita form for one patient.
func (c *Console) SchedulePage(w http.ResponseWriter, r *http.Request) {
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

	c.render(w, r, "schedule.html", scheduleView{
		UserName: sess.UserName,
		Flash:    popFlash(w, r),
		Patient:  patient,
	})
}

// ScheduleCita creates the cita. The date must fall strictly after
// today; same-day citas are rejected before anything reaches the
// upstream.
func (c *Console) ScheduleCita(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	in := clinicapi.AppointmentInput{
		PacienteID: id,
		Fecha:      strings.TrimSpace(r.PostFormValue("fecha")),
		Hora:       strings.TrimSpace(r.PostFormValue("hora")),
		Notas:      strings.TrimSpace(r.PostFormValue("notas")),
	}

	if err := validate.AppointmentDate(in.Fecha, time.Now()); err != nil {
		msg := "La cita debe ser agendada para un día posterior a hoy."
		if errors.Is(err, validate.ErrBadDate) {
			msg = "Debe seleccionar una fecha válida."
		}
		// Rejected before any upstream call; the form carries the
		// patient's name so the re-render needs no fetch either.
		w.WriteHeader(http.StatusUnprocessableEntity)
		c.render(w, r, "schedule.html", scheduleView{
			UserName: sess.UserName,
			Patient: &clinicapi.Patient{
				ID:     id,
				Nombre: strings.TrimSpace(r.PostFormValue("paciente_nombre")),
			},
			Input:   in,
			DateErr: msg,
		})
		return
	}

	if _, err := c.api.CreateAppointment(r.Context(), sess.Token, in); err != nil {
		c.failUpstream(w, r, err, "No se pudo agendar la cita.", sess.LoginPath(), "/agendar-cita/"+strconv.FormatInt(id, 10))
		return
	}

	setFlash(w, flashSuccess, "Cita agendada exitosamente")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteCita cancels a cita. The motivo is mandatory; the upstream
// relays it to the patient.
func (c *Console) DeleteCita(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	motivo := strings.TrimSpace(r.PostFormValue("motivo"))
	if motivo == "" {
		setFlash(w, flashError, "Debes indicar el motivo de la eliminación.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := c.api.DeleteAppointment(r.Context(), sess.Token, id, motivo); err != nil {
		c.failUpstream(w, r, err, "No se pudo eliminar la cita.", sess.LoginPath(), "/")
		return
	}

	setFlash(w, flashSuccess, "Cita eliminada (Motivo: "+motivo+")")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Attendance records whether the patient showed up for a cita.
func (c *Console) Attendance(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	asistio := r.PostFormValue("asistio") == "true"
	if err := c.api.SetAttendance(r.Context(), sess.Token, id, asistio); err != nil {
		c.failUpstream(w, r, err, "Error al actualizar asistencia", sess.LoginPath(), "/")
		return
	}

	setFlash(w, flashSuccess, "Asistencia actualizada")
	http.Redirect(w, r, redirectTarget(r, "/"), http.StatusSeeOther)
}

// redirectTarget keeps post-redirect-get on the screen the form was
// submitted from, when the form says so. Only local paths are honored.
func redirectTarget(r *http.Request, fallback string) string {
	ret := r.PostFormValue("volver")
	if strings.HasPrefix(ret, "/") && !strings.HasPrefix(ret, "//") {
		return ret
	}
	return fallback
}
