// Package validate holds the console's pre-submit checks. They are a
// UX shortcut only; the upstream server stays authoritative and may
// still reject what passes here.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/sistemacitas/consola/internal/clinicapi"
)

var (
	// Letters (including accented Latin) and spaces only.
	nameRe = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]+$`)
	// Permissive local@domain.tld shape, no embedded whitespace.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// 1-9 ASCII digits, no separators.
	phoneRe = regexp.MustCompile(`^[0-9]{1,9}$`)
)

// ErrPastDate rejects citas scheduled for today or earlier.
var ErrPastDate = errors.New("la cita debe ser agendada para un día posterior a hoy")

// ErrBadDate rejects dates that don't parse as YYYY-MM-DD.
var ErrBadDate = errors.New("fecha inválida")

// FieldErrors maps a field name to its violation message. Empty means
// the input passed.
type FieldErrors map[string]string

// Any reports whether at least one field failed.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// Patient checks the three patient fields. All rules run; violations
// are collected rather than short-circuiting on the first, so the form
// can mark every bad field at once.
func Patient(in clinicapi.PatientInput) FieldErrors {
	errs := FieldErrors{}

	nombre := strings.TrimSpace(in.Nombre)
	switch {
	case nombre == "":
		errs["nombre"] = "El nombre es obligatorio."
	case !nameRe.MatchString(nombre):
		errs["nombre"] = "El nombre solo puede contener letras y espacios."
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs["email"] = "El email es obligatorio."
	case !emailRe.MatchString(email):
		errs["email"] = "Formato de correo inválido."
	}

	telefono := strings.TrimSpace(in.Telefono)
	switch {
	case telefono == "":
		errs["telefono"] = "El teléfono es obligatorio."
	case !phoneRe.MatchString(telefono):
		errs["telefono"] = "Debe ingresar solo números, con máximo 9 dígitos."
	}

	return errs
}

// AppointmentDate enforces the scheduling rule: the proposed day must
// be strictly after today at local midnight. The comparison is
// day-granular; now's clock time is ignored.
func AppointmentDate(fecha string, now time.Time) error {
	proposed, err := time.ParseInLocation("2006-01-02", fecha, time.Local)
	if err != nil {
		return ErrBadDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if !proposed.After(today) {
		return ErrPastDate
	}
	return nil
}
