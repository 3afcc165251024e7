package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemacitas/consola/internal/clinicapi"
)

func TestPatientAllValid(t *testing.T) {
	errs := Patient(clinicapi.PatientInput{
		Nombre:   "José María",
		Email:    "a@b.co",
		Telefono: "099876543",
	})
	assert.False(t, errs.Any(), "expected no violations, got %v", errs)
}

func TestPatientNameRules(t *testing.T) {
	tests := []struct {
		name   string
		nombre string
		bad    bool
	}{
		{"accented letters ok", "José María", false},
		{"plain ascii ok", "Ana Perez", false},
		{"digits rejected", "John3", true},
		{"empty rejected", "", true},
		{"spaces only rejected", "   ", true},
		{"punctuation rejected", "Ana-María", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Patient(clinicapi.PatientInput{Nombre: tt.nombre, Email: "a@b.co", Telefono: "1"})
			_, failed := errs["nombre"]
			assert.Equal(t, tt.bad, failed)
		})
	}
}

func TestPatientEmailRules(t *testing.T) {
	tests := []struct {
		name  string
		email string
		bad   bool
	}{
		{"minimal ok", "a@b.co", false},
		{"no at sign", "not-an-email", true},
		{"no tld dot", "a@b", true},
		{"embedded space", "a b@c.co", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Patient(clinicapi.PatientInput{Nombre: "Ana", Email: tt.email, Telefono: "1"})
			_, failed := errs["email"]
			assert.Equal(t, tt.bad, failed)
		})
	}
}

func TestPatientPhoneRules(t *testing.T) {
	tests := []struct {
		name     string
		telefono string
		bad      bool
	}{
		{"nine digits ok", "099876543", false},
		{"single digit ok", "7", false},
		{"eleven digits rejected", "12345678901", true},
		{"letters rejected", "09987x543", true},
		{"separators rejected", "099-876-543", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Patient(clinicapi.PatientInput{Nombre: "Ana", Email: "a@b.co", Telefono: tt.telefono})
			_, failed := errs["telefono"]
			assert.Equal(t, tt.bad, failed)
		})
	}
}

func TestPatientCollectsAllViolations(t *testing.T) {
	errs := Patient(clinicapi.PatientInput{Nombre: "John3", Email: "not-an-email", Telefono: "12345678901"})
	require.True(t, errs.Any())
	assert.Len(t, errs, 3, "all three fields must be reported at once")
	assert.Contains(t, errs, "nombre")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "telefono")
}

func TestAppointmentDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 17, 42, 0, 0, time.Local)

	assert.ErrorIs(t, AppointmentDate("2025-06-15", now), ErrPastDate, "same day rejected")
	assert.ErrorIs(t, AppointmentDate("2025-06-14", now), ErrPastDate, "yesterday rejected")
	assert.ErrorIs(t, AppointmentDate("2024-12-31", now), ErrPastDate)
	assert.NoError(t, AppointmentDate("2025-06-16", now), "tomorrow accepted")
	assert.NoError(t, AppointmentDate("2026-01-01", now))
	assert.ErrorIs(t, AppointmentDate("junk", now), ErrBadDate)
	assert.ErrorIs(t, AppointmentDate("", now), ErrBadDate)
}
