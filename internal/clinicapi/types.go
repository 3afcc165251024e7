package clinicapi

import "time"

// Wire types for the clinic REST API. Field names follow the
// upstream's JSON exactly; the server owns this data and the console
// never keeps a copy beyond the current request.

// Patient is a patient record with its scheduled citas.
type Patient struct {
	ID       int64         `json:"id"`
	Nombre   string        `json:"nombre"`
	Email    string        `json:"email"`
	Telefono string        `json:"telefono"`
	Citas    []Appointment `json:"citas"`
}

// Appointment is a cita. Asistio is nil until attendance has been
// recorded.
type Appointment struct {
	ID         int64  `json:"id"`
	PacienteID int64  `json:"paciente_id"`
	Fecha      string `json:"fecha"` // YYYY-MM-DD
	Hora       string `json:"hora"`  // HH:MM
	Notas      string `json:"notas,omitempty"`
	Estado     string `json:"estado,omitempty"`
	Confirmada bool   `json:"confirmada"`
	Asistio    *bool  `json:"asistio"`
}

// PatientInput is the create/update payload for a patient.
type PatientInput struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

// AppointmentInput is the payload for scheduling a cita.
type AppointmentInput struct {
	PacienteID int64  `json:"paciente_id"`
	Fecha      string `json:"fecha"`
	Hora       string `json:"hora"`
	Notas      string `json:"notas"`
}

// Account is a service-provider account managed by the owner.
type Account struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Profesion string `json:"profesion"`
}

// AccountInput is the create/update payload for an account. Password
// is write-only; the server never returns it.
type AccountInput struct {
	Nombre    string `json:"nombre"`
	Password  string `json:"password,omitempty"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Profesion string `json:"profesion"`
}

// Starts returns the cita's start instant in the local timezone, or
// false when fecha doesn't parse. A missing hora counts as midnight.
func (a Appointment) Starts() (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", a.Fecha, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	if a.Hora != "" {
		if clock, err := time.Parse("15:04", a.Hora); err == nil {
			day = day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
		}
	}
	return day, true
}

// NextAppointment returns the patient's earliest cita start. Patients
// without a parseable cita report false and sort last.
func (p Patient) NextAppointment() (time.Time, bool) {
	var best time.Time
	found := false
	for _, cita := range p.Citas {
		start, ok := cita.Starts()
		if !ok {
			continue
		}
		if !found || start.Before(best) {
			best = start
			found = true
		}
	}
	return best, found
}
