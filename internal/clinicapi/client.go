// Package clinicapi provides the console's client for the external
// clinic REST API. Every data operation the console performs goes
// through this client; the bearer token is attached in exactly one
// place so no call site can forget it.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sistemacitas/consola/internal/observability/metrics"
	"github.com/sistemacitas/consola/pkg/logging"
)

var (
	// ErrUnauthorized is returned when the upstream rejects the token
	// (or credentials, for Login). Handlers turn this into a redirect
	// to the login screen.
	ErrUnauthorized = errors.New("clinicapi: unauthorized")
	// ErrNotFound is returned on upstream 404s.
	ErrNotFound = errors.New("clinicapi: not found")
)

// Client is an HTTP client for the clinic API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.ConsoleMetrics
	tracer     trace.Tracer
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables upstream-call metrics.
func WithMetrics(m *metrics.ConsoleMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a clinic API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
		tracer: otel.Tracer("consola.internal.clinicapi"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do performs one upstream request. The token, when present, is
// always attached as a bearer header here and nowhere else.
func (c *Client) do(ctx context.Context, operation, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("clinicapi: marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("clinicapi: create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	ctx, span := c.tracer.Start(ctx, "clinicapi."+operation)
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveUpstream(operation, "error", time.Since(start).Seconds())
		return fmt.Errorf("clinicapi: %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(operation, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("clinicapi: %s failed with status %d: %s", operation, resp.StatusCode, string(msg))
		span.RecordError(err)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return fmt.Errorf("clinicapi: decode %s response: %w", operation, err)
		}
	}
	return nil
}

// Login exchanges credentials for an API token. Bad credentials map
// to ErrUnauthorized.
func (c *Client) Login(ctx context.Context, nombre, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"nombre": nombre, "password": password}
	if err := c.do(ctx, "login", "", http.MethodPost, "/api/login", payload, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("clinicapi: login response missing token")
	}
	c.logger.Info("login accepted", "user", nombre)
	return resp.Token, nil
}

// ListPatients fetches the full patient list with their citas.
func (c *Client) ListPatients(ctx context.Context, token string) ([]Patient, error) {
	var out []Patient
	if err := c.do(ctx, "pacientes.list", token, http.MethodGet, "/api/pacientes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPatient fetches a single patient.
func (c *Client) GetPatient(ctx context.Context, token string, id int64) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, "pacientes.get", token, http.MethodGet, "/api/pacientes/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePatient registers a new patient.
func (c *Client) CreatePatient(ctx context.Context, token string, in PatientInput) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, "pacientes.create", token, http.MethodPost, "/api/pacientes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient updates an existing patient. One historical client
// variant called PUT /pacientes/:id without the /api prefix; that was
// a latent bug, and the path is normalized here.
func (c *Client) UpdatePatient(ctx context.Context, token string, id int64, in PatientInput) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, "pacientes.update", token, http.MethodPut, "/api/pacientes/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePatient removes a patient.
func (c *Client) DeletePatient(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "pacientes.delete", token, http.MethodDelete, "/api/pacientes/"+formatID(id), nil, nil)
}

// CreateAppointment schedules a cita for a patient.
func (c *Client) CreateAppointment(ctx context.Context, token string, in AppointmentInput) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, "citas.create", token, http.MethodPost, "/api/citas", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAppointment cancels a cita. The upstream requires a motivo so
// the patient can be notified why.
func (c *Client) DeleteAppointment(ctx context.Context, token string, id int64, motivo string) error {
	payload := map[string]string{"motivo": motivo}
	return c.do(ctx, "citas.delete", token, http.MethodDelete, "/api/citas/"+formatID(id), payload, nil)
}

// SetAttendance records whether the patient showed up.
func (c *Client) SetAttendance(ctx context.Context, token string, id int64, asistio bool) error {
	payload := map[string]bool{"asistio": asistio}
	return c.do(ctx, "citas.asistencia", token, http.MethodPut, "/api/citas/"+formatID(id)+"/asistencia", payload, nil)
}

// AppointmentHistory lists every cita a patient has had.
func (c *Client) AppointmentHistory(ctx context.Context, token string, pacienteID int64) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, "citas.historial", token, http.MethodGet, "/api/citas/historial/"+formatID(pacienteID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAccounts lists the owner-managed provider accounts.
func (c *Client) ListAccounts(ctx context.Context, token string) ([]Account, error) {
	var out []Account
	if err := c.do(ctx, "owner.clientes.list", token, http.MethodGet, "/api/owner/clientes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccount fetches one provider account.
func (c *Client) GetAccount(ctx context.Context, token string, id int64) (*Account, error) {
	var out Account
	if err := c.do(ctx, "owner.clientes.get", token, http.MethodGet, "/api/owner/clientes/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAccount registers a provider account.
func (c *Client) CreateAccount(ctx context.Context, token string, in AccountInput) (*Account, error) {
	var out Account
	if err := c.do(ctx, "owner.clientes.create", token, http.MethodPost, "/api/owner/clientes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAccount updates a provider account.
func (c *Client) UpdateAccount(ctx context.Context, token string, id int64, in AccountInput) (*Account, error) {
	var out Account
	if err := c.do(ctx, "owner.clientes.update", token, http.MethodPut, "/api/owner/clientes/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes a provider account.
func (c *Client) DeleteAccount(ctx context.Context, token string, id int64) error {
	return c.do(ctx, "owner.clientes.delete", token, http.MethodDelete, "/api/owner/clientes/"+formatID(id), nil, nil)
}

// OwnerPatients lists all patients across providers.
func (c *Client) OwnerPatients(ctx context.Context, token string) ([]Patient, error) {
	var out []Patient
	if err := c.do(ctx, "owner.pacientes", token, http.MethodGet, "/api/owner/pacientes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OwnerAppointments lists all citas across providers.
func (c *Client) OwnerAppointments(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(ctx, "owner.citas", token, http.MethodGet, "/api/owner/citas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
