package clinicapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemacitas/consola/pkg/logging"
)

// recordedRequest captures what the fake upstream saw.
type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func newFakeUpstream(t *testing.T, status int, respBody string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func testClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL, WithLogger(logging.New("error")))
}

func TestLogin(t *testing.T) {
	srv, seen := newFakeUpstream(t, http.StatusOK, `{"token":"tok-123"}`)
	c := testClient(srv)

	tok, err := c.Login(context.Background(), "ana", "secreta")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/login", got.Path)
	assert.Empty(t, got.Auth, "login must not carry a bearer header")

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.Body), &payload))
	assert.Equal(t, "ana", payload["nombre"])
	assert.Equal(t, "secreta", payload["password"])
}

func TestLoginBadCredentials(t *testing.T) {
	srv, _ := newFakeUpstream(t, http.StatusUnauthorized, `{"error":"credenciales"}`)
	c := testClient(srv)

	_, err := c.Login(context.Background(), "ana", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerAlwaysAttached(t *testing.T) {
	srv, seen := newFakeUpstream(t, http.StatusOK, `[]`)
	c := testClient(srv)
	ctx := context.Background()

	_, err := c.ListPatients(ctx, "tok")
	require.NoError(t, err)
	require.NoError(t, c.DeletePatient(ctx, "tok", 7))
	require.NoError(t, c.SetAttendance(ctx, "tok", 9, true))
	_, err = c.OwnerAppointments(ctx, "tok")
	require.NoError(t, err)

	require.Len(t, *seen, 4)
	for _, r := range *seen {
		assert.Equal(t, "Bearer tok", r.Auth, "%s %s missing bearer", r.Method, r.Path)
	}
}

func TestUnauthorizedSentinel(t *testing.T) {
	srv, _ := newFakeUpstream(t, http.StatusUnauthorized, `{}`)
	c := testClient(srv)

	_, err := c.ListPatients(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNotFoundSentinel(t *testing.T) {
	srv, _ := newFakeUpstream(t, http.StatusNotFound, `{}`)
	c := testClient(srv)

	_, err := c.GetPatient(context.Background(), "tok", 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePatientUsesAPIPrefix(t *testing.T) {
	srv, seen := newFakeUpstream(t, http.StatusOK, `{"id":5,"nombre":"Ana"}`)
	c := testClient(srv)

	_, err := c.UpdatePatient(context.Background(), "tok", 5, PatientInput{Nombre: "Ana"})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, "/api/pacientes/5", (*seen)[0].Path)
}

func TestDeleteAppointmentSendsMotivo(t *testing.T) {
	srv, seen := newFakeUpstream(t, http.StatusOK, `{}`)
	c := testClient(srv)

	require.NoError(t, c.DeleteAppointment(context.Background(), "tok", 11, "paciente de viaje"))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/api/citas/11", got.Path)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.Body), &payload))
	assert.Equal(t, "paciente de viaje", payload["motivo"])
}

func TestSetAttendancePayload(t *testing.T) {
	srv, seen := newFakeUpstream(t, http.StatusOK, `{}`)
	c := testClient(srv)

	require.NoError(t, c.SetAttendance(context.Background(), "tok", 3, false))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/citas/3/asistencia", got.Path)

	var payload map[string]bool
	require.NoError(t, json.Unmarshal([]byte(got.Body), &payload))
	asistio, ok := payload["asistio"]
	require.True(t, ok)
	assert.False(t, asistio)
}

func TestAppointmentHistoryDecodesNullAsistio(t *testing.T) {
	srv, _ := newFakeUpstream(t, http.StatusOK,
		`[{"id":1,"paciente_id":2,"fecha":"2025-06-20","hora":"10:00","asistio":null},
		  {"id":2,"paciente_id":2,"fecha":"2025-05-01","hora":"09:30","asistio":true}]`)
	c := testClient(srv)

	citas, err := c.AppointmentHistory(context.Background(), "tok", 2)
	require.NoError(t, err)
	require.Len(t, citas, 2)
	assert.Nil(t, citas[0].Asistio, "unrecorded attendance must stay nil")
	require.NotNil(t, citas[1].Asistio)
	assert.True(t, *citas[1].Asistio)
}

func TestServerErrorSurfaced(t *testing.T) {
	srv, _ := newFakeUpstream(t, http.StatusInternalServerError, `boom`)
	c := testClient(srv)

	_, err := c.ListAccounts(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "status 500")
}
