package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/sistemacitas/consola/pkg/logging"
)

func TestRequestLoggerEchoesChiRequestID(t *testing.T) {
	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = chimiddleware.GetReqID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := chimiddleware.RequestID(RequestLogger(logging.New("error"))(inner))

	req := httptest.NewRequest(http.MethodGet, "/pacientes", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get("X-Request-ID"))
}

func TestRequestLoggerMintsIDWithoutChi(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequestLogger(logging.New("error"))(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
