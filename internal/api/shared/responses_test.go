package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracedRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/task/all", nil)
	return r.WithContext(SetTraceID(r.Context()))
}

func TestRespondWithError(t *testing.T) {
	r := tracedRequest()
	w := httptest.NewRecorder()

	RespondWithError(w, r, http.StatusNotFound, "Task not found.")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Task not found.", body.Message)
	assert.Equal(t, GetTraceID(r.Context()), body.TraceID)
	assert.Len(t, body.TraceID, 2*TraceIDLength)
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	verr := domain.NewValidationError("summary", "Summary cannot be empty.")

	RespondWithValidationErrors(w, tracedRequest(), verr)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"errors":[{"field":"summary","message":"Summary cannot be empty."}]}`, w.Body.String())
}

func TestRespondWithInternalError_RedactsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	err := errors.New("dial postgres://admin:hunter2@db:5432/tasks failed")

	RespondWithInternalError(w, tracedRequest(), "PersistenceError", err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body InternalErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "A problem has occurred. Please try again.", body.Message)
	assert.Equal(t, "PersistenceError", body.ErrorName)
	assert.NotContains(t, body.ErrorMessage, "hunter2")
	assert.NotEmpty(t, body.TraceID)
}

func TestRespondWithErrorAndLog_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, tracedRequest(), http.StatusUnauthorized, "Unauthorized",
		errors.New("token eyJhbGciOiJIUzI1NiJ9.eyJpZCI6MX0.sig rejected"), WithElevatedLogLevel())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "eyJ")
}

func TestPrincipalContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := PrincipalFromContext(r.Context())
	assert.False(t, ok)

	p := domain.Principal{ID: 3, Role: domain.RoleManager}
	got, ok := PrincipalFromContext(WithPrincipal(r.Context(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

func TestTraceIDUnique(t *testing.T) {
	a := GetTraceID(SetTraceID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
	b := GetTraceID(SetTraceID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
	assert.NotEqual(t, a, b)
	assert.Empty(t, GetTraceID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
