package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/api/shared"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

var (
	technician = domain.Principal{ID: 7, Email: "tech@example.com", DisplayName: "Tess Tech", Role: domain.RoleTechnician}
	manager    = domain.Principal{ID: 1, Email: "boss@example.com", DisplayName: "Bo Boss", Role: domain.RoleManager}
)

// withPrincipal stands in for the authentication middleware.
func withPrincipal(p *domain.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(shared.WithPrincipal(r.Context(), *p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTaskRouter(h *TaskHandler, p *domain.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(withPrincipal(p))
	r.Post("/task", h.CreateTask)
	r.Patch("/task/{taskId}", h.UpdateTask)
	r.Delete("/task/{taskId}", h.DeleteTask)
	r.Get("/task/all", h.ListTasks)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
