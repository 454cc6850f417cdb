package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/api/middleware"
	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
)

// withRequestID runs fn with a request whose context carries a
// middleware-issued request ID.
func withRequestID(t *testing.T, fn func(w *httptest.ResponseRecorder, r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(rec, r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))
	return rec
}

func TestJSON_IncludesRequestID(t *testing.T) {
	rec := withRequestID(t, func(w *httptest.ResponseRecorder, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "LOADED"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestJSON_NilData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBadRequest_ReturnsProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	rec := httptest.NewRecorder()

	response.BadRequest(rec, req, "start must not be after end", []models.FieldError{
		{Field: "start", Message: "after end"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Equal(t, "start must not be after end", problem.Detail)
	assert.Equal(t, "/v1/history", problem.Instance)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "start", problem.Errors[0].Field)
}

func TestConflict_ReturnsProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/insights/questions", nil)
	rec := httptest.NewRecorder()

	response.Conflict(rec, req, "no active insight session")

	require.Equal(t, http.StatusConflict, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeConflict, problem.Type)
	assert.Equal(t, "/v1/insights/questions", problem.Instance)
}

func TestServiceUnavailable_ReturnsProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/insights", nil)
	rec := httptest.NewRecorder()

	response.ServiceUnavailable(rec, req, "insight backend unavailable")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnavailable, problem.Type)
	assert.Equal(t, "insight backend unavailable", problem.Detail)
}
