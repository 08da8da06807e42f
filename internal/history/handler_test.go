// internal/history/handler_test.go
package history

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	store, mock := newTestStore(t)
	router := gin.New()
	NewHandler(store, nil, nil).Register(router)
	return router, mock
}

func TestSavePaperEndpoint(t *testing.T) {
	router, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO papers").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"userId": "user-1", "title": "Algebra", "content": "1. What is x?", "itemCount": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/history", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePaperEndpoint_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing userId", `{"content": "x"}`},
		{"missing content", `{"userId": "user-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/history", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListPapersEndpoint(t *testing.T) {
	router, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM papers").
		WillReturnRows(sqlmock.NewRows(paperColumns))

	req := httptest.NewRequest(http.MethodGet, "/api/history?userId=user-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "papers")
}

func TestListPapersEndpoint_MissingUserID(t *testing.T) {
	router, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint_DisabledWithoutIndex(t *testing.T) {
	router, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/search?userId=user-1&q=algebra", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProfileCompleteEndpoint(t *testing.T) {
	router, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT profile_complete FROM profiles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"profile_complete"}).AddRow(true))

	req := httptest.NewRequest(http.MethodGet, "/api/profile/user-1/complete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"complete":true`)
}
