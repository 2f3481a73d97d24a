package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	api := newTestAPI(t)
	assert.NotEmpty(t, api.token)

	tests := []struct {
		body    string
		status  int
		message string
	}{
		{`{"username":"admin","password":"wrong"}`, http.StatusUnauthorized, "Invalid username or password"},
		{`{"username":"root","password":"` + testPassword + `"}`, http.StatusUnauthorized, "Invalid username or password"},
		{`{"username":"admin"}`, http.StatusBadRequest, "Username and password are required"},
		{`{"username":`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
		w, body := api.do(req)
		assert.Equal(t, tt.status, w.Code, tt.body)
		assert.False(t, body.Success)
		assert.Equal(t, tt.message, body.Message, tt.body)
	}
}

func TestAuthHandler_LogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(api.authorized(http.MethodPost, "/api/auth/logout", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", body.Message)

	w, body = api.do(api.authorized(http.MethodDelete, "/api/products/"+"64b7f1a2c3d4e5f6a7b8c9d0", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Session has been logged out", body.Message)

	api.token = api.login()
	w, _ = api.do(api.authorized(http.MethodDelete, "/api/products/"+"64b7f1a2c3d4e5f6a7b8c9d0", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_LogoutRequiresSession(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", body.Message)
}
