package rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_MissingToken_Unauthorized(t *testing.T) {
	router := newTestRouter(t)
	registerTestUser(t, router, "alice", "Alice A", "secret")

	for _, path := range []string{"/users", "/users/1"} {
		w := doRequest(t, router, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "GET %s without token", path)
	}
}

func TestRequireAuth_UnknownToken_NotFound(t *testing.T) {
	router := newTestRouter(t)
	registerTestUser(t, router, "alice", "Alice A", "secret")

	w := doRequest(t, router, http.MethodGet, "/users", nil, "no-such-token")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireAuth_ValidToken_Passes(t *testing.T) {
	router := newTestRouter(t)
	reg := registerTestUser(t, router, "alice", "Alice A", "secret")

	w := doRequest(t, router, http.MethodGet, "/users", nil, reg.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRequireAuth_TokenSurvivesLogout(t *testing.T) {
	router := newTestRouter(t)
	reg := registerTestUser(t, router, "alice", "Alice A", "secret")

	w := doRequest(t, router, http.MethodPut, "/logout/1", nil, reg.Token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodGet, "/users", nil, reg.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}
