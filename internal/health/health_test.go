package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(checks map[string]Check) *mux.Router {
	router := mux.NewRouter()
	AttachHealthController(
		router,
		Info{Service: "shopping-cart-service", Version: "0.1.0"},
		checks,
	)
	return router
}

func get(t *testing.T, router http.Handler, target string, v interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	return rec.Code
}

func TestHealth(t *testing.T) {
	router := newRouter(nil)

	var payload Payload
	status := get(t, router, "/health", &payload)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "shopping-cart-service", payload.Service)
	require.NotNil(t, payload.Version)
	assert.Equal(t, "0.1.0", *payload.Version)
	assert.Nil(t, payload.Commit)
	assert.Equal(t, os.Getpid(), payload.Pid)
	assert.NotZero(t, payload.Memory.Sys)
	assert.NotEmpty(t, payload.Timestamp)
}

func TestLive(t *testing.T) {
	body := map[string]interface{}{}
	status := get(t, newRouter(nil), "/health/live", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, body)
}

func TestReady(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		body := map[string]interface{}{}
		status := get(t, newRouter(map[string]Check{"postgres": healthy, "redis": healthy}), "/health/ready", &body)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]interface{}{"status": "ok"}, body)
	})

	t.Run("a check fails", func(t *testing.T) {
		var body Status
		status := get(t, newRouter(map[string]Check{"postgres": healthy, "redis": broken}), "/health/ready", &body)

		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, map[string]string{"redis": "unavailable"}, body.Components)
	})
}
