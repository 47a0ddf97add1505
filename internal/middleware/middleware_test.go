package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/log"
)

func TestLogging(t *testing.T) {
	t.Run("given request id header should echo it and expose it in context", func(t *testing.T) {
		var (
			seenID   string
			seenBody []byte
		)
		handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenID = log.RequestIDFromContext(r.Context())
			seenBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))

		body := `{"currency":"USD"}`
		r := httptest.NewRequest(http.MethodPost, "/shopping-cart", strings.NewReader(body))
		r.Header.Set(inHttp.KeyHeaderRequestID, "req-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "req-1", w.Header().Get(inHttp.KeyHeaderRequestID))
		assert.Equal(t, "req-1", seenID)
		assert.Equal(t, body, string(seenBody))
	})

	t.Run("given no request id header should generate one", func(t *testing.T) {
		var output bytes.Buffer
		logger := zerolog.New(&output)

		handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		r := httptest.NewRequest(http.MethodGet, "/shopping-cart", nil)
		r = r.WithContext(logger.WithContext(r.Context()))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		requestID := w.Header().Get(inHttp.KeyHeaderRequestID)
		_, err := uuid.Parse(requestID)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		event := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &event))
		assert.Equal(t, "request.completed", event["event"])
		assert.Equal(t, requestID, event[log.KeyRequestID])
		assert.EqualValues(t, http.StatusOK, event[log.KeyResponseStatusCode])
	})
}

func TestRecoverPanic(t *testing.T) {
	handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/shopping-cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	problem := inHttp.ProblemDetail{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
	assert.Equal(t, "An unexpected error occurred.", problem.Message)
	assert.Equal(t, "/shopping-cart", problem.Path)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestMetrics(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics)
	router.HandleFunc("/shopping-cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := requestsTotal.WithLabelValues(http.MethodGet, "/shopping-cart/{id}", "404")
	before := testutil.ToFloat64(counter)

	for range 2 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shopping-cart/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
