package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inHttp "github.com/Alturino/shopping-cart/internal/http"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/otel"
)

const maxLoggedBody = 64 << 10

// Logging assigns the request id, echoes it back in X-Request-Id and threads it with a
// request scoped logger through the context. One completion event is logged per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(inHttp.KeyHeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c, span := otel.Tracer.Start(
			r.Context(),
			"middleware Logging",
			trace.WithAttributes(
				attribute.String(log.KeyRequestID, requestID),
				attribute.String(log.KeyRequestHost, r.Host),
				attribute.String(log.KeyRequestIp, r.RemoteAddr),
				attribute.String(log.KeyRequestMethod, r.Method),
				attribute.String(log.KeyRequestURI, r.RequestURI),
				attribute.String(log.KeyRequestURL, r.URL.String()),
			),
		)
		defer span.End()

		requestBody := readBody(r)

		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "middleware Logging").
			Str(log.KeyRequestID, requestID).
			Dict(log.KeyRequest, zerolog.Dict().
				Any(log.KeyRequestHeader, r.Header).
				Str(log.KeyRequestHost, r.Host).
				Str(log.KeyRequestIp, r.RemoteAddr).
				Str(log.KeyRequestMethod, r.Method).
				Str(log.KeyRequestURI, r.RequestURI).
				Str(log.KeyRequestURL, r.URL.String()).
				RawJSON(log.KeyRequestBody, requestBody)).
			Logger()

		c = log.AttachRequestIDToContext(c, requestID)
		c = logger.WithContext(c)
		r = r.WithContext(c)
		w.Header().Set(inHttp.KeyHeaderRequestID, requestID)

		logger.Trace().Msg("next handler")
		m := httpsnoop.CaptureMetrics(next, w, r)

		event := logger.Info()
		if m.Code >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Ctx(c).
			Str("event", "request.completed").
			Int(log.KeyResponseStatusCode, m.Code).
			Dur(log.KeyDuration, m.Duration).
			Msg("request completed")
	})
}

// readBody buffers the body for logging and hands an identical reader to the next handler.
// Bodies that are not JSON are logged as null.
func readBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return []byte("null")
	}
	var buffer bytes.Buffer
	body, err := io.ReadAll(io.TeeReader(io.LimitReader(r.Body, maxLoggedBody), &buffer))
	r.Body = io.NopCloser(io.MultiReader(&buffer, r.Body))
	if err != nil || !json.Valid(body) {
		return []byte("null")
	}
	return body
}
