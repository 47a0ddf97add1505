package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/log"
	"github.com/Alturino/shopping-cart/internal/otel"
)

// WriteJsonResponse writes statusCode and, unless body is nil, body encoded as JSON.
func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	statusCode int,
	header map[string]string,
	body interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteJsonResponse").Logger()

	if _, ok := header[KeyHeaderContentType]; !ok && body != nil {
		w.Header().Set(KeyHeaderContentType, ValueHeaderApplicationJSON)
	}
	for k, v := range header {
		w.Header().Set(k, v)
	}
	w.WriteHeader(statusCode)

	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msgf("failed encode response body with error=%s", err.Error())
	}
}
