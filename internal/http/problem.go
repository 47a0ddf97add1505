package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
	"github.com/Alturino/shopping-cart/internal/log"
)

const (
	errorInternalServer   = "InternalServerError"
	messageInternalServer = "An unexpected error occurred."
)

// ProblemDetail is the body of every non 2xx response. Message is either a string or an
// ordered list of field messages.
type ProblemDetail struct {
	Message    interface{} `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Error      string      `json:"error"`
	Path       string      `json:"path"`
	Timestamp  string      `json:"timestamp"`
	StatusCode int         `json:"statusCode"`
}

func NewProblemDetail(statusCode int, message interface{}, path string) ProblemDetail {
	problem := ProblemDetail{
		StatusCode: statusCode,
		Error:      http.StatusText(statusCode),
		Message:    message,
		Path:       path,
		Timestamp:  time.Now().UTC().Format(TimestampFormat),
	}
	if statusCode >= http.StatusInternalServerError {
		problem.Error = errorInternalServer
		problem.Message = messageInternalServer
	}
	return problem
}

// Problem maps err onto the error taxonomy. Anything unrecognised becomes a 500 whose body
// never carries the underlying error.
func Problem(err error, path string) ProblemDetail {
	var (
		validationErr *inErrors.ValidationError
		conflictErr   *inErrors.ConflictError
		notFoundErr   *inErrors.NotFoundError
		badRequestErr *inErrors.BadRequestError
	)
	switch {
	case errors.As(err, &validationErr):
		problem := NewProblemDetail(http.StatusUnprocessableEntity, validationErr.Messages(), path)
		problem.Details = validationErr.Violations
		return problem
	case errors.As(err, &conflictErr):
		return NewProblemDetail(http.StatusConflict, conflictErr.Message(), path)
	case errors.As(err, &notFoundErr):
		return NewProblemDetail(http.StatusNotFound, notFoundErr.Error(), path)
	case errors.Is(err, inErrors.ErrNotFound):
		return NewProblemDetail(http.StatusNotFound, http.StatusText(http.StatusNotFound), path)
	case errors.As(err, &badRequestErr):
		return NewProblemDetail(http.StatusBadRequest, badRequestErr.Err.Error(), path)
	case errors.Is(err, inErrors.ErrBadRequest):
		return NewProblemDetail(http.StatusBadRequest, http.StatusText(http.StatusBadRequest), path)
	case errors.Is(err, inErrors.ErrMethodNotAllowed):
		return NewProblemDetail(
			http.StatusMethodNotAllowed,
			http.StatusText(http.StatusMethodNotAllowed),
			path,
		)
	default:
		return NewProblemDetail(http.StatusInternalServerError, nil, path)
	}
}

func WriteProblem(c context.Context, w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "WriteProblem").Logger()

	problem := Problem(err, r.URL.Path)
	if problem.StatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Int(log.KeyResponseStatusCode, problem.StatusCode).Msg("unhandled error")
	} else {
		logger.Warn().Err(err).Int(log.KeyResponseStatusCode, problem.StatusCode).Msg("http error")
	}

	WriteJsonResponse(
		c,
		w,
		problem.StatusCode,
		map[string]string{KeyHeaderContentType: ValueHeaderApplicationJSON},
		problem,
	)
}
