package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/shopping-cart/internal/errors"
)

func TestProblem(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage interface{}
	}{
		{
			name: "validation",
			err: fmt.Errorf("failed creating with error=%w", inErrors.NewValidationError(
				inErrors.Violation{Field: "tax", Rule: "money", Message: "tax is invalid"},
				inErrors.Violation{Field: "currency", Rule: "currency", Message: "currency is invalid"},
			)),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedError:   "Unprocessable Entity",
			expectedMessage: []string{"tax is invalid", "currency is invalid"},
		},
		{
			name:            "not found",
			err:             &inErrors.NotFoundError{Resource: "Shopping cart", ID: "42"},
			expectedStatus:  http.StatusNotFound,
			expectedError:   "Not Found",
			expectedMessage: "Shopping cart 42 not found",
		},
		{
			name:            "conflict",
			err:             &inErrors.ConflictError{Constraint: "ux_shopping_cart_item_cart_product"},
			expectedStatus:  http.StatusConflict,
			expectedError:   "Conflict",
			expectedMessage: "A shopping cart cannot contain the same product twice.",
		},
		{
			name:            "bad request",
			err:             &inErrors.BadRequestError{Err: errors.New("unexpected EOF")},
			expectedStatus:  http.StatusBadRequest,
			expectedError:   "Bad Request",
			expectedMessage: "unexpected EOF",
		},
		{
			name:            "unexpected",
			err:             errors.New("connection reset by peer"),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "InternalServerError",
			expectedMessage: "An unexpected error occurred.",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			problem := Problem(test.err, "/shopping-cart")

			assert.Equal(t, test.expectedStatus, problem.StatusCode)
			assert.Equal(t, test.expectedError, problem.Error)
			assert.Equal(t, test.expectedMessage, problem.Message)
			assert.Equal(t, "/shopping-cart", problem.Path)

			_, err := time.Parse(TimestampFormat, problem.Timestamp)
			assert.NoError(t, err)
		})
	}
}

func TestWriteProblem(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/shopping-cart", nil)
	w := httptest.NewRecorder()

	WriteProblem(context.Background(), w, r, inErrors.NewValidationError(
		inErrors.Violation{Field: "currency", Rule: "currency", Message: "currency is invalid"},
	))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, ValueHeaderApplicationJSON, w.Header().Get(KeyHeaderContentType))

	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.EqualValues(t, 422, body["statusCode"])
	assert.Equal(t, []interface{}{"currency is invalid"}, body["message"])
	assert.Equal(t, "/shopping-cart", body["path"])
	assert.Len(t, body["details"], 1)
}

func TestWriteJsonResponseWithoutBody(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJsonResponse(context.Background(), w, http.StatusNoContent, nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get(KeyHeaderContentType))
}
