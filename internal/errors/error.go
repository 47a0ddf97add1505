package errors

import (
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrBadRequest = errors.New("bad request")

	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Violation is a single field level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationError struct {
	Violations []Violation
}

func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Messages(), ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Messages returns the violation messages in the order they were reported.
func (e *ValidationError) Messages() []string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return messages
}

// ConflictError reports a rejected write on a unique constraint.
type ConflictError struct {
	Constraint string
	Detail     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s on constraint=%s", ErrConflict.Error(), e.Constraint)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Message is the caller facing description of the conflict.
func (e *ConflictError) Message() string {
	switch e.Constraint {
	case "shopping_cart_pkey":
		return "A shopping cart with the same id already exists."
	case "ux_shopping_cart_user_id_cart_id":
		return "A shopping cart with the same user and id already exists."
	case "ux_shopping_cart_item_cart_product":
		return "A shopping cart cannot contain the same product twice."
	case "ux_shopping_cart_discount_code":
		return "A shopping cart cannot contain the same discount code twice."
	default:
		return "The request conflicts with the current state of the shopping cart."
	}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s %s", e.Resource, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// BadRequestError wraps malformed input that never reached validation.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("%s with error=%s", ErrBadRequest.Error(), e.Err.Error())
}

func (e *BadRequestError) Unwrap() []error {
	return []error{ErrBadRequest, e.Err}
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
