package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError: malformed or missing input (unknown action, bad body).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError: the actor is authenticated but not allowed to act on
// this resource (not the assigned worker).
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError: no row for the given id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// TransitionError: a state-machine precondition was not met. Detail carries
// the structured payload surfaced to the client (photo counts, distances,
// incomplete checklist item names).
type TransitionError struct {
	Message string
	Detail  map[string]interface{}
}

func (e *TransitionError) Error() string { return e.Message }

func NewTransitionError(message string, detail map[string]interface{}) *TransitionError {
	return &TransitionError{Message: message, Detail: detail}
}

// ExternalServiceError: a collaborator call (refund, SMS, email, broadcast)
// failed. Never surfaced to the triggering caller; the outbox dispatcher
// owns logging and retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// HTTPStatus maps the error taxonomy onto response codes.
func HTTPStatus(err error) int {
	var (
		validationErr    *ValidationError
		authorizationErr *AuthorizationError
		notFoundErr      *NotFoundError
		transitionErr    *TransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &transitionErr):
		return http.StatusBadRequest
	case errors.As(err, &authorizationErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, ErrorRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetail returns the structured detail for TransitionError, nil otherwise.
func ErrorDetail(err error) map[string]interface{} {
	var transitionErr *TransitionError
	if errors.As(err, &transitionErr) {
		return transitionErr.Detail
	}
	return nil
}
