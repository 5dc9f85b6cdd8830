package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus_Taxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad input"), http.StatusBadRequest},
		{NewTransitionError("out of order", nil), http.StatusBadRequest},
		{NewAuthorizationError("not the assigned worker"), http.StatusForbidden},
		{NewNotFoundError("job"), http.StatusNotFound},
		{ErrorRecordNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
		{NewExternalServiceError("paygate", errors.New("timeout")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("transition: %w", NewTransitionError("too far away", map[string]interface{}{"distance": 150.0}))
	if got := HTTPStatus(wrapped); got != http.StatusBadRequest {
		t.Errorf("expected wrapped TransitionError to map to 400, got %d", got)
	}
}

func TestErrorDetail_OnlyTransitionErrorsCarryDetail(t *testing.T) {
	te := NewTransitionError("too far away", map[string]interface{}{
		"distance":         150.0,
		"maxDistance":      100.0,
		"requiresOverride": true,
	})
	detail := ErrorDetail(te)
	if detail == nil {
		t.Fatal("expected detail on TransitionError")
	}
	if detail["requiresOverride"] != true {
		t.Errorf("expected requiresOverride true, got %v", detail["requiresOverride"])
	}

	if ErrorDetail(NewValidationError("bad input")) != nil {
		t.Error("expected no detail on ValidationError")
	}
}

func TestExternalServiceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalServiceError("sms", cause)
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}
