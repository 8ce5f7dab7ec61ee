package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatusCodes(t *testing.T) {
	tests := []struct {
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{NewInvalidInputError("m", nil), ErrorTypeInvalidInput, http.StatusBadRequest},
		{NewNotFoundError("m", nil), ErrorTypeNotFound, http.StatusNotFound},
		{NewInvalidStateError("m", nil), ErrorTypeInvalidState, http.StatusConflict},
		{NewConflictError("m", nil), ErrorTypeConflict, http.StatusConflict},
		{NewUnauthorizedError("m", nil), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{NewNetworkError("m", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{NewTimeoutError("m", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{NewInternalError("m", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.Type != tt.wantType {
			t.Errorf("Type = %v, want %v", tt.err.Type, tt.wantType)
		}
		if tt.err.StatusCode != tt.wantCode {
			t.Errorf("StatusCode for %v = %d, want %d", tt.wantType, tt.err.StatusCode, tt.wantCode)
		}
		if !IsType(tt.err, tt.wantType) {
			t.Errorf("IsType(%v) = false", tt.wantType)
		}
		if GetStatusCode(tt.err) != tt.wantCode {
			t.Errorf("GetStatusCode(%v) = %d, want %d", tt.wantType, GetStatusCode(tt.err), tt.wantCode)
		}
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewInternalError("save failed", cause)

	if got := err.Error(); got != "internal: save failed (caused by: disk full)" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not reach the cause")
	}

	bare := NewNotFoundError("gone", nil)
	if got := bare.Error(); got != "not_found: gone" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHelpersOnForeignErrors(t *testing.T) {
	plain := fmt.Errorf("plain")

	if IsType(plain, ErrorTypeInternal) {
		t.Error("IsType(plain) = true")
	}
	if GetStatusCode(plain) != http.StatusInternalServerError {
		t.Errorf("GetStatusCode(plain) = %d, want 500", GetStatusCode(plain))
	}
}
