package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{"bare", ErrIssueNotFound, "[IM-ISSU-4040] issue not found"},
		{"details", ErrIssueNotFound.WithDetails("id 9"), "[IM-ISSU-4040] issue not found: id 9"},
		{"detailf", ErrValidation.Detailf("status %q", "Done"), `[IM-ISSU-4001] validation failed: status "Done"`},
		{"cause", ErrPersistence.WithCause(cause), "[IM-SYS-5001] persistence failed: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_CopiesLeaveKindUntouched(t *testing.T) {
	refined := ErrIssueNotFound.WithDetails("id 3").WithCause(errors.New("x"))

	if ErrIssueNotFound.Details != "" || ErrIssueNotFound.Cause != nil {
		t.Fatalf("package-level kind was modified: %+v", ErrIssueNotFound)
	}
	if refined.Details != "id 3" || refined.Cause == nil {
		t.Errorf("refined = %+v", refined)
	}
}

func TestDomainError_Matching(t *testing.T) {
	cause := errors.New("rename failed")
	err := fmt.Errorf("create issue: %w", ErrPersistence.WithCause(cause))

	if !errors.Is(err, ErrPersistence) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if errors.Is(err, ErrInternalServer) {
		t.Error("errors.Is matched a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	de, ok := AsDomainError(err)
	if !ok || de.Code != "IM-SYS-5001" {
		t.Errorf("AsDomainError() = %v, %v", de, ok)
	}
	if _, ok := AsDomainError(cause); ok {
		t.Error("AsDomainError() matched a plain error")
	}
}

func TestIsDomainError(t *testing.T) {
	err := ErrValidation.WithDetails("title is required")

	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"any code", err, "", true},
		{"same code", err, "IM-ISSU-4001", true},
		{"other code", err, "IM-ISSU-4040", false},
		{"plain error", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDomainError(tt.err, tt.code); got != tt.want {
				t.Errorf("IsDomainError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(fmt.Errorf("wrap: %w", ErrRateLimited)); got != "IM-SYS-4290" {
		t.Errorf("GetErrorCode() = %q", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}

func TestClientMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"kind", ErrIssueNotFound, "issue not found"},
		{"details", ErrValidation.WithDetails("title is required"), "validation failed: title is required"},
		{"cause hidden", ErrPersistence.WithCause(errors.New("/var/lib/issues.json: EIO")), "persistence failed"},
		{"plain error hidden", errors.New("socket closed"), "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientMessage(tt.err); got != tt.want {
				t.Errorf("ClientMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrValidation.Code, http.StatusBadRequest},
		{ErrBadRequest.Code, http.StatusBadRequest},
		{ErrIssueNotFound.Code, http.StatusNotFound},
		{ErrRateLimited.Code, http.StatusTooManyRequests},
		{ErrInternalServer.Code, http.StatusInternalServerError},
		{ErrPersistence.Code, http.StatusInternalServerError},
		{ErrHistoryRecord.Code, http.StatusInternalServerError},
		{ErrServiceUnavailable.Code, http.StatusServiceUnavailable},
		{"IM-SYS-2000", http.StatusInternalServerError},
		{"IM-SYS-4990", http.StatusInternalServerError},
		{"IM-SYS-40", http.StatusInternalServerError},
		{"IM-SYS-ABCD", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := StatusForCode(tt.code); got != tt.want {
				t.Errorf("StatusForCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
	if got := ErrIssueNotFound.WithDetails("id 1").Status(); got != http.StatusNotFound {
		t.Errorf("Status() = %d, want 404", got)
	}
}
