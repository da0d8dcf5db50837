package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DomainError is an error with a stable code. Codes read IM-<AREA>-<NNNN>;
// NNNN divided by ten is the HTTP status the error maps to.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError declares an error kind. Kinds are compared by code, so the
// package-level values below can be refined with WithDetails and WithCause
// and still match with errors.Is.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	msg := "[" + e.Code + "] " + e.ClientMessage()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details, e.g. the offending field.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// Detailf is WithDetails with formatting.
func (e *DomainError) Detailf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy wrapping cause. The cause is logged but never
// sent to clients.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// ClientMessage is the text sent to observers and HTTP clients.
func (e *DomainError) ClientMessage() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// Status is the HTTP status encoded in the code, or 500 when the code does
// not carry one.
func (e *DomainError) Status() int {
	return StatusForCode(e.Code)
}

// StatusForCode maps IM-ISSU-4040 to 404. Codes without a trailing
// four-digit 4xx or 5xx class map to 500.
func StatusForCode(code string) int {
	i := strings.LastIndexByte(code, '-')
	if i < 0 || len(code)-i-1 != 4 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil {
		return http.StatusInternalServerError
	}
	if status := n / 10; status >= 400 && status < 600 && http.StatusText(status) != "" {
		return status
	}
	return http.StatusInternalServerError
}

// AsDomainError finds the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}

// IsDomainError reports whether err is a DomainError with code, or any
// DomainError when code is empty.
func IsDomainError(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && (code == "" || de.Code == code)
}

// GetErrorCode returns err's code, or "" for errors outside the taxonomy.
func GetErrorCode(err error) string {
	if de, ok := AsDomainError(err); ok {
		return de.Code
	}
	return ""
}

// ClientMessage returns the client-facing message for any error. Errors
// outside the taxonomy read as internal errors.
func ClientMessage(err error) string {
	if de, ok := AsDomainError(err); ok {
		return de.ClientMessage()
	}
	return ErrInternalServer.Message
}

// Issue errors.
var (
	ErrValidation    = NewDomainError("IM-ISSU-4001", "validation failed")
	ErrIssueNotFound = NewDomainError("IM-ISSU-4040", "issue not found")
)

// ErrHistoryRecord marks a failed version-history commit or push. It is
// logged only.
var ErrHistoryRecord = NewDomainError("IM-HIST-5001", "history record failed")

// System errors.
var (
	ErrBadRequest         = NewDomainError("IM-SYS-4000", "bad request")
	ErrRateLimited        = NewDomainError("IM-SYS-4290", "too many requests")
	ErrInternalServer     = NewDomainError("IM-SYS-5000", "internal server error")
	ErrPersistence        = NewDomainError("IM-SYS-5001", "persistence failed")
	ErrServiceUnavailable = NewDomainError("IM-SYS-5030", "service unavailable")
)
