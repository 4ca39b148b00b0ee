package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
)

// Common errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrInvalidInput = errors.New("invalid input")
)

// AppError is a failed gateway call as seen by the client
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewHTTPError maps a non-2xx response to an AppError
func NewHTTPError(statusCode int, message string) *AppError {
	code, sentinel := codeForStatus(statusCode)
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        sentinel,
	}
}

func codeForStatus(status int) (string, error) {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrCodeValidation, ErrInvalidInput
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized, ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden, ErrForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound, ErrNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict, nil
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited, nil
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway:
		return ErrCodeServiceUnavailable, nil
	case status == http.StatusGatewayTimeout:
		return ErrCodeTimeout, nil
	case status >= 500:
		return ErrCodeInternal, nil
	default:
		return ErrCodeBadRequest, nil
	}
}
