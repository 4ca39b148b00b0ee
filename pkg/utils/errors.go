package utils

import (
	"errors"
	"fmt"
	"strings"

	"tripmate/pkg/models"
)

// UserMessage returns the line shown to a user for err. Server messages are
// kept; well known failure codes get a fixed wording.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.ErrCodeUnauthorized:
			return "not signed in or token expired"
		case models.ErrCodeRateLimited:
			return "too many requests, slow down"
		case models.ErrCodeServiceUnavailable, models.ErrCodeTimeout:
			return "server unavailable, try again later"
		}
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	if IsContextError(err) {
		return "request timed out"
	}
	return err.Error()
}

// CombineErrors combines multiple errors into one
func CombineErrors(errs ...error) error {
	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("multiple errors: %s", strings.Join(messages, "; "))
}
