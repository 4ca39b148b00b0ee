package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"tripmate/pkg/models"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeContent strips markup from user text and trims surrounding space
func SanitizeContent(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// ValidateContent sanitizes a comment body and checks its length
func ValidateContent(s string) (string, error) {
	clean := SanitizeContent(s)
	if clean == "" {
		return "", models.ErrInvalidInput
	}
	if utf8.RuneCountInString(clean) > models.MaxCommentLength {
		return "", models.ErrInvalidInput
	}
	return clean, nil
}

// ValidateReportReason checks a moderation report reason
func ValidateReportReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return models.ErrInvalidInput
	}
	if len(reason) > 255 {
		return models.ErrInvalidInput
	}
	return nil
}
