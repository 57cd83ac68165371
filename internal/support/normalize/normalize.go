// internal/support/normalize/normalize.go

// Package normalize prepares raw user input for classification.
package normalize

import (
	"regexp"
	"strings"

	"support-chat/internal/common/errors"
)

const (
	MinInputLength = 3
	MaxInputLength = 1000
)

// Messages returned to the user when input fails validation.
const (
	MsgTooShort = "Please provide a more detailed question (at least 3 characters)."
	MsgTooLong  = "Query is too long (maximum 1000 characters)."
)

// ValidationError carries the user-facing message for rejected input.
type ValidationError struct {
	Code    errors.ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var harmfulChars = regexp.MustCompile(`[<>"']`)

// Validate checks the raw input against length bounds. Length is measured
// on the trimmed input for the lower bound and the raw input for the upper.
func Validate(raw string) error {
	if len(strings.TrimSpace(raw)) < MinInputLength {
		return &ValidationError{Code: errors.ErrCodeInputTooShort, Message: MsgTooShort}
	}
	if len(raw) > MaxInputLength {
		return &ValidationError{Code: errors.ErrCodeInputTooLong, Message: MsgTooLong}
	}
	return nil
}

// Sanitize collapses whitespace runs to single spaces, trims the ends and
// strips characters that could break downstream prompts or queries.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	sanitized := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	return harmfulChars.ReplaceAllString(sanitized, "")
}

// Normalize validates and sanitizes in one step.
func Normalize(raw string) (string, error) {
	if err := Validate(raw); err != nil {
		return "", err
	}
	return Sanitize(raw), nil
}
