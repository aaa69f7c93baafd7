package handlers

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	maxStringLength   = 255
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
	birthDateLayout   = time.DateOnly
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// validate collects errors and returns a *ValidationError if any exist.
func validate(checks ...func() string) error {
	var errs []string
	for _, check := range checks {
		if msg := check(); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func requireNonEmpty(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", field)
	}
	return ""
}

func checkMaxLength(field, value string, max int) string {
	if len(value) > max {
		return fmt.Sprintf("%s exceeds maximum length of %d", field, max)
	}
	return ""
}

func checkMinLength(field, value string, min int) string {
	if value != "" && len(value) < min {
		return fmt.Sprintf("%s must be at least %d characters", field, min)
	}
	return ""
}

func checkMaxBytes(field, value string, max int) string {
	if len(value) > max {
		return fmt.Sprintf("%s must not exceed %d bytes", field, max)
	}
	return ""
}

func checkNumber(field string, value *float64) string {
	if value == nil {
		return fmt.Sprintf("%s is required", field)
	}
	if *value < 0 {
		return fmt.Sprintf("%s must not be negative", field)
	}
	return ""
}

func checkEmail(field, value string) string {
	if value == "" {
		return ""
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return fmt.Sprintf("%s must be a valid email address", field)
	}
	return ""
}

func checkDate(field, value string) string {
	if value == "" {
		return ""
	}
	d, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	}
	if d.After(time.Now()) {
		return fmt.Sprintf("%s must not be in the future", field)
	}
	return ""
}

func checkConfirmed(field, value, confirmation string) string {
	if value != "" && value != confirmation {
		return fmt.Sprintf("%s confirmation does not match", field)
	}
	return ""
}

// required returns the standard pair of checks for a bounded, mandatory string field.
func required(field, value string) []func() string {
	return []func() string{
		func() string { return requireNonEmpty(field, value) },
		func() string { return checkMaxLength(field, value, maxStringLength) },
	}
}
