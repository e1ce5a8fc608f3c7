package config

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every invalid field found by Validate.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "no configuration errors"
	}
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Add records a field error.
func (ve *ValidationError) Add(field, messageFmt string, args ...interface{}) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: fmt.Sprintf(messageFmt, args...)})
}

// HasErrors returns true if there are any errors in the collection
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}
