package domain

import (
	"errors"
	"strings"
)

// ErrTaskNotFound is returned when no task exists for a given id.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports required fields that were missing from a request,
// or an otherwise unusable payload.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
