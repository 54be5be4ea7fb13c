package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for status changes admins may not make
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError represents a single validation error. Index is the position
// of the offending item in a batch and is omitted for single-record payloads.
type ValidationError struct {
	Index   *int        `json:"index,omitempty"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors is returned by services when a payload fails validation
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
