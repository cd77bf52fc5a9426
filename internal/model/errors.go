package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrUnavailable     = errors.New("database unavailable")
)

// ValidationError reports field-level problems with a profile write.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}
