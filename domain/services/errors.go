package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrLotteryNotFound       = errors.New("lottery not found")
	ErrLotteryAlreadyRunning = errors.New("a lottery is already running")
	ErrLotteryFinished       = errors.New("lottery is finished")
	ErrLotteryClosed         = errors.New("lottery does not accept entries")
	ErrLotteryFull           = errors.New("lottery is full")
	ErrLotteryNotDrawn       = errors.New("lottery has not been drawn yet")
	ErrInvalidTransition     = errors.New("invalid lottery status transition")
	ErrDuplicateEntry        = errors.New("user is already registered for this lottery")
	ErrEntryNotFound         = errors.New("entry not found")
	ErrInvalidNumbers        = errors.New("invalid numbers")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrSamePassword          = errors.New("new password must differ from the current one")
)

// ValidationError carries per-field messages for rejected input
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field, keeping the first one
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors returns true if any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns e as an error when it holds messages, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
