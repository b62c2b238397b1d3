// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Engine errors.
	ErrConfiguration         = errors.New("configuration error")
	ErrNormalizationMismatch = errors.New("merchant key does not survive normalization")
	ErrMalformedTransaction  = errors.New("malformed transaction")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigurationError describes a fatal problem in the static pattern configuration.
type ConfigurationError struct {
	Err    error
	Source string // File or table the item came from
	Item   string // Category or signature name
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Item != "" {
		msg += fmt.Sprintf(" (%s)", e.Item)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is lets errors.Is match ErrConfiguration for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError for the given item.
func NewConfigurationError(source, item string, err error) error {
	return &ConfigurationError{Source: source, Item: item, Err: err}
}

// MalformedError builds a per-record error for a transaction that cannot be processed.
func MalformedError(rawID, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedTransaction, rawID, reason)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
