package models

import (
	"fmt"
	"strings"
)

// ValidationError is a rule violation on a record that blocks a state change
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
}

// ConfigurationError is missing or unusable configuration such as credentials
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// ConfigLoadError is a template or lexicon document that could not be read
type ConfigLoadError struct {
	Path string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

// ArgumentError is a malformed operator argument
type ArgumentError struct {
	Argument string
	Message  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Message)
}

// MissingCredentials builds the configuration error for unset credential fields
func MissingCredentials(fields []string) *ConfigurationError {
	return &ConfigurationError{
		Field:   "credentials",
		Message: "missing " + strings.Join(fields, ", "),
	}
}
