package config

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or invalid setting together with a
// remediation hint for the operator.
type ConfigurationError struct {
	Field  string
	Reason string
	Hint   string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Invalid builds a ConfigurationError.
func Invalid(field, reason, hint string) error {
	return &ConfigurationError{Field: field, Reason: reason, Hint: hint}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
