package registry

import (
	"errors"
	"fmt"
)

// ConfigError reports a registry misconfiguration: duplicate or unknown
// variants, malformed module contributions. These are fatal at startup
// and must never surface during trip evaluation.
type ConfigError struct {
	Family  Family
	Variant string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Family != "" && e.Variant != "":
		return fmt.Sprintf("registry config error: %s/%s: %s", e.Family, e.Variant, e.Message)
	case e.Family != "":
		return fmt.Sprintf("registry config error: %s: %s", e.Family, e.Message)
	default:
		return fmt.Sprintf("registry config error: %s", e.Message)
	}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
