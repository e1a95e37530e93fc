package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(clientRules, ClientConfig{})

	return v
}

// clientRules checks relations between client fields that tags cannot express.
func clientRules(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(ClientConfig)
	if !ok {
		return
	}

	if c.Retry.MaxInterval < c.Retry.InitialInterval {
		sl.ReportError(c.Retry.MaxInterval, "Retry.MaxInterval", "MaxInterval", "backoff_order", "Retry.InitialInterval")
	}

	if c.CircuitBreaker.HalfOpenLimit > c.CircuitBreaker.MaxFailures {
		sl.ReportError(c.CircuitBreaker.HalfOpenLimit, "CircuitBreaker.HalfOpenLimit", "HalfOpenLimit",
			"probe_limit", "CircuitBreaker.MaxFailures")
	}
}

// Validate checks the whole configuration. Callers refuse to start on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		lines = append(lines, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, param)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "url":
		return field + " must be a valid URL"
	case "backoff_order":
		return fmt.Sprintf("%s must not be below %s", field, formatFieldPath("Config.Client."+param))
	case "probe_limit":
		return fmt.Sprintf("%s must not exceed %s", field, formatFieldPath("Config.Client."+param))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath turns "Config.Sync.AllowOverlap" into "sync.allowoverlap".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	return strings.ToLower(strings.Join(parts, "."))
}
