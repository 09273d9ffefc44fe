package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "execution.executors")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all
// validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Execution.Executors < 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.executors",
			Value:   c.Execution.Executors,
			Message: "must be at least 1",
		})
	}
	if c.Execution.Validators < 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.validators",
			Value:   c.Execution.Validators,
			Message: "must be at least 1",
		})
	}
	if c.Execution.MaxFailures < 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.max_failures",
			Value:   c.Execution.MaxFailures,
			Message: "must be at least 1",
		})
	}
	if p := c.Execution.Mock.ExecutionPassProbability; p < 0 || p > 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.mock.execution_pass_probability",
			Value:   p,
			Message: "must be between 0 and 1",
		})
	}
	if p := c.Execution.Mock.ValidationPassProbability; p < 0 || p > 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.mock.validation_pass_probability",
			Value:   p,
			Message: "must be between 0 and 1",
		})
	}
	if c.Execution.Mock.DelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "execution.mock.delay_ms",
			Value:   c.Execution.Mock.DelayMs,
			Message: "must not be negative",
		})
	}
	if lvl := strings.ToLower(c.Logging.Level); lvl != "" && !slices.Contains(ValidLogLevels(), lvl) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
