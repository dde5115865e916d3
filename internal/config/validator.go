package config

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/Iron-Ham/webdiag/internal/filter"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "diagnostics.file_size_limit")
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

// sectionNameRegex validates registration prefixes, which double as
// configuration section names.
// Names start with an alphanumeric and can contain alphanumeric, dot, hyphen, underscore
var sectionNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidSectionName reports whether name can be used as a registration prefix.
func ValidSectionName(name string) bool {
	return sectionNameRegex.MatchString(name)
}

// ValidLogLevels returns the list of valid levels for the tool's own log
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	// Validate Host config
	errors = append(errors, c.validateHost()...)

	// Validate Diagnostics config, root section first
	errors = append(errors, validateDiagnostics(DiagnosticsSection, c.Diagnostics.DiagnosticsSettings)...)
	for _, prefix := range slices.Sorted(maps.Keys(c.Diagnostics.Prefixes)) {
		field := DiagnosticsSection + "." + PrefixesKey + "." + prefix
		if !ValidSectionName(prefix) {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   prefix,
				Message: "prefix must start with a letter or digit and contain only letters, digits, '.', '-' or '_'",
			})
		}
		errors = append(errors, validateDiagnostics(field, c.Diagnostics.Prefixes[prefix])...)
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	errors = append(errors, validateLogLevels("logging.log_level", c.Logging.LogLevel)...)

	return errors
}

// validateHost validates the HostConfig
func (c *Config) validateHost() []ValidationError {
	var errors []ValidationError

	if c.Host.Mode != "" && !slices.Contains(ValidHostModes(), c.Host.Mode) {
		errors = append(errors, ValidationError{
			Field:   "host.mode",
			Value:   c.Host.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidHostModes(), ", ")),
		})
	}

	return errors
}

// validateDiagnostics validates one set of DiagnosticsSettings found at field.
// Zero values are allowed because they fall back to defaults when decoded.
func validateDiagnostics(field string, s DiagnosticsSettings) []ValidationError {
	var errors []ValidationError

	if s.Level != "" {
		if _, err := filter.ParseLevel(s.Level); err != nil {
			errors = append(errors, ValidationError{
				Field:   field + ".level",
				Value:   s.Level,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(filter.ValidLevels(), ", ")),
			})
		}
	}

	if s.FileSizeLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   field + ".file_size_limit",
			Value:   s.FileSizeLimit,
			Message: "must be non-negative",
		})
	}

	if s.RetainedFileCountLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   field + ".retained_file_count_limit",
			Value:   s.RetainedFileCountLimit,
			Message: "must be non-negative",
		})
	}

	if s.FlushPeriod < 0 {
		errors = append(errors, ValidationError{
			Field:   field + ".flush_period",
			Value:   s.FlushPeriod,
			Message: "must be non-negative",
		})
	}

	if strings.ContainsAny(s.FileName, `/\`) {
		errors = append(errors, ValidationError{
			Field:   field + ".file_name",
			Value:   s.FileName,
			Message: "must be a bare file name",
		})
	}

	errors = append(errors, validateLogLevels(field+".log_level", s.LogLevel)...)

	return errors
}

// validateLogLevels validates a log_level map found at field.
func validateLogLevels(field string, levels map[string]string) []ValidationError {
	var errors []ValidationError

	for _, category := range slices.Sorted(maps.Keys(levels)) {
		level := levels[category]
		if _, err := filter.ParseLevel(level); err != nil {
			errors = append(errors, ValidationError{
				Field:   field + "." + category,
				Value:   level,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(filter.ValidLevels(), ", ")),
			})
		}
		if !filter.ValidPattern(category) {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   category,
				Message: "invalid category pattern",
			})
		}
	}

	return errors
}
