// Package errors provides centralized error definitions and error handling utilities
// for webdiag. It defines the sentinel errors returned by the registry, the
// diagnostics composition code and the configuration layer, a small set of
// typed errors carrying composition context, and classification helpers.
//
// # Error Types
//
// Composition errors describe failures while building a registry:
//   - RegistrationError: a capability could not be registered for a key
//   - ResolutionError: a service kind could not be resolved from a container
//   - ConfigError: a configuration file or section could not be loaded
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//
// Ineligible hosts and duplicate registrations are not errors; the
// diagnostics package treats both as successful no-ops.
//
// # Usage
//
//	err := errors.NewRegistrationError("invalid prefix", errors.ErrInvalidKey).
//	    WithKind("logging.provider").WithKey("bad prefix")
//
//	if errors.Is(err, errors.ErrInvalidKey) { ... }
//
//	var regErr *errors.RegistrationError
//	if errors.As(err, &regErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Composition sentinel errors
var (
	// ErrInvalidKey indicates that a registration key is malformed.
	ErrInvalidKey = New("invalid registration key")
	// ErrSealed indicates a mutation of a registry or pipeline after Build.
	ErrSealed = New("registry is sealed")
	// ErrNotRegistered indicates that no descriptor exists for a service kind.
	ErrNotRegistered = New("service kind not registered")
	// ErrInvalidDescriptor indicates a descriptor without kind or factory.
	ErrInvalidDescriptor = New("invalid service descriptor")
	// ErrNoHome indicates an eligible host that reports no home directory.
	ErrNoHome = New("host home directory is not set")
	// ErrClosed indicates resolution from a closed container.
	ErrClosed = New("container is closed")
)

// Configuration sentinel errors
var (
	// ErrConfigLoad indicates that a configuration source could not be read.
	ErrConfigLoad = New("configuration load failed")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// DiagError is the base interface for all webdiag errors.
type DiagError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the operation may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<label> [k=v, ...]: message: cause".
func (e *baseError) format(label string, parts []string) string {
	prefix := label
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", label, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Composition Errors
// -----------------------------------------------------------------------------

// RegistrationError reports that a capability could not be registered.
// A failed registration leaves no partial state behind, so it is retryable
// once the cause (usually the key) is fixed.
//
// Example:
//
//	err := errors.NewRegistrationError("prefix rejected", errors.ErrInvalidKey).
//	    WithKind("logging.provider").WithKey("a b")
//	fmt.Println(err) // "registration error [kind=logging.provider, key=a b]: prefix rejected: invalid registration key"
type RegistrationError struct {
	baseError
	Kind string
	Key  string
}

// NewRegistrationError creates a new RegistrationError.
func NewRegistrationError(message string, cause error) *RegistrationError {
	return &RegistrationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithKind adds the capability kind to the error context.
func (e *RegistrationError) WithKind(kind string) *RegistrationError {
	e.Kind = kind
	return e
}

// WithKey adds the registration key to the error context.
func (e *RegistrationError) WithKey(key string) *RegistrationError {
	e.Key = key
	return e
}

// WithSeverity sets the error severity.
func (e *RegistrationError) WithSeverity(s Severity) *RegistrationError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *RegistrationError) Error() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	return e.format("registration error", parts)
}

// Is checks if this error matches the target.
func (e *RegistrationError) Is(target error) bool {
	if _, ok := target.(*RegistrationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ResolutionError reports that a service could not be resolved from a container.
type ResolutionError struct {
	baseError
	Kind string
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(kind string, cause error) *ResolutionError {
	return &ResolutionError{
		baseError: baseError{
			message:    "cannot resolve service",
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: false,
		},
		Kind: kind,
	}
}

// Error returns the formatted error message.
func (e *ResolutionError) Error() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	}
	return e.format("resolution error", parts)
}

// Is checks if this error matches the target.
func (e *ResolutionError) Is(target error) bool {
	if _, ok := target.(*ResolutionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ConfigError reports a configuration file or section that could not be used.
//
// Example:
//
//	err := errors.NewConfigError("cannot read config", ioErr).WithPath("/etc/webdiag.yaml")
type ConfigError struct {
	baseError
	Path    string
	Section string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true, // the file may be mid-write during a reload
			userFacing: true,
		},
	}
}

// WithPath adds the configuration file path to the error context.
func (e *ConfigError) WithPath(path string) *ConfigError {
	e.Path = path
	return e
}

// WithSection adds the configuration section path to the error context.
func (e *ConfigError) WithSection(section string) *ConfigError {
	e.Section = section
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Section != "" {
		parts = append(parts, fmt.Sprintf("section=%s", e.Section))
	}
	return e.format("config error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	if errors.Is(target, ErrConfigLoad) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("prefix must not be empty")
//	err = err.WithField("prefix").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var diagErr DiagError
	if As(err, &diagErr) {
		return diagErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var diagErr DiagError
	if As(err, &diagErr) {
		return diagErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement DiagError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var diagErr DiagError
	if As(err, &diagErr) {
		return diagErr.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to build container")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
