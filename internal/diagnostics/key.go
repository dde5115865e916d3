package diagnostics

import (
	"strings"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/registry"
)

// ProviderName is the name of the provider attached for the default key.
// Prefixed registrations use "diagnostics:<prefix>".
const ProviderName = "diagnostics"

// Key identifies one diagnostics registration. The zero Key is the default
// (absent) key. Prefixes match case-insensitively, like the configuration
// sections they name: PrefixKey("API") and PrefixKey("api") are the same
// registration, and the first one attached decides the provider and file
// names.
type Key struct {
	prefix string
	set    bool
}

// DefaultKey returns the absent key.
func DefaultKey() Key { return Key{} }

// PrefixKey returns the key for prefix. PrefixKey("") is an explicit empty
// key, distinct from DefaultKey, and fails to attach.
func PrefixKey(prefix string) Key { return Key{prefix: prefix, set: true} }

// IsDefault reports whether k is the absent key.
func (k Key) IsDefault() bool { return !k.set }

// Prefix returns the prefix, or "" for the default key.
func (k Key) Prefix() string { return k.prefix }

// String returns the prefix, or "<default>" for the absent key.
func (k Key) String() string {
	if !k.set {
		return "<default>"
	}
	return k.prefix
}

// ProviderName returns the name of the provider the key attaches. Filter
// rules scoped to the registration use this name.
func (k Key) ProviderName() string {
	if !k.set {
		return ProviderName
	}
	return ProviderName + config.KeyDelimiter + k.prefix
}

// SectionPath returns the configuration section that configures the key.
func (k Key) SectionPath() string {
	if !k.set {
		return config.DiagnosticsSection
	}
	return config.PrefixSection(k.prefix)
}

// FileName returns the log file name used when the section sets none.
func (k Key) FileName() string {
	if !k.set {
		return config.DefaultFileName
	}
	return config.PrefixFileName(k.prefix)
}

func (k Key) token() registry.Token {
	return registry.Token{Kind: ProviderKind, Key: strings.ToLower(k.prefix), Keyed: k.set}
}

func (k Key) validate() error {
	if !k.set || config.ValidSectionName(k.prefix) {
		return nil
	}
	msg := "prefix must start with a letter or digit and contain only letters, digits, '.', '-' or '_'"
	if k.prefix == "" {
		msg = "prefix must not be empty"
	}
	return errors.NewRegistrationError(msg, errors.ErrInvalidKey).
		WithKind(string(ProviderKind)).
		WithKey(k.prefix).
		WithSeverity(errors.SeverityWarning)
}
