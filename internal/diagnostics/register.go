package diagnostics

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/logging"
	"github.com/Iron-Ham/webdiag/internal/registry"
)

// LogDirectory is where providers write, relative to the host home directory.
var LogDirectory = filepath.Join("LogFiles", "Application")

// register adds the provider for key and wires its filter options. The
// provider's file lives under the host home directory; a host without one
// fails to register.
func register(b *Builder, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	if b.host == nil || b.host.HomeDirectory() == "" {
		return errors.NewRegistrationError("cannot place the log file", errors.ErrNoHome).
			WithKind(string(ProviderKind)).
			WithKey(key.String())
	}

	if _, err := b.services.TryAddEnumerable(registry.Descriptor{
		Kind:     ProviderKind,
		Name:     key.ProviderName(),
		Lifetime: registry.Singleton,
		Factory:  b.providerFactory(key),
	}); err != nil {
		return err
	}

	return wireOptions(b, key)
}

// wireOptions appends one change-token source bound to the key's section and
// two configurators: one setting the provider's base level and one applying
// its per-category overrides. Configuration is read only when the options
// are materialized.
func wireOptions(b *Builder, key Key) error {
	section := b.config.Section(key.SectionPath())
	name := key.ProviderName()

	src := config.NewSectionChangeTokenSource[filter.Options](section.Path(), section)
	if err := b.filters.AddChangeTokenSource(src); err != nil {
		return err
	}

	if err := b.filters.ConfigureFunc(func(o *filter.Options) {
		s := b.Settings(key)
		o.AddRule(filter.Rule{Provider: name, Level: baseLevel(s)})
	}); err != nil {
		return err
	}

	return b.filters.ConfigureFunc(func(o *filter.Options) {
		s := b.Settings(key)
		if !s.Enabled {
			return
		}
		for _, category := range slices.Sorted(maps.Keys(s.LogLevel)) {
			lvl, err := filter.ParseLevel(s.LogLevel[category])
			if err != nil {
				continue
			}
			if strings.EqualFold(category, filter.DefaultCategory) {
				category = ""
			}
			o.AddRule(filter.Rule{Provider: name, Category: category, Level: lvl})
		}
	})
}

// Settings decodes the key's section over the defaults. A section that does
// not decode yields the defaults.
func (b *Builder) Settings(key Key) config.DiagnosticsSettings {
	s := config.DefaultDiagnostics()
	s.FileName = key.FileName()

	decoded := s
	if err := b.config.Section(key.SectionPath()).Decode(&decoded); err != nil {
		b.logger.WithKey(key.String()).Warn("invalid diagnostics settings, using defaults", "error", err)
		return s
	}
	if decoded.FileName == "" {
		decoded.FileName = s.FileName
	}
	return decoded
}

func baseLevel(s config.DiagnosticsSettings) slog.Level {
	if !s.Enabled {
		return filter.LevelNone
	}
	lvl, err := filter.ParseLevel(s.Level)
	if err != nil {
		lvl, _ = filter.ParseLevel(config.DefaultDiagnosticsLevel)
	}
	return lvl
}

// LogPath returns the file the key's provider writes, or "" when the host
// has no home directory. A key attached under different casing resolves to
// the file of the attached key.
func (b *Builder) LogPath(key Key) string {
	if b.host == nil || b.host.HomeDirectory() == "" {
		return ""
	}
	return filepath.Join(b.host.HomeDirectory(), LogDirectory, b.Settings(b.Attached(key)).FileName)
}

// providerFactory builds the key's file provider under the host's
// application log directory.
func (b *Builder) providerFactory(key Key) registry.Factory {
	return func(*registry.Container) (any, error) {
		home := b.host.HomeDirectory()
		if home == "" {
			return nil, fmt.Errorf("diagnostics %s: %w", key, errors.ErrNoHome)
		}
		s := b.Settings(key)
		return logging.NewFileProvider(b.fs, key.ProviderName(), logging.FileOptions{
			Directory:              filepath.Join(home, LogDirectory),
			FileName:               s.FileName,
			FileSizeLimit:          s.FileSizeLimit,
			RetainedFileCountLimit: s.RetainedFileCountLimit,
			FlushPeriod:            s.FlushPeriod,
			Compress:               s.Compress,
		})
	}
}
