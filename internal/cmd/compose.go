package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/diagnostics"
	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/hostenv"
	"github.com/Iron-Ham/webdiag/internal/logging"
)

// fs is the file system providers and log readers use.
var fs = afero.NewOsFs()

// composition is everything a command needs to attach and use diagnostics.
type composition struct {
	cfg     *config.Config
	source  *config.Source
	host    hostenv.Context
	builder *diagnostics.Builder
	bus     *event.Bus
	logger  *logging.Logger

	attempts []event.RegistrationEvent
}

// compose loads configuration, detects the host and creates a builder with
// the baseline filter configuration. Nothing is attached yet.
func compose() (*composition, error) {
	cfg, err := config.Load(settings)
	if err != nil {
		return nil, errors.NewValidationError("invalid configuration").WithCause(err)
	}

	logger, err := toolLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	env, err := hostenv.FromEnvironment()
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to read host environment: %w", err)
	}
	host := hostenv.Override(env, cfg.Host.Mode, cfg.Host.Home)

	c := &composition{
		cfg:    cfg,
		host:   host,
		bus:    event.NewBus(),
		logger: logger,
	}
	c.bus.Subscribe(event.TypeRegistration, func(e event.Event) {
		if re, ok := e.(event.RegistrationEvent); ok {
			c.attempts = append(c.attempts, re)
		}
	})

	c.source = config.NewSource(settings, config.WithBus(c.bus), config.WithLogger(logger))
	c.builder = diagnostics.NewBuilder(c.source, host,
		diagnostics.WithFs(fs),
		diagnostics.WithBus(c.bus),
		diagnostics.WithLogger(logger),
	)
	if err := c.builder.AddConfiguration(c.source.Section(config.LoggingSection)); err != nil {
		_ = logger.Close()
		return nil, err
	}
	return c, nil
}

// attach attaches the configured registrations plus prefixes.
func (c *composition) attach(prefixes []string) error {
	if err := c.builder.AttachConfigured(); err != nil {
		return err
	}
	for _, p := range prefixes {
		if err := c.builder.Attach(diagnostics.PrefixKey(p)); err != nil {
			return err
		}
	}
	return nil
}

func (c *composition) close() {
	_ = c.logger.Close()
}

// toolLogger opens webdiag's own debug log when logging is enabled.
func toolLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NopLogger(), nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(config.ConfigDir(), "logs")
	}
	logger, err := logging.NewLoggerWithRotation(fs, dir, cfg.Level, logging.RotationConfig{
		MaxSize:    logging.MB(cfg.MaxSizeMB),
		MaxBackups: cfg.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return logger, nil
}

// keyFor returns the registration key for a --prefix flag value.
func keyFor(prefix string) diagnostics.Key {
	if prefix == "" {
		return diagnostics.DefaultKey()
	}
	return diagnostics.PrefixKey(prefix)
}
