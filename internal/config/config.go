package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete webdiag configuration
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Host        HostConfig        `mapstructure:"host" yaml:"host"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
}

// LoggingConfig controls the tool's own debug log
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where the debug log is written (default: <config dir>/logs)
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// LogLevel maps category patterns to levels for every diagnostics
	// provider; the "default" entry sets the global minimum level
	LogLevel map[string]string `mapstructure:"log_level" yaml:"log_level,omitempty"`
}

// HostConfig overrides host environment detection
type HostConfig struct {
	// Mode is "auto" (detect from the environment), "always" or "never" (default: "auto")
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Home overrides the detected home directory
	Home string `mapstructure:"home" yaml:"home,omitempty"`
}

// DiagnosticsSettings are the settings of one diagnostics registration.
// The root diagnostics section holds them for the default registration and
// each entry under prefixes holds them for one prefixed registration.
type DiagnosticsSettings struct {
	// Enabled turns the provider off without removing its registration (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the provider's minimum level (default: "warning")
	Level string `mapstructure:"level" yaml:"level"`
	// FileName is the log file name inside the application log directory
	FileName string `mapstructure:"file_name" yaml:"file_name,omitempty"`
	// FileSizeLimit is the size in bytes at which the file rolls over (default: 10MB)
	FileSizeLimit int64 `mapstructure:"file_size_limit" yaml:"file_size_limit"`
	// RetainedFileCountLimit is the number of rolled files to keep (default: 2)
	RetainedFileCountLimit int `mapstructure:"retained_file_count_limit" yaml:"retained_file_count_limit"`
	// Compress gzips rolled files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
	// FlushPeriod is how often buffered records are written out (default: 1s)
	FlushPeriod time.Duration `mapstructure:"flush_period" yaml:"flush_period"`
	// LogLevel maps category patterns to levels
	LogLevel map[string]string `mapstructure:"log_level" yaml:"log_level,omitempty"`
}

// DiagnosticsConfig is the diagnostics section
type DiagnosticsConfig struct {
	DiagnosticsSettings `mapstructure:",squash" yaml:",inline"`
	// Prefixes holds the settings of prefixed registrations
	Prefixes map[string]DiagnosticsSettings `mapstructure:"prefixes" yaml:"prefixes,omitempty"`
}

// Section paths and defaults shared with the composition code.
const (
	LoggingSection     = "logging"
	DiagnosticsSection = "diagnostics"
	PrefixesKey        = "prefixes"

	DefaultFileName          = "diagnostics.txt"
	DefaultDiagnosticsLevel  = "warning"
	DefaultFileSizeLimit     = 10 * 1024 * 1024
	DefaultRetainedFileCount = 2
	DefaultFlushPeriod       = time.Second
)

// DefaultDiagnostics returns the settings a registration uses when its
// section sets nothing.
func DefaultDiagnostics() DiagnosticsSettings {
	return DiagnosticsSettings{
		Enabled:                true,
		Level:                  DefaultDiagnosticsLevel,
		FileName:               DefaultFileName,
		FileSizeLimit:          DefaultFileSizeLimit,
		RetainedFileCountLimit: DefaultRetainedFileCount,
		FlushPeriod:            DefaultFlushPeriod,
	}
}

// PrefixFileName returns the default file name of a prefixed registration.
func PrefixFileName(prefix string) string {
	return prefix + "-" + DefaultFileName
}

// KeyDelimiter separates the parts of a configuration path. It is not "."
// because category names and prefixes may contain dots.
const KeyDelimiter = ":"

// Path joins parts into a configuration path.
func Path(parts ...string) string {
	return strings.Join(parts, KeyDelimiter)
}

// PrefixSection returns the section path of a prefixed registration.
func PrefixSection(prefix string) string {
	return Path(DiagnosticsSection, PrefixesKey, prefix)
}

// NewViper returns a viper instance using KeyDelimiter.
func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Host: HostConfig{
			Mode: "auto",
		},
		Diagnostics: DiagnosticsConfig{
			DiagnosticsSettings: DefaultDiagnostics(),
		},
	}
}

// SetDefaults registers default values with v, which must come from NewViper
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	// Logging defaults
	v.SetDefault("logging:enabled", defaults.Logging.Enabled)
	v.SetDefault("logging:level", defaults.Logging.Level)
	v.SetDefault("logging:max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging:max_backups", defaults.Logging.MaxBackups)

	// Host defaults
	v.SetDefault("host:mode", defaults.Host.Mode)

	// Diagnostics defaults apply to the default registration only; prefixed
	// sections fall back to DefaultDiagnostics when they are decoded.
	d := defaults.Diagnostics
	v.SetDefault("diagnostics:enabled", d.Enabled)
	v.SetDefault("diagnostics:level", d.Level)
	v.SetDefault("diagnostics:file_name", d.FileName)
	v.SetDefault("diagnostics:file_size_limit", d.FileSizeLimit)
	v.SetDefault("diagnostics:retained_file_count_limit", d.RetainedFileCountLimit)
	v.SetDefault("diagnostics:compress", d.Compress)
	v.SetDefault("diagnostics:flush_period", d.FlushPeriod)
}

// Load unmarshals and validates the configuration held by v, which must come
// from NewViper
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the configuration held by v, falling back to defaults when it
// cannot be loaded
func Get(v *viper.Viper) *Config {
	cfg, err := Load(v)
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "webdiag")
	}
	// Fall back to ~/.config/webdiag
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webdiag"
	}
	return filepath.Join(home, ".config", "webdiag")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidHostModes returns the accepted host.mode values
func ValidHostModes() []string {
	return []string{"auto", "always", "never"}
}
