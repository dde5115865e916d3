package config

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/logging"
	"github.com/Iron-Ham/webdiag/internal/options"
)

// Source is a hierarchical configuration tree backed by viper that signals
// every reload through a change token.
// Reads and in-process updates are safe for concurrent use.
type Source struct {
	mu     sync.RWMutex
	v      *viper.Viper
	token  *options.Trigger
	bus    *event.Bus
	logger *logging.Logger

	watchOnce sync.Once
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithBus publishes an event.ConfigReloadedEvent for every reload.
func WithBus(bus *event.Bus) SourceOption {
	return func(s *Source) { s.bus = bus }
}

// WithLogger sets the logger used to report reloads.
func WithLogger(l *logging.Logger) SourceOption {
	return func(s *Source) { s.logger = l }
}

// NewSource wraps v, which must come from NewViper. A nil v gets a fresh
// instance.
func NewSource(v *viper.Viper, opts ...SourceOption) *Source {
	if v == nil {
		v = NewViper()
	}
	s := &Source{
		v:      v,
		token:  options.NewTrigger(),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viper returns the underlying viper instance.
func (s *Source) Viper() *viper.Viper { return s.v }

// ChangeToken returns the token that fires on the next reload.
func (s *Source) ChangeToken() options.ChangeToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Section returns the section at path. The section need not exist.
func (s *Source) Section(path string) Section {
	return Section{src: s, path: strings.ToLower(path)}
}

// Set overrides key in memory and signals a reload.
func (s *Source) Set(key string, value any) {
	s.mu.Lock()
	s.v.Set(key, value)
	s.mu.Unlock()
	s.changed("", nil)
}

// Reload re-reads the config file, if one is configured, and signals a
// reload. A failed read leaves the previous values in place and does not
// fire the change token.
func (s *Source) Reload() error {
	s.mu.Lock()
	path := s.v.ConfigFileUsed()
	var err error
	if path != "" {
		err = s.v.ReadInConfig()
	}
	s.mu.Unlock()

	if err != nil {
		cerr := errors.NewConfigError("cannot reload configuration", err).WithPath(path)
		s.logger.Warn("configuration reload failed", "path", path, "error", err)
		s.bus.Publish(event.NewConfigReloadedEvent(path, cerr))
		return cerr
	}
	s.changed(path, nil)
	return nil
}

// Watch starts watching the config file and signals a reload whenever viper
// re-reads it. Calling Watch more than once has no further effect.
func (s *Source) Watch() {
	s.watchOnce.Do(func() {
		s.v.OnConfigChange(func(e fsnotify.Event) {
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				return
			}
			s.changed(e.Name, nil)
		})
		s.v.WatchConfig()
	})
}

// changed swaps in a fresh token before firing the old one so callbacks that
// re-arm see the new token.
func (s *Source) changed(path string, err error) {
	s.mu.Lock()
	old := s.token
	s.token = options.NewTrigger()
	s.mu.Unlock()

	s.logger.Debug("configuration reloaded", "path", path)
	s.bus.Publish(event.NewConfigReloadedEvent(path, err))
	old.Fire()
}

// lookup walks the merged settings tree to path.
func (s *Source) lookup(path string) any {
	s.mu.RLock()
	var node any = s.v.AllSettings()
	s.mu.RUnlock()

	if path == "" {
		return node
	}
	for _, part := range strings.Split(path, KeyDelimiter) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = m[part]
		if !ok {
			return nil
		}
	}
	return node
}

// Section is a view of one subtree of a Source. Values are read on every
// call, so a Section stays current across reloads.
type Section struct {
	src  *Source
	path string
}

// Path returns the path of the section.
func (s Section) Path() string { return s.path }

// Key returns the full path of key inside the section.
func (s Section) Key(key string) string {
	if s.path == "" {
		return strings.ToLower(key)
	}
	return s.path + KeyDelimiter + strings.ToLower(key)
}

// Exists reports whether the section holds any value.
func (s Section) Exists() bool {
	return s.src.lookup(s.path) != nil
}

// Sub returns the child section at key.
func (s Section) Sub(key string) Section {
	return Section{src: s.src, path: s.Key(key)}
}

// Get returns the raw value at key.
func (s Section) Get(key string) any {
	return s.src.lookup(s.Key(key))
}

// GetString returns the value at key as a string.
func (s Section) GetString(key string) string {
	s.src.mu.RLock()
	defer s.src.mu.RUnlock()
	return s.src.v.GetString(s.Key(key))
}

// GetStringMapString returns the value at key as a map of strings.
func (s Section) GetStringMapString(key string) map[string]string {
	s.src.mu.RLock()
	defer s.src.mu.RUnlock()
	return s.src.v.GetStringMapString(s.Key(key))
}

// Children returns the names of the section's map-valued children.
func (s Section) Children() []string {
	m, ok := s.src.lookup(s.path).(map[string]any)
	if !ok {
		return nil
	}
	var names []string
	for name, v := range m {
		if _, ok := v.(map[string]any); ok {
			names = append(names, name)
		}
	}
	return names
}

// Decode decodes the section into target, which must be a pointer. Fields
// the section does not set keep their current values, so callers pre-fill
// target with defaults. Durations and log levels may be given as strings.
func (s Section) Decode(target any) error {
	raw := s.src.lookup(s.path)
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook(),
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.NewConfigError("cannot build decoder", err).WithSection(s.path)
	}
	if err := dec.Decode(raw); err != nil {
		return errors.NewConfigError("cannot decode section", err).WithSection(s.path)
	}
	return nil
}

// ChangeToken returns the token that fires on the next reload of the source.
func (s Section) ChangeToken() options.ChangeToken {
	return s.src.ChangeToken()
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		levelHook(),
	)
}

var levelType = reflect.TypeFor[slog.Level]()

func levelHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != levelType {
			return data, nil
		}
		return filter.ParseLevel(reflect.ValueOf(data).String())
	}
}

// SectionChangeTokenSource adapts a Section to options.ChangeTokenSource.
type SectionChangeTokenSource[T any] struct {
	name    string
	section Section
}

// NewSectionChangeTokenSource binds name to the change token of section.
func NewSectionChangeTokenSource[T any](name string, section Section) *SectionChangeTokenSource[T] {
	return &SectionChangeTokenSource[T]{name: name, section: section}
}

// Name returns the source name.
func (s *SectionChangeTokenSource[T]) Name() string { return s.name }

// Section returns the bound section.
func (s *SectionChangeTokenSource[T]) Section() Section { return s.section }

// ChangeToken implements options.ChangeTokenSource.
func (s *SectionChangeTokenSource[T]) ChangeToken() options.ChangeToken {
	return s.section.ChangeToken()
}
