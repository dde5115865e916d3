package diagnostics

import (
	"slices"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/hostenv"
	"github.com/Iron-Ham/webdiag/internal/logging"
	"github.com/Iron-Ham/webdiag/internal/options"
	"github.com/Iron-Ham/webdiag/internal/registry"
)

// ProviderKind is the capability kind diagnostics registrations add.
const ProviderKind = logging.ProviderKind

// Builder is the composition root diagnostics registrations attach to. It
// owns the service registry, the shared filter pipeline and the ledger of
// completed registrations.
//
// A Builder is not safe for concurrent use; attach during startup, then
// call Build.
type Builder struct {
	services *registry.Registry
	filters  *options.Pipeline[filter.Options]
	ledger   *registry.Ledger
	keys     map[registry.Token]Key
	config   *config.Source
	host     hostenv.Context

	fs     afero.Fs
	bus    *event.Bus
	logger *logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithFs sets the file system providers write to (default: the OS).
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) { b.fs = fs }
}

// WithBus publishes an event.RegistrationEvent for every attach attempt and
// is handed on to the options monitor.
func WithBus(bus *event.Bus) Option {
	return func(b *Builder) { b.bus = bus }
}

// WithLogger sets the logger composition is reported to.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithRegistry attaches to an existing registry instead of a fresh one.
func WithRegistry(r *registry.Registry) Option {
	return func(b *Builder) { b.services = r }
}

// WithLedger records registrations in an existing ledger, so several
// builders over the same registry share duplicate detection.
func WithLedger(l *registry.Ledger) Option {
	return func(b *Builder) { b.ledger = l }
}

// NewBuilder creates a Builder reading configuration from src and host
// details from host. The filter pipeline starts with the default level
// configurator.
func NewBuilder(src *config.Source, host hostenv.Context, opts ...Option) *Builder {
	b := &Builder{
		filters: options.NewPipeline[filter.Options](),
		keys:    make(map[registry.Token]Key),
		config:  src,
		host:    host,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.services == nil {
		b.services = registry.New()
	}
	if b.ledger == nil {
		b.ledger = registry.NewLedger()
	}
	if b.config == nil {
		b.config = config.NewSource(nil)
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.logger == nil {
		b.logger = logging.NopLogger()
	}
	_ = b.filters.Configure(filter.DefaultLevel())
	return b
}

// Services returns the registry.
func (b *Builder) Services() *registry.Registry { return b.services }

// Filters returns the shared filter pipeline.
func (b *Builder) Filters() *options.Pipeline[filter.Options] { return b.filters }

// Ledger returns the ledger of completed registrations.
func (b *Builder) Ledger() *registry.Ledger { return b.ledger }

// Config returns the configuration source.
func (b *Builder) Config() *config.Source { return b.config }

// AddConfiguration applies the log_level map of section to every provider
// and reloads filters when section changes. It adds one configurator and one
// change-token source.
func (b *Builder) AddConfiguration(section config.Section) error {
	cp := b.filters.Checkpoint()
	if err := b.filters.Configure(filter.FromSection(section)); err != nil {
		return err
	}
	src := config.NewSectionChangeTokenSource[filter.Options](section.Path(), section)
	if err := b.filters.AddChangeTokenSource(src); err != nil {
		b.filters.Rollback(cp)
		return err
	}
	return nil
}

// Attach registers diagnostics for key. Attaching a key that is already
// registered, or attaching on an ineligible host, does nothing and returns
// nil. If registration fails nothing is left behind and a later Attach of
// the same key may retry.
func (b *Builder) Attach(key Key) error {
	return attach(b, key, b.host, register)
}

// Attached returns the key this builder registered under the same token as
// key, which may differ from key in case. It returns key itself when this
// builder has not attached it.
func (b *Builder) Attached(key Key) Key {
	if k, ok := b.keys[key.token()]; ok {
		return k
	}
	return key
}

// AttachConfigured attaches the default key and every prefix found under the
// diagnostics prefixes section, in name order.
func (b *Builder) AttachConfigured() error {
	if err := b.Attach(DefaultKey()); err != nil {
		return err
	}
	prefixes := b.config.Section(config.Path(config.DiagnosticsSection, config.PrefixesKey)).Children()
	slices.Sort(prefixes)
	for _, p := range prefixes {
		if err := b.Attach(PrefixKey(p)); err != nil {
			return err
		}
	}
	return nil
}

// Composition is the result of Build.
type Composition struct {
	// Container resolves the registered services.
	Container *registry.Container
	// Filters serves the current filter options.
	Filters *options.Monitor[filter.Options]
	// Factory creates loggers writing to every resolved provider.
	Factory *logging.Factory
}

// Build seals the registry and the filter pipeline, resolves every attached
// provider and returns the composed services.
func (b *Builder) Build() (*Composition, error) {
	if b.services.Sealed() || b.filters.Sealed() {
		return nil, errors.Wrap(errors.ErrSealed, "build diagnostics")
	}

	monitor := options.NewMonitor(b.filters, options.WithBus(b.bus))
	container := b.services.Build()

	providers, err := registry.ResolveAll[logging.Provider](container, ProviderKind)
	if err != nil {
		_ = monitor.Close()
		_ = container.Close()
		return nil, err
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	b.logger.Info("diagnostics composed", "providers", names, "registrations", b.ledger.Len())

	return &Composition{
		Container: container,
		Filters:   monitor,
		Factory:   logging.NewFactory(monitor, providers...),
	}, nil
}

// Close stops watching configuration and closes every provider.
func (c *Composition) Close() error {
	return errors.Join(c.Filters.Close(), c.Container.Close())
}
