package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/registry"
)

// ProviderKind is the registry kind diagnostics providers are registered under.
const ProviderKind registry.Kind = "logging.provider"

// Provider is a destination for diagnostics records. Providers accept every
// record they are handed; the Factory applies the filter rules.
type Provider interface {
	// Name identifies the provider in filter rules.
	Name() string
	// Handler returns the handler records are written through.
	Handler() slog.Handler
	// Close flushes pending records and releases the destination.
	Close() error
}

// FileOptions configure a FileProvider.
type FileOptions struct {
	// Directory holds the log file.
	Directory string
	// FileName is the name of the active log file.
	FileName string
	// FileSizeLimit is the size in bytes at which the file rolls over.
	// Zero disables rolling.
	FileSizeLimit int64
	// RetainedFileCountLimit is the number of rolled files to keep.
	RetainedFileCountLimit int
	// FlushPeriod batches records and writes them out on this period.
	// Zero writes every record immediately.
	FlushPeriod time.Duration
	// Compress gzips rolled files.
	Compress bool
}

// Path returns the full path of the active log file.
func (o FileOptions) Path() string {
	return filepath.Join(o.Directory, o.FileName)
}

// FileProvider writes JSON records to a rolling file, optionally batching
// them. It is safe for concurrent use.
type FileProvider struct {
	name    string
	opts    FileOptions
	writer  *RotatingWriter
	batch   *batchWriter
	handler slog.Handler

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewFileProvider opens the log file described by opts on fs.
func NewFileProvider(fs afero.Fs, name string, opts FileOptions) (*FileProvider, error) {
	if opts.FileName == "" {
		return nil, fmt.Errorf("file provider %s: file name is required", name)
	}

	rw, err := NewRotatingWriter(fs, opts.Path(), RotationConfig{
		MaxSize:    opts.FileSizeLimit,
		MaxBackups: opts.RetainedFileCountLimit,
		Compress:   opts.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("file provider %s: %w", name, err)
	}

	p := &FileProvider{
		name:   name,
		opts:   opts,
		writer: rw,
		batch:  &batchWriter{out: rw, immediate: opts.FlushPeriod <= 0},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	p.handler = slog.NewJSONHandler(p.batch, &slog.HandlerOptions{
		Level:       filter.LevelTrace,
		ReplaceAttr: levelNames,
	})

	if opts.FlushPeriod > 0 {
		go p.flushLoop(opts.FlushPeriod)
	} else {
		close(p.done)
	}
	return p, nil
}

// levelNames writes levels by their filter names instead of slog's
// "DEBUG-4" style for levels slog does not name.
func levelNames(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(filter.LevelName(lvl))
		}
	}
	return a
}

func (p *FileProvider) flushLoop(period time.Duration) {
	defer close(p.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = p.batch.Flush()
		case <-p.stop:
			return
		}
	}
}

// Name returns the provider name.
func (p *FileProvider) Name() string { return p.name }

// Options returns the options the provider was opened with.
func (p *FileProvider) Options() FileOptions { return p.opts }

// Path returns the active log file path.
func (p *FileProvider) Path() string { return p.writer.FilePath() }

// Handler returns the provider's JSON handler.
func (p *FileProvider) Handler() slog.Handler { return p.handler }

// Flush writes out batched records.
func (p *FileProvider) Flush() error { return p.batch.Flush() }

// Close stops the flush loop, writes out pending records and closes the file.
func (p *FileProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.closeErr = errors.Join(p.batch.Flush(), p.writer.Close())
	})
	return p.closeErr
}

// batchWriter queues whole records so rotation never splits a line.
// slog handlers issue exactly one Write per record.
type batchWriter struct {
	mu        sync.Mutex
	out       *RotatingWriter
	pending   [][]byte
	immediate bool
}

func (b *batchWriter) Write(p []byte) (int, error) {
	if b.immediate {
		return b.out.Write(p)
	}
	rec := append([]byte(nil), p...)
	b.mu.Lock()
	b.pending = append(b.pending, rec)
	b.mu.Unlock()
	return len(p), nil
}

// Flush writes every queued record in order.
func (b *batchWriter) Flush() error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	var errs []error
	for _, rec := range pending {
		if _, err := b.out.Write(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FilterSource supplies the current filter options.
// *options.Monitor[filter.Options] implements it.
type FilterSource interface {
	Get() filter.Options
}

// Factory creates loggers that fan records out to every provider whose
// filter rule admits them.
type Factory struct {
	providers []Provider
	filters   FilterSource
}

// NewFactory creates a Factory. A nil filters admits records at information
// level and above.
func NewFactory(filters FilterSource, providers ...Provider) *Factory {
	return &Factory{
		providers: append([]Provider(nil), providers...),
		filters:   filters,
	}
}

// Providers returns the providers in registration order.
func (f *Factory) Providers() []Provider {
	return append([]Provider(nil), f.providers...)
}

// Logger returns a logger for category.
func (f *Factory) Logger(category string) *Logger {
	return NewHandlerLogger(&fanoutHandler{factory: f, category: category})
}

func (f *Factory) options() filter.Options {
	if f.filters == nil {
		return filter.Options{MinLevel: slog.LevelInfo}
	}
	return f.filters.Get()
}

type fanoutHandler struct {
	factory  *Factory
	category string
	ops      []func(slog.Handler) slog.Handler
}

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	opts := h.factory.options()
	for _, p := range h.factory.providers {
		if opts.Enabled(p.Name(), h.category, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	opts := h.factory.options()
	var errs []error
	for _, p := range h.factory.providers {
		if !opts.Enabled(p.Name(), h.category, r.Level) {
			continue
		}
		ph := p.Handler().WithAttrs([]slog.Attr{slog.String("category", h.category)})
		for _, op := range h.ops {
			ph = op(ph)
		}
		if err := ph.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(ph slog.Handler) slog.Handler { return ph.WithAttrs(attrs) })
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(ph slog.Handler) slog.Handler { return ph.WithGroup(name) })
}

func (h *fanoutHandler) with(op func(slog.Handler) slog.Handler) *fanoutHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &fanoutHandler{
		factory:  h.factory,
		category: h.category,
		ops:      append(ops, op),
	}
}
