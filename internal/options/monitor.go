package options

import (
	"sync"

	"github.com/Iron-Ham/webdiag/internal/event"
)

// Monitor serves the current options value of a sealed pipeline and
// rebuilds it after any of the pipeline's sources changes.
// It is safe for concurrent use.
type Monitor[T any] struct {
	pipeline *Pipeline[T]
	bus      *event.Bus

	mu        sync.Mutex
	current   *T
	listeners map[int]func(T)
	nextID    int
	unregs    map[int]func() // source index -> current registration
	closed    bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*monitorConfig)

type monitorConfig struct {
	bus *event.Bus
}

// WithBus publishes an event.OptionsChangedEvent on bus for every change.
func WithBus(bus *event.Bus) MonitorOption {
	return func(c *monitorConfig) { c.bus = bus }
}

// NewMonitor seals p and starts watching its sources.
func NewMonitor[T any](p *Pipeline[T], opts ...MonitorOption) *Monitor[T] {
	var cfg monitorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p.Seal()
	m := &Monitor[T]{
		pipeline:  p,
		bus:       cfg.bus,
		listeners: make(map[int]func(T)),
		unregs:    make(map[int]func()),
	}
	for i, src := range p.sources {
		m.arm(i, src)
	}
	return m
}

// Get returns the materialized options, building them on first use.
func (m *Monitor[T]) Get() T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		v := m.pipeline.Materialize()
		m.current = &v
	}
	return *m.current
}

// OnChange registers fn to receive the rebuilt options after every change.
// The returned function removes the listener.
func (m *Monitor[T]) OnChange(fn func(T)) (remove func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Close stops watching the sources. Get keeps returning the last value.
func (m *Monitor[T]) Close() error {
	m.mu.Lock()
	unregs := m.unregs
	m.unregs = nil
	m.closed = true
	m.mu.Unlock()

	for _, unreg := range unregs {
		unreg()
	}
	return nil
}

func (m *Monitor[T]) arm(i int, src ChangeTokenSource[T]) {
	tok := src.ChangeToken()
	if tok == nil {
		return
	}
	unreg := tok.RegisterCallback(func() { m.changed(i, src) })

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unreg()
		return
	}
	m.unregs[i] = unreg
	m.mu.Unlock()
}

func (m *Monitor[T]) changed(i int, src ChangeTokenSource[T]) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	v := m.pipeline.Materialize()
	m.current = &v
	listeners := make([]func(T), 0, len(m.listeners))
	for id := range m.nextID {
		if fn, ok := m.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	m.mu.Unlock()

	m.arm(i, src)
	m.bus.Publish(event.NewOptionsChangedEvent(src.Name()))
	for _, fn := range listeners {
		fn(v)
	}
}
