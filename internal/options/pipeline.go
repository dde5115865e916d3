package options

import (
	"fmt"

	"github.com/Iron-Ham/webdiag/internal/errors"
)

// Configurator mutates an options value while it is being materialized.
type Configurator[T any] interface {
	Configure(opts *T)
}

// ConfiguratorFunc adapts a function to Configurator.
type ConfiguratorFunc[T any] func(opts *T)

// Configure calls f(opts).
func (f ConfiguratorFunc[T]) Configure(opts *T) { f(opts) }

// ChangeTokenSource hands out change tokens for one origin of options data.
// After a token fires, ChangeToken must return a fresh, unfired token.
type ChangeTokenSource[T any] interface {
	Name() string
	ChangeToken() ChangeToken
}

// Pipeline accumulates the configurators and change-token sources for one
// options type. It is not safe for concurrent use.
type Pipeline[T any] struct {
	configurators []Configurator[T]
	sources       []ChangeTokenSource[T]
	sealed        bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline[T any]() *Pipeline[T] {
	return &Pipeline[T]{}
}

// Configure appends c to the configurators.
func (p *Pipeline[T]) Configure(c Configurator[T]) error {
	if p.sealed {
		return errors.Wrap(errors.ErrSealed, "add configurator")
	}
	if c == nil {
		return errors.NewValidationError("configurator must not be nil").WithField("configurator")
	}
	p.configurators = append(p.configurators, c)
	return nil
}

// ConfigureFunc appends fn as a configurator.
func (p *Pipeline[T]) ConfigureFunc(fn func(*T)) error {
	if fn == nil {
		return p.Configure(nil)
	}
	return p.Configure(ConfiguratorFunc[T](fn))
}

// AddChangeTokenSource appends s to the change-token sources.
func (p *Pipeline[T]) AddChangeTokenSource(s ChangeTokenSource[T]) error {
	if p.sealed {
		return errors.Wrap(errors.ErrSealed, "add change token source")
	}
	if s == nil {
		return errors.NewValidationError("change token source must not be nil").WithField("source")
	}
	p.sources = append(p.sources, s)
	return nil
}

// ConfiguratorCount returns the number of configurators.
func (p *Pipeline[T]) ConfiguratorCount() int { return len(p.configurators) }

// SourceCount returns the number of change-token sources.
func (p *Pipeline[T]) SourceCount() int { return len(p.sources) }

// Sources returns the change-token sources in registration order.
func (p *Pipeline[T]) Sources() []ChangeTokenSource[T] {
	return append([]ChangeTokenSource[T](nil), p.sources...)
}

// Checkpoint marks the current length of both lists.
type Checkpoint struct {
	configurators int
	sources       int
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("configurators=%d sources=%d", c.configurators, c.sources)
}

// Checkpoint returns a mark that Rollback can return to.
func (p *Pipeline[T]) Checkpoint() Checkpoint {
	return Checkpoint{configurators: len(p.configurators), sources: len(p.sources)}
}

// Rollback drops everything appended after cp.
func (p *Pipeline[T]) Rollback(cp Checkpoint) {
	if cp.configurators >= 0 && cp.configurators <= len(p.configurators) {
		clear(p.configurators[cp.configurators:])
		p.configurators = p.configurators[:cp.configurators]
	}
	if cp.sources >= 0 && cp.sources <= len(p.sources) {
		clear(p.sources[cp.sources:])
		p.sources = p.sources[:cp.sources]
	}
}

// Seal stops further additions.
func (p *Pipeline[T]) Seal() { p.sealed = true }

// Sealed reports whether Seal has been called.
func (p *Pipeline[T]) Sealed() bool { return p.sealed }

// Materialize applies every configurator, in order, to a zero T.
func (p *Pipeline[T]) Materialize() T {
	var v T
	for _, c := range p.configurators {
		c.Configure(&v)
	}
	return v
}
