package registry

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/webdiag/internal/errors"
)

// slot holds one descriptor and, for singletons, its lazily built instance.
type slot struct {
	desc Descriptor
	once sync.Once
	val  any
	err  error
}

// Container resolves services from a sealed registry snapshot.
// It is safe for concurrent use. Factories must not depend on themselves.
type Container struct {
	slots  []*slot
	byKind map[Kind][]*slot

	mu     sync.Mutex
	closed bool
}

func newContainer(descriptors []Descriptor) *Container {
	c := &Container{
		slots:  make([]*slot, 0, len(descriptors)),
		byKind: make(map[Kind][]*slot),
	}
	for _, d := range descriptors {
		s := &slot{desc: d}
		c.slots = append(c.slots, s)
		c.byKind[d.Kind] = append(c.byKind[d.Kind], s)
	}
	return c
}

// Has reports whether at least one descriptor of kind is registered.
func (c *Container) Has(kind Kind) bool {
	return len(c.byKind[kind]) > 0
}

// Resolve returns the instance of the last descriptor registered under kind.
func (c *Container) Resolve(kind Kind) (any, error) {
	slots := c.byKind[kind]
	if len(slots) == 0 {
		return nil, errors.NewResolutionError(string(kind), errors.ErrNotRegistered)
	}
	return c.instance(slots[len(slots)-1])
}

// ResolveAll returns the instances of every descriptor registered under kind,
// in registration order. An unregistered kind yields an empty slice.
func (c *Container) ResolveAll(kind Kind) ([]any, error) {
	slots := c.byKind[kind]
	out := make([]any, 0, len(slots))
	for _, s := range slots {
		v, err := c.instance(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Container) instance(s *slot) (any, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.NewResolutionError(s.desc.String(), errors.ErrClosed)
	}

	if s.desc.Lifetime == Transient {
		v, err := s.desc.Factory(c)
		if err != nil {
			return nil, errors.NewResolutionError(s.desc.String(), err)
		}
		return v, nil
	}

	s.once.Do(func() {
		s.val, s.err = s.desc.Factory(c)
		if s.err != nil {
			s.err = errors.NewResolutionError(s.desc.String(), s.err)
		}
	})
	return s.val, s.err
}

// Close closes every singleton that was built and implements io.Closer.
// Closers run concurrently; their errors are joined. Close is idempotent.
// Resolving from a closed container fails with errors.ErrClosed.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	p := pool.New().WithErrors()
	for _, s := range c.slots {
		if s.desc.Lifetime != Singleton {
			continue
		}
		// Unbuilt singletons are never built after Close.
		s.once.Do(func() {
			s.err = errors.NewResolutionError(s.desc.String(), errors.ErrClosed)
		})
		closer, ok := s.val.(io.Closer)
		if !ok || s.err != nil {
			continue
		}
		name := s.desc.String()
		p.Go(func() error {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("close %s: %w", name, err)
			}
			return nil
		})
	}
	return p.Wait()
}

// Resolve resolves kind from c and asserts the result to T.
func Resolve[T any](c *Container, kind Kind) (T, error) {
	var zero T
	v, err := c.Resolve(kind)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.NewResolutionError(string(kind),
			fmt.Errorf("instance of type %T is not %s", v, reflect.TypeFor[T]()))
	}
	return t, nil
}

// ResolveAll resolves every instance of kind and asserts each to T.
func ResolveAll[T any](c *Container, kind Kind) ([]T, error) {
	vs, err := c.ResolveAll(kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		t, ok := v.(T)
		if !ok {
			return nil, errors.NewResolutionError(string(kind),
				fmt.Errorf("instance of type %T is not %s", v, reflect.TypeFor[T]()))
		}
		out = append(out, t)
	}
	return out, nil
}
