package registry

import (
	"github.com/Iron-Ham/webdiag/internal/errors"
)

// Registry is an ordered, append-only collection of service descriptors.
type Registry struct {
	descriptors []Descriptor
	sealed      bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends a descriptor unconditionally.
func (r *Registry) Add(d Descriptor) error {
	if r.sealed {
		return errors.Wrapf(errors.ErrSealed, "add %s", d)
	}
	if !d.valid() {
		return errors.Wrapf(errors.ErrInvalidDescriptor, "add %s", d)
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// TryAdd appends d only if no descriptor of the same kind exists.
// It reports whether d was added.
func (r *Registry) TryAdd(d Descriptor) (bool, error) {
	if r.Count(d.Kind) > 0 {
		return false, nil
	}
	if err := r.Add(d); err != nil {
		return false, err
	}
	return true, nil
}

// TryAddEnumerable appends d only if no descriptor with the same kind and
// name exists, so several implementations of one kind can coexist while
// each implementation is registered once.
func (r *Registry) TryAddEnumerable(d Descriptor) (bool, error) {
	for _, existing := range r.descriptors {
		if existing.Kind == d.Kind && existing.Name == d.Name {
			return false, nil
		}
	}
	if err := r.Add(d); err != nil {
		return false, err
	}
	return true, nil
}

// Len returns the total number of descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Count returns the number of descriptors registered under kind.
func (r *Registry) Count(kind Kind) int {
	n := 0
	for _, d := range r.descriptors {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Descriptors returns the descriptors of kind in registration order.
func (r *Registry) Descriptors(kind Kind) []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Sealed reports whether Build has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// Checkpoint marks the current end of the registry.
type Checkpoint struct{ n int }

// Checkpoint returns a mark that Rollback can return to.
func (r *Registry) Checkpoint() Checkpoint {
	return Checkpoint{n: len(r.descriptors)}
}

// Rollback drops every descriptor appended after cp. It exists so composition
// code can undo a partially applied registration; callers never observe the
// dropped entries.
func (r *Registry) Rollback(cp Checkpoint) {
	if cp.n < 0 || cp.n > len(r.descriptors) {
		return
	}
	clear(r.descriptors[cp.n:])
	r.descriptors = r.descriptors[:cp.n]
}

// Build seals the registry and returns a container over a snapshot of its
// descriptors. Building twice returns independent containers.
func (r *Registry) Build() *Container {
	r.sealed = true
	return newContainer(append([]Descriptor(nil), r.descriptors...))
}
