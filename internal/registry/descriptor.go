package registry

import "fmt"

// Kind identifies a service kind, for example "logging.provider".
type Kind string

// Lifetime controls how often a descriptor's factory runs.
type Lifetime int

const (
	// Singleton factories run at most once per container.
	Singleton Lifetime = iota
	// Transient factories run on every resolve.
	Transient
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// Factory builds a service instance. It may resolve its own dependencies
// from the container.
type Factory func(c *Container) (any, error)

// Descriptor describes one registered service.
type Descriptor struct {
	// Kind is the service kind the descriptor is resolved under.
	Kind Kind
	// Name identifies the implementation. TryAddEnumerable uses (Kind, Name)
	// to detect duplicates; it is optional for Add and TryAdd.
	Name string
	// Lifetime defaults to Singleton.
	Lifetime Lifetime
	// Factory builds the instance.
	Factory Factory
}

// Instance returns a singleton descriptor that always yields v.
func Instance(kind Kind, name string, v any) Descriptor {
	return Descriptor{
		Kind:     kind,
		Name:     name,
		Lifetime: Singleton,
		Factory:  func(*Container) (any, error) { return v, nil },
	}
}

// String returns "kind" or "kind/name".
func (d Descriptor) String() string {
	if d.Name == "" {
		return string(d.Kind)
	}
	return string(d.Kind) + "/" + d.Name
}

func (d Descriptor) valid() bool {
	return d.Kind != "" && d.Factory != nil
}
