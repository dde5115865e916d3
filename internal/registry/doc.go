// Package registry is the composition-time service registry used to wire
// logging providers and their options.
//
// A [Registry] is an ordered, append-only multi-map from a service [Kind] to
// [Descriptor]s. Composition code appends to it during startup; [Registry.Build]
// seals it and returns a read-only [Container] that resolves instances.
//
// The registry deliberately stays small: it supports the three add flavours
// composition code needs (Add, TryAdd, TryAddEnumerable), counting, and
// resolving the last or all descriptors of a kind. It is not a reflection
// based container.
//
// A [Ledger] records which (kind, key) pairs have completed a keyed
// registration so that repeated attach calls are no-ops. The ledger is owned
// by the composition root and passed explicitly; there is no global state.
//
// # Thread Safety
//
// Registry and Ledger are built from a single goroutine during startup and
// are not safe for concurrent mutation. Container is safe for concurrent use.
package registry
