// Package schema maps attribute keywords to the integer ids compiled
// plans refer to. The compiler only needs the read side (Resolver); the
// write side exists so deployments can build and persist a registry.
package schema

import (
	"fmt"
	"sort"

	"github.com/wbrown/janus-dataflow/dataflow"
)

// Resolver resolves attribute keywords to integer ids. It must be total
// over the schema: unknown attributes yield an UnknownAttributeError.
type Resolver interface {
	AttrID(attr dataflow.Keyword) (int, error)
}

// UnknownAttributeError reports an attribute with no schema mapping
type UnknownAttributeError struct {
	Attr dataflow.Keyword
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %s", e.Attr)
}

// Registry is an in-memory attribute registry
type Registry struct {
	ids    map[string]int
	order  []dataflow.Keyword
	nextID int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]int)}
}

// NewRegistryFromMap creates a registry with explicit id assignments.
// Iteration order of the input map does not matter; ids are taken as
// given.
func NewRegistryFromMap(attrs map[string]int) *Registry {
	r := NewRegistry()

	// Deterministic insertion order for Keywords()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		id := attrs[name]
		r.ids[name] = id
		r.order = append(r.order, dataflow.NewKeyword(name))
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}
	return r
}

// Define assigns the next free id to an attribute, returning the
// existing id if the attribute is already defined.
func (r *Registry) Define(attr dataflow.Keyword) int {
	if id, ok := r.ids[attr.String()]; ok {
		return id
	}
	id := r.nextID
	r.nextID++
	r.ids[attr.String()] = id
	r.order = append(r.order, attr)
	return id
}

// AttrID implements Resolver
func (r *Registry) AttrID(attr dataflow.Keyword) (int, error) {
	id, ok := r.ids[attr.String()]
	if !ok {
		return 0, &UnknownAttributeError{Attr: attr}
	}
	return id, nil
}

// Keywords returns the defined attributes in insertion order
func (r *Registry) Keywords() []dataflow.Keyword {
	result := make([]dataflow.Keyword, len(r.order))
	copy(result, r.order)
	return result
}
