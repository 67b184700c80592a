package compiler

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// Method says how the relations of a logical scope combine
type Method uint8

const (
	Conjunction Method = iota
	Disjunction
)

// String returns the method name
func (m Method) String() string {
	if m == Disjunction {
		return "or"
	}
	return "and"
}

// Step is one level of a context tag: a logical scope with a unique id.
// Disjunction steps opened by an or-join carry the projection that must
// survive the disjunction.
type Step struct {
	Method     Method
	Scope      int
	Projection []query.Symbol
}

// Equal compares scope identity; the projection is a property of the
// scope, not part of its identity.
func (s Step) Equal(other Step) bool {
	return s.Method == other.Method && s.Scope == other.Scope
}

// Tag is the ordered path from the root conjunction down to the scope a
// clause or relation belongs to.
type Tag []Step

// rootTag returns the tag every compilation starts from
func rootTag() Tag {
	return Tag{{Method: Conjunction, Scope: 0}}
}

// push returns a new tag extended by one step
func (t Tag) push(step Step) Tag {
	result := make(Tag, len(t), len(t)+1)
	copy(result, t)
	return append(result, step)
}

// Equal reports whether two tags name the same scope path
func (t Tag) Equal(other Tag) bool {
	return len(t) == len(other) && t.IsPrefixOf(other)
}

// IsPrefixOf reports whether t is a (non-strict) prefix of other
func (t Tag) IsPrefixOf(other Tag) bool {
	if len(t) > len(other) {
		return false
	}
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// IsStrictPrefixOf reports whether t is a strict prefix of other
func (t Tag) IsStrictPrefixOf(other Tag) bool {
	return len(t) < len(other) && t.IsPrefixOf(other)
}

// Compare orders tags lexicographically by scope path
func (t Tag) Compare(other Tag) int {
	n := len(t)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if t[i].Scope != other[i].Scope {
			if t[i].Scope < other[i].Scope {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(t) < len(other):
		return -1
	case len(t) > len(other):
		return 1
	default:
		return 0
	}
}

// sharedContext returns the longest common prefix of two tags. Both
// tags are rooted at the same conjunction, so the result is never
// empty.
func sharedContext(a, b Tag) Tag {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i].Equal(b[i]) {
		i++
	}
	return a[:i]
}

// last returns the terminal step of the tag
func (t Tag) last() Step {
	return t[len(t)-1]
}

// String renders the tag for diagnostics
func (t Tag) String() string {
	parts := make([]string, len(t))
	for i, step := range t {
		parts[i] = fmt.Sprintf("(%s %d)", step.Method, step.Scope)
	}
	return strings.Join(parts, "/")
}
