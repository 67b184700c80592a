package compiler

import (
	"sort"
)

// reorder sorts clauses so that clauses of enclosing scopes surface
// before the clauses of scopes nested within them, and sibling scopes
// follow each other in scope-id order. Sibling order within a scope is
// preserved (ascending clause id), which keeps evaluation deterministic;
// a predicate written before the pattern that binds its operands in the
// same scope keeps its place, and the unifier defers it until they are
// bound.
func reorder(clauses []NormalizedClause) []NormalizedClause {
	result := make([]NormalizedClause, len(clauses))
	copy(result, clauses)

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Tag.IsStrictPrefixOf(b.Tag) {
			return true
		}
		if b.Tag.IsStrictPrefixOf(a.Tag) {
			return false
		}
		if c := a.Tag.Compare(b.Tag); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	return result
}
