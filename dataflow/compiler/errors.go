package compiler

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// All compilation errors are fatal: no partial plan is ever returned.
// Each error carries enough context (clause ids, symbols, tags) for the
// caller to locate the offending source clause.

// UnknownSymbolError reports a variable that was never registered; this
// is an internal invariant violation.
type UnknownSymbolError struct {
	Symbol query.Symbol
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %s", e.Symbol)
}

// FindUnboundError reports find symbols not bound by any relation
type FindUnboundError struct {
	Symbols []query.Symbol
}

func (e *FindUnboundError) Error() string {
	return fmt.Sprintf("find spec contains unbound symbols: %s", joinSymbols(e.Symbols))
}

// PredicateUnboundError reports a predicate whose arguments are not all
// bound in a single relation.
type PredicateUnboundError struct {
	ClauseID int
	Op       query.PredOp
	Symbols  []query.Symbol
}

func (e *PredicateUnboundError) Error() string {
	return fmt.Sprintf("predicate inputs must be bound in a single relation: clause %d (%s %s)",
		e.ClauseID, e.Op.Surface(), joinSymbols(e.Symbols))
}

// AggregateUnboundError reports an aggregate whose arguments are not
// bound together.
type AggregateUnboundError struct {
	Function string
	Symbols  []query.Symbol
}

func (e *AggregateUnboundError) Error() string {
	return fmt.Sprintf("aggregate (%s %s) arguments are not bound together",
		e.Function, joinSymbols(e.Symbols))
}

// UnionIncompatibleError reports a disjunction branch that does not
// bind the required projection.
type UnionIncompatibleError struct {
	Projection []query.Symbol
	Symbols    []query.Symbol
	Tag        Tag
}

func (e *UnionIncompatibleError) Error() string {
	return fmt.Sprintf("union-incompatible relations under %s: branch binds %s but the projection is %s; insert a projection",
		e.Tag, joinSymbols(e.Symbols), joinSymbols(e.Projection))
}

// UnboundNotError reports a negated clause combined under a disjunction
// with no positive partner.
type UnboundNotError struct {
	Tag Tag
}

func (e *UnboundNotError) Error() string {
	return fmt.Sprintf("unbound not under %s", e.Tag)
}

// UnintroducableClausesError reports clauses whose dependencies could
// not be satisfied by any processing order; typically a dependency
// cycle.
type UnintroducableClausesError struct {
	Clauses []NormalizedClause
}

func (e *UnintroducableClausesError) Error() string {
	parts := make([]string, len(e.Clauses))
	for i, c := range e.Clauses {
		parts[i] = fmt.Sprintf("clause %d (deps %s)", c.ID, joinSymbols(c.Deps))
	}
	return "un-introducable clauses: " + strings.Join(parts, ", ")
}

// UnionOfUnionsError reports two union relations meeting under a
// disjunction; an invariant violation during union merging.
type UnionOfUnionsError struct {
	Tag Tag
}

func (e *UnionOfUnionsError) Error() string {
	return fmt.Sprintf("cannot merge two unions under %s", e.Tag)
}

func joinSymbols(symbols []query.Symbol) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
