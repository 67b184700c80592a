package compiler

import (
	"fmt"

	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// Aggregation functions the compiler recognizes
var aggregates = map[string]bool{
	"min": true,
}

// resolveFind resolves the :find specification against the unified
// relation set: aggregates wrap the relation binding their arguments,
// and the answer relation is projected down to the find symbols when
// its symbol list differs from them.
func (u *unifier) resolveFind(find []query.FindElement) (plan.Node, error) {
	for _, elem := range find {
		agg, ok := elem.(query.FindAggregate)
		if !ok {
			continue
		}
		if err := u.resolveAggregate(agg); err != nil {
			return nil, err
		}
	}

	symbols := findSymbols(find)

	rel := u.findRelation(symbols)
	if rel == nil {
		return nil, &FindUnboundError{Symbols: u.unboundOf(symbols)}
	}

	if symbolsEqual(rel.symbols, symbols) {
		return rel.node, nil
	}

	positions, err := u.syms.resolveAll(symbols)
	if err != nil {
		return nil, err
	}
	return &plan.Project{Child: rel.node, Positions: positions}, nil
}

// resolveAggregate wraps the relation binding the aggregate's arguments
// in an Aggregate node. Constant arguments are hoisted into inputs
// first.
func (u *unifier) resolveAggregate(agg query.FindAggregate) error {
	if !aggregates[agg.Function] {
		return fmt.Errorf("unrecognized aggregate function %s", agg.Function)
	}

	symbols := u.inputs.substitute(agg.Args)
	for _, sym := range symbols {
		u.syms.register(sym)
	}
	vars := u.inputs.withoutInputs(dedup(symbols))

	var host *relation
	for _, r := range u.relations {
		if !r.bindsAll(vars) {
			continue
		}
		if host != nil {
			return &AggregateUnboundError{Function: agg.Function, Symbols: vars}
		}
		host = r
	}
	if host == nil {
		return &AggregateUnboundError{Function: agg.Function, Symbols: vars}
	}

	argPos, err := u.syms.resolveAll(symbols)
	if err != nil {
		return err
	}

	for i, r := range u.relations {
		if r == host {
			u.relations[i] = &relation{
				tag:     host.tag,
				symbols: host.symbols,
				deps:    host.deps,
				node:    &plan.Aggregate{Name: agg.Function, Child: host.node, ArgPos: argPos},
			}
			break
		}
	}
	return nil
}

// findSymbols flattens the find spec into its variables; aggregates
// contribute their variable arguments.
func findSymbols(find []query.FindElement) []query.Symbol {
	var symbols []query.Symbol
	for _, elem := range find {
		switch e := elem.(type) {
		case query.FindVariable:
			symbols = append(symbols, e.Symbol)
		case query.FindAggregate:
			for _, arg := range e.Args {
				if !arg.IsConst() {
					symbols = append(symbols, arg.Var)
				}
			}
		}
	}
	return dedup(symbols)
}

// findRelation locates the relation binding every find symbol
func (u *unifier) findRelation(symbols []query.Symbol) *relation {
	for _, r := range u.relations {
		if r.bindsAll(symbols) {
			return r
		}
	}
	return nil
}

// unboundOf names the symbols no relation binds; when every symbol is
// bound somewhere but no single relation covers them all, the whole
// list is reported.
func (u *unifier) unboundOf(symbols []query.Symbol) []query.Symbol {
	var unbound []query.Symbol
	for _, sym := range symbols {
		if !u.bound(sym) {
			unbound = append(unbound, sym)
		}
	}
	if len(unbound) == 0 {
		return symbols
	}
	return unbound
}
