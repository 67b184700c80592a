package compiler

import (
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// NormalizedClause is one flattened leaf of the WHERE tree, tagged with
// the logical scope that produced it.
type NormalizedClause struct {
	ID      int
	Tag     Tag
	Clause  query.Clause // Leaf payload: Lookup, EntityPattern, HasAttr, Filter, Pred, or RuleInvocation
	Symbols []query.Symbol
	Negated bool
	Deps    []query.Symbol // Variables that must be bound before introduction
}

// normalizer flattens a WHERE tree into tagged clauses, hoisting
// constant predicate and rule arguments into inputs.
type normalizer struct {
	inputs     *inputSet
	nextScope  int
	nextClause int
	clauses    []NormalizedClause
}

func newNormalizer(inputs *inputSet) *normalizer {
	return &normalizer{inputs: inputs, nextScope: 1}
}

// normalize flattens the clause tree. The result is in source order;
// ids are assigned in emission order.
func (n *normalizer) normalize(where []query.Clause) ([]NormalizedClause, error) {
	if err := n.walk(rootTag(), where); err != nil {
		return nil, err
	}
	return n.clauses, nil
}

func (n *normalizer) walk(tag Tag, clauses []query.Clause) error {
	for _, clause := range clauses {
		switch c := clause.(type) {
		case *query.And:
			if err := n.walk(tag.push(n.freshStep(Conjunction, nil)), c.Clauses); err != nil {
				return err
			}

		case *query.Or:
			if err := n.walk(tag.push(n.freshStep(Disjunction, nil)), c.Clauses); err != nil {
				return err
			}

		case *query.OrJoin:
			if err := n.walk(tag.push(n.freshStep(Disjunction, c.Vars)), c.Clauses); err != nil {
				return err
			}

		case *query.Not:
			// A negated clause introduces no new bindings: everything
			// below this node depends on all of its own symbols.
			start := len(n.clauses)
			if err := n.walk(tag.push(n.freshStep(Conjunction, nil)), c.Clauses); err != nil {
				return err
			}
			for i := start; i < len(n.clauses); i++ {
				n.clauses[i].Negated = true
				n.clauses[i].Deps = dedup(n.clauses[i].Symbols)
			}

		case *query.Lookup:
			n.emit(tag, c, c.Symbols(), nil)

		case *query.EntityPattern:
			n.emit(tag, c, c.Symbols(), nil)

		case *query.HasAttr:
			n.emit(tag, c, c.Symbols(), nil)

		case *query.Filter:
			n.emit(tag, c, c.Symbols(), nil)

		case *query.Pred:
			symbols := n.inputs.substitute(c.Args)
			n.emit(tag, &query.Pred{Op: c.Op, Args: varArgs(symbols)}, symbols, dedup(symbols))

		case *query.RuleInvocation:
			// A rule invocation names a relation maintained by the
			// executor, so it produces bindings like a data pattern
			// does; only negation forces its symbols into deps.
			symbols := n.inputs.substitute(c.Args)
			n.emit(tag, &query.RuleInvocation{Name: c.Name, Args: varArgs(symbols)}, symbols, nil)

		default:
			// Grammar admits no other clause; nothing to do.
		}
	}
	return nil
}

func (n *normalizer) freshStep(method Method, projection []query.Symbol) Step {
	step := Step{Method: method, Scope: n.nextScope, Projection: projection}
	n.nextScope++
	return step
}

func (n *normalizer) emit(tag Tag, clause query.Clause, symbols, deps []query.Symbol) {
	n.clauses = append(n.clauses, NormalizedClause{
		ID:      n.nextClause,
		Tag:     tag,
		Clause:  clause,
		Symbols: symbols,
		Deps:    deps,
	})
	n.nextClause++
}

// varArgs rebuilds an argument list from substituted symbols
func varArgs(symbols []query.Symbol) []query.FnArg {
	args := make([]query.FnArg, len(symbols))
	for i, s := range symbols {
		args[i] = query.Var(s)
	}
	return args
}

// dedup returns the symbols with duplicates removed, preserving order
func dedup(symbols []query.Symbol) []query.Symbol {
	result := make([]query.Symbol, 0, len(symbols))
	seen := make(map[query.Symbol]bool, len(symbols))
	for _, s := range symbols {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
