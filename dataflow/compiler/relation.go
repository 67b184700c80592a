package compiler

import (
	"fmt"

	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// relation is a partial plan covering some variables, tagged with the
// logical scope that produced it. Relations are values: combining two
// relations builds a new one and discards the originals.
type relation struct {
	tag     Tag
	symbols []query.Symbol
	negated bool
	deps    []query.Symbol
	node    plan.Node
}

// binds reports whether the relation covers a variable
func (r *relation) binds(sym query.Symbol) bool {
	for _, s := range r.symbols {
		if s == sym {
			return true
		}
	}
	return false
}

// bindsAll reports whether the relation covers every variable
func (r *relation) bindsAll(symbols []query.Symbol) bool {
	for _, sym := range symbols {
		if !r.binds(sym) {
			return false
		}
	}
	return true
}

// conflicts reports whether two relations share at least one variable
func (r *relation) conflicts(other *relation) bool {
	for _, s := range r.symbols {
		if other.binds(s) {
			return true
		}
	}
	return false
}

// sharedSymbols returns the variables bound by both, in a's order
func sharedSymbols(a, b []query.Symbol) []query.Symbol {
	var shared []query.Symbol
	for _, s := range a {
		for _, o := range b {
			if s == o {
				shared = append(shared, s)
				break
			}
		}
	}
	return shared
}

// diffSymbols returns a's variables not present in b, in a's order
func diffSymbols(a, b []query.Symbol) []query.Symbol {
	result := make([]query.Symbol, 0, len(a))
	for _, s := range a {
		found := false
		for _, o := range b {
			if s == o {
				found = true
				break
			}
		}
		if !found {
			result = append(result, s)
		}
	}
	return result
}

// symbolsEqual reports whether two symbol lists are identical,
// including order.
func symbolsEqual(a, b []query.Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// combine merges two conflicting relations. The method is selected by
// the terminal step of their most-specific shared context; the negation
// flags pick join vs antijoin under a conjunction. When the method is a
// disjunction but a side does not yet bind the projection (its branch
// is still under construction), combine reports deferred=true instead
// of failing, unless final is set.
func (u *unifier) combine(l, r *relation, final bool) (result *relation, deferred bool, err error) {
	shared := sharedContext(l.tag, r.tag)

	switch shared.last().Method {
	case Disjunction:
		if l.negated || r.negated {
			return nil, false, &UnboundNotError{Tag: shared}
		}
		return u.union(l, r, shared, final)

	default: // Conjunction
		switch {
		case l.negated && r.negated:
			return nil, false, fmt.Errorf("cannot combine two negated relations under %s", shared)
		case r.negated:
			rel, err := u.antijoin(l, r, shared)
			return rel, false, err
		case l.negated:
			rel, err := u.antijoin(r, l, shared)
			return rel, false, err
		default:
			rel, err := u.join(l, r, shared)
			return rel, false, err
		}
	}
}

// join equi-joins two relations on the first shared variable. Further
// shared variables stay visible in the result: both sides keep binding
// them, the join key is just not compound (multi-key joins would need
// executor support).
func (u *unifier) join(l, r *relation, tag Tag) (*relation, error) {
	shared := sharedSymbols(l.symbols, r.symbols)
	joinVar := shared[0]

	joinPos, err := u.syms.resolve(joinVar)
	if err != nil {
		return nil, err
	}

	symbols := append(append([]query.Symbol{}, shared...), diffSymbols(l.symbols, shared)...)
	symbols = append(symbols, diffSymbols(r.symbols, shared)...)

	return &relation{
		tag:     append(Tag{}, tag...),
		symbols: symbols,
		deps:    dedup(append(append([]query.Symbol{}, l.deps...), r.deps...)),
		node:    &plan.Join{Left: l.node, Right: r.node, JoinPos: joinPos},
	}, nil
}

// antijoin removes the negative relation's bindings from the positive
// one, keyed on every shared variable. The negative relation binds all
// keys by construction.
func (u *unifier) antijoin(pos, neg *relation, tag Tag) (*relation, error) {
	shared := sharedSymbols(pos.symbols, neg.symbols)

	keyPos, err := u.syms.resolveAll(shared)
	if err != nil {
		return nil, err
	}

	symbols := append(append([]query.Symbol{}, shared...), diffSymbols(pos.symbols, shared)...)

	return &relation{
		tag:     append(Tag{}, tag...),
		symbols: symbols,
		deps:    dedup(append(append([]query.Symbol{}, pos.deps...), neg.deps...)),
		node:    &plan.Antijoin{Left: pos.node, Right: neg.node, JoinPos: keyPos},
	}, nil
}

// union merges two disjunction branches. The projection is the or-join
// projection of the scope when present, the first branch's symbols
// otherwise; every child plan is made to bind exactly the projection,
// in order.
func (u *unifier) union(l, r *relation, shared Tag, final bool) (*relation, bool, error) {
	projection := shared.last().Projection
	if projection == nil {
		projection = append([]query.Symbol{}, l.symbols...)
	}

	for _, branch := range []*relation{l, r} {
		if !branch.bindsAll(projection) {
			if !final {
				// The branch has not finished accumulating its
				// clauses; it will union once it binds the projection.
				return nil, true, nil
			}
			return nil, false, &UnionIncompatibleError{
				Projection: projection,
				Symbols:    branch.symbols,
				Tag:        shared,
			}
		}
	}

	positions, err := u.syms.resolveAll(projection)
	if err != nil {
		return nil, false, err
	}

	// A relation accumulates further branches only into the union that
	// its own disjunction scope created; a union built by a nested
	// disjunction is an ordinary branch here.
	lu := asUnion(l.node, positions)
	if lu != nil && !l.tag.Equal(shared) {
		lu = nil
	}
	ru := asUnion(r.node, positions)
	if ru != nil && !r.tag.Equal(shared) {
		ru = nil
	}
	if lu != nil && ru != nil {
		return nil, false, &UnionOfUnionsError{Tag: shared}
	}

	var children []plan.Node
	switch {
	case lu != nil:
		children = append(append([]plan.Node{}, lu.Children...), u.unionChild(r, projection, positions))
	case ru != nil:
		children = append([]plan.Node{u.unionChild(l, projection, positions)}, ru.Children...)
	default:
		children = []plan.Node{
			u.unionChild(l, projection, positions),
			u.unionChild(r, projection, positions),
		}
	}

	return &relation{
		tag:     append(Tag{}, shared...),
		symbols: append([]query.Symbol{}, projection...),
		deps:    dedup(append(append([]query.Symbol{}, l.deps...), r.deps...)),
		node:    &plan.Union{Positions: positions, Children: children},
	}, false, nil
}

// unionChild projects a branch down to the union's projection when its
// symbol list differs from it.
func (u *unifier) unionChild(branch *relation, projection []query.Symbol, positions []int) plan.Node {
	if symbolsEqual(branch.symbols, projection) {
		return branch.node
	}
	return &plan.Project{Child: branch.node, Positions: positions}
}

// asUnion returns the node as a Union when it already merges on the
// same positions.
func asUnion(node plan.Node, positions []int) *plan.Union {
	un, ok := node.(*plan.Union)
	if !ok {
		return nil
	}
	if len(un.Positions) != len(positions) {
		return nil
	}
	for i := range positions {
		if un.Positions[i] != positions[i] {
			return nil
		}
	}
	return un
}
