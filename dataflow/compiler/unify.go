package compiler

import (
	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
	"github.com/wbrown/janus-dataflow/dataflow/schema"
)

// unifier maintains the evolving set of partial relations while clauses
// are introduced one by one. Clauses whose dependencies are not yet
// satisfied are deferred and retried; a deferred queue that stops
// making progress is fatal.
type unifier struct {
	syms      *symbolTable
	inputs    *inputSet
	attrs     schema.Resolver
	relations []*relation
}

func newUnifier(syms *symbolTable, inputs *inputSet, attrs schema.Resolver) *unifier {
	return &unifier{syms: syms, inputs: inputs, attrs: attrs}
}

// unify introduces every clause, draining the deferred queue to a fixed
// point, then collapses the remaining relations into as few as the
// query's structure allows.
func (u *unifier) unify(clauses []NormalizedClause) error {
	pending := clauses
	for len(pending) > 0 {
		var deferred []NormalizedClause
		progress := false

		for _, nc := range pending {
			if !u.ready(nc) {
				deferred = append(deferred, nc)
				continue
			}
			if err := u.introduce(nc); err != nil {
				return err
			}
			progress = true
		}

		if len(deferred) > 0 && !progress {
			return &UnintroducableClausesError{Clauses: deferred}
		}
		pending = deferred
	}

	return u.collapse()
}

// ready reports whether a clause's dependencies are satisfied. A
// predicate needs each operand bound somewhere (host selection decides
// whether they are bound together); any other clause needs its
// dependencies bound together in a single relation.
func (u *unifier) ready(nc NormalizedClause) bool {
	deps := u.inputs.withoutInputs(dedup(nc.Deps))
	if len(deps) == 0 {
		return true
	}

	if _, ok := nc.Clause.(*query.Pred); ok {
		for _, sym := range deps {
			if !u.bound(sym) {
				return false
			}
		}
		return true
	}

	for _, r := range u.relations {
		if r.bindsAll(deps) {
			return true
		}
	}
	return false
}

// bound reports whether a variable is bound by any relation
func (u *unifier) bound(sym query.Symbol) bool {
	for _, r := range u.relations {
		if r.binds(sym) {
			return true
		}
	}
	return false
}

// introduce registers the clause's symbols, builds its seed relation,
// and folds the seed over the conflicting relations.
func (u *unifier) introduce(nc NormalizedClause) error {
	for _, sym := range nc.Symbols {
		u.syms.register(sym)
	}

	if pred, ok := nc.Clause.(*query.Pred); ok {
		return u.introducePredicate(nc, pred)
	}

	seed, err := u.planClause(nc)
	if err != nil {
		return err
	}

	return u.fold(seed, false)
}

// fold combines a seed relation with every conflicting relation,
// deepest shared context first, and installs the result. When
// disjunctionOnly is set, only disjunctive partners are considered
// (used for branch-local predicate relations, which must not re-join
// the relation they already wrap).
func (u *unifier) fold(seed *relation, disjunctionOnly bool) error {
	combined := seed
	used := make([]bool, len(u.relations))
	skipped := make([]bool, len(u.relations))

	for {
		best, bestDepth := -1, -1
		for i, r := range u.relations {
			if used[i] || skipped[i] || !r.conflicts(combined) {
				continue
			}
			shared := sharedContext(r.tag, combined.tag)
			if disjunctionOnly && shared.last().Method != Disjunction {
				continue
			}
			if depth := len(shared); depth > bestDepth {
				best, bestDepth = i, depth
			}
		}
		if best == -1 {
			break
		}

		result, deferred, err := u.combine(u.relations[best], combined, false)
		if err != nil {
			return err
		}
		if deferred {
			skipped[best] = true
			continue
		}

		used[best] = true
		combined = result
	}

	next := make([]*relation, 0, len(u.relations)+1)
	for i, r := range u.relations {
		if !used[i] {
			next = append(next, r)
		}
	}
	u.relations = append(next, combined)
	return nil
}

// introducePredicate attaches a predicate to the relation that binds
// its operands. A predicate conjoined with its host filters it in
// place; a predicate in a deeper disjunctive branch wraps the host's
// plan into a branch-local relation that unions with its siblings.
func (u *unifier) introducePredicate(nc NormalizedClause, pred *query.Pred) error {
	operands := u.inputs.withoutInputs(dedup(nc.Symbols))

	host, err := u.predicateHost(nc, pred, operands)
	if err != nil {
		return err
	}

	argPos, err := u.syms.resolveAll(nc.Symbols)
	if err != nil {
		return err
	}
	wrapped := &plan.PredExpr{Op: pred.Op, ArgPos: argPos, Child: host.node}

	if nc.Negated {
		// The negation folds back over the host as an antijoin.
		return u.fold(&relation{
			tag:     nc.Tag,
			symbols: operands,
			negated: true,
			deps:    append([]query.Symbol{}, nc.Deps...),
			node:    wrapped,
		}, false)
	}

	if nc.Tag.IsPrefixOf(host.tag) {
		// Conjoined with the host: filter it in place.
		for i, r := range u.relations {
			if r == host {
				u.relations[i] = &relation{
					tag:     host.tag,
					symbols: host.symbols,
					deps:    dedup(append(append([]query.Symbol{}, host.deps...), operands...)),
					node:    wrapped,
				}
				break
			}
		}
		return nil
	}

	// The predicate lives in a disjunctive branch the host is outside
	// of: the filtered host becomes that branch's relation.
	return u.fold(&relation{
		tag:     nc.Tag,
		symbols: operands,
		deps:    append([]query.Symbol{}, nc.Deps...),
		node:    wrapped,
	}, true)
}

// predicateHost selects the single conjunctive relation binding all
// predicate operands, preferring the most specific scope.
func (u *unifier) predicateHost(nc NormalizedClause, pred *query.Pred, operands []query.Symbol) (*relation, error) {
	best, bestDepth, ambiguous := (*relation)(nil), -1, false
	for _, r := range u.relations {
		if !r.bindsAll(operands) {
			continue
		}
		shared := sharedContext(r.tag, nc.Tag)
		if shared.last().Method != Conjunction {
			continue
		}
		switch depth := len(shared); {
		case depth > bestDepth:
			best, bestDepth, ambiguous = r, depth, false
		case depth == bestDepth:
			ambiguous = true
		}
	}

	if best == nil || ambiguous {
		return nil, &PredicateUnboundError{ClauseID: nc.ID, Op: pred.Op, Symbols: operands}
	}
	return best, nil
}

// planClause builds the seed relation for a non-predicate clause
func (u *unifier) planClause(nc NormalizedClause) (*relation, error) {
	var node plan.Node

	switch c := nc.Clause.(type) {
	case *query.Lookup:
		attrID, err := u.attrID(c.Attr)
		if err != nil {
			return nil, err
		}
		varPos, err := u.syms.resolve(c.V)
		if err != nil {
			return nil, err
		}
		node = &plan.Lookup{EntityID: c.Entity, AttrID: attrID, VarPos: varPos}

	case *query.EntityPattern:
		attrPos, err := u.syms.resolve(c.A)
		if err != nil {
			return nil, err
		}
		valPos, err := u.syms.resolve(c.V)
		if err != nil {
			return nil, err
		}
		node = &plan.Entity{EntityID: c.Entity, AttrPos: attrPos, ValPos: valPos}

	case *query.HasAttr:
		attrID, err := u.attrID(c.Attr)
		if err != nil {
			return nil, err
		}
		entityPos, err := u.syms.resolve(c.E)
		if err != nil {
			return nil, err
		}
		valPos, err := u.syms.resolve(c.V)
		if err != nil {
			return nil, err
		}
		node = &plan.HasAttr{EntityPos: entityPos, AttrID: attrID, ValPos: valPos}

	case *query.Filter:
		attrID, err := u.attrID(c.Attr)
		if err != nil {
			return nil, err
		}
		entityPos, err := u.syms.resolve(c.E)
		if err != nil {
			return nil, err
		}
		node = &plan.Filter{EntityPos: entityPos, AttrID: attrID, Value: c.Value}

	case *query.RuleInvocation:
		argPos, err := u.syms.resolveAll(nc.Symbols)
		if err != nil {
			return nil, err
		}
		node = &plan.RuleExpr{Name: c.Name, ArgPos: argPos}

	default:
		return nil, &UnintroducableClausesError{Clauses: []NormalizedClause{nc}}
	}

	return &relation{
		tag:     nc.Tag,
		symbols: u.inputs.withoutInputs(dedup(nc.Symbols)),
		negated: nc.Negated,
		deps:    append([]query.Symbol{}, nc.Deps...),
		node:    node,
	}, nil
}

// attrID resolves an attribute keyword through the schema
func (u *unifier) attrID(attr dataflow.Keyword) (int, error) {
	return u.attrs.AttrID(attr)
}

// collapse repeatedly combines the most closely related conflicting
// pair until no two remaining relations share a variable. On success
// the context holds the single answer relation (plus any disjoint
// relations the find resolver will reject).
func (u *unifier) collapse() error {
	for len(u.relations) > 1 {
		bi, bj, bestDepth := -1, -1, -1
		for i := 0; i < len(u.relations); i++ {
			for j := i + 1; j < len(u.relations); j++ {
				if !u.relations[i].conflicts(u.relations[j]) {
					continue
				}
				depth := len(sharedContext(u.relations[i].tag, u.relations[j].tag))
				if depth > bestDepth {
					bi, bj, bestDepth = i, j, depth
				}
			}
		}
		if bi == -1 {
			break
		}

		combined, _, err := u.combine(u.relations[bi], u.relations[bj], true)
		if err != nil {
			return err
		}

		next := make([]*relation, 0, len(u.relations)-1)
		for k, r := range u.relations {
			if k != bi && k != bj {
				next = append(next, r)
			}
		}
		u.relations = append(next, combined)
	}
	return nil
}
