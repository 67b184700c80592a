package compiler

import (
	"time"

	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
	"github.com/wbrown/janus-dataflow/dataflow/trace"
)

// CompileRules compiles a rule set into one plan per distinct rule
// head. Definitions sharing a head are merged into a disjunction
// projecting the head variables. Rules compile independently: a rule
// referencing another rule (or itself) keeps the reference as a
// RuleExpr node for the executor to resolve, which is what makes
// recursion work.
func (c *Compiler) CompileRules(rs query.RuleSet) ([]plan.Rule, error) {
	type group struct {
		name string
		vars []query.Symbol
		defs []query.RuleDef
	}

	var order []string
	groups := make(map[string]*group)
	for _, def := range rs {
		head := def.Head()
		g, ok := groups[head]
		if !ok {
			g = &group{name: def.Name, vars: def.Vars}
			groups[head] = g
			order = append(order, head)
		}
		g.defs = append(g.defs, def)
	}

	rules := make([]plan.Rule, 0, len(order))
	for _, head := range order {
		g := groups[head]
		start := time.Now()

		where := g.defs[0].Clauses
		if len(g.defs) > 1 {
			branches := make([]query.Clause, len(g.defs))
			for i, def := range g.defs {
				branches[i] = &query.And{Clauses: def.Clauses}
			}
			where = []query.Clause{&query.OrJoin{Vars: g.vars, Clauses: branches}}
		}

		node, err := c.compileRuleBody(g.vars, where)
		if err != nil {
			return nil, err
		}

		trace.Emit(c.options.Tracer, trace.RuleCompiled, time.Since(start), map[string]interface{}{
			"rule": g.name,
		})
		rules = append(rules, plan.Rule{Name: g.name, Plan: node})
	}

	return rules, nil
}

// compileRuleBody compiles one grouped rule body, seeded with the head
// variables, and projects the result onto them.
func (c *Compiler) compileRuleBody(headVars []query.Symbol, where []query.Clause) (plan.Node, error) {
	inputs := newInputSet()
	syms := newSymbolTable()
	for _, v := range headVars {
		syms.register(v)
	}

	u := newUnifier(syms, inputs, c.attrs)
	if err := c.compileWhere(u, inputs, where); err != nil {
		return nil, err
	}

	rel := u.findRelation(headVars)
	if rel == nil {
		return nil, &FindUnboundError{Symbols: u.unboundOf(headVars)}
	}

	positions, err := syms.resolveAll(headVars)
	if err != nil {
		return nil, err
	}

	return &plan.Project{Child: rel.node, Positions: positions}, nil
}
