// Package compiler translates parsed Datalog queries and rules into
// relational dataflow plans.
//
// File organization:
//   - compiler.go: Compiler struct and the CompileQuery entry point
//   - normalize.go: WHERE-tree flattening and constant hoisting
//   - reorder.go: dependency-driven clause ordering
//   - unify.go: the unification driver over partial relations
//   - relation.go: relations and the Join/Antijoin/Union combine rules
//   - find.go: :find resolution (aggregates and projection)
//   - rules.go: rule grouping and compilation
//   - errors.go: the error taxonomy
//
// Start with CompileQuery to understand the pipeline flow.
package compiler

import (
	"time"

	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
	"github.com/wbrown/janus-dataflow/dataflow/schema"
	"github.com/wbrown/janus-dataflow/dataflow/trace"
)

// Options configures a Compiler
type Options struct {
	Tracer trace.Handler // Optional stage tracing
}

// Compiler compiles queries and rules against a fixed schema. A
// compiler is stateless across compilations and safe for concurrent
// use; the schema resolver is read-only.
type Compiler struct {
	attrs   schema.Resolver
	options Options
}

// New creates a compiler over the given schema
func New(attrs schema.Resolver, options Options) *Compiler {
	return &Compiler{attrs: attrs, options: options}
}

// CompileQuery compiles one query into a plan plus its ordered input
// map. Compilation is deterministic: the same query and schema produce
// the same plan.
func (c *Compiler) CompileQuery(q *query.Query) (*plan.CompiledQuery, error) {
	start := time.Now()
	trace.Emit(c.options.Tracer, trace.CompileBegin, 0, map[string]interface{}{
		"query": q.String(),
	})

	inputs := newInputSet()
	for i, sym := range q.In {
		inputs.addParam(sym, i)
	}

	syms := newSymbolTable()
	u := newUnifier(syms, inputs, c.attrs)

	if err := c.compileWhere(u, inputs, q.Where); err != nil {
		trace.Emit(c.options.Tracer, trace.CompileFailed, time.Since(start), map[string]interface{}{
			"error": err,
		})
		return nil, err
	}

	result, err := u.resolveFind(q.Find)
	if err != nil {
		trace.Emit(c.options.Tracer, trace.CompileFailed, time.Since(start), map[string]interface{}{
			"error": err,
		})
		return nil, err
	}

	compiled := &plan.CompiledQuery{
		Plan:    result,
		Inputs:  inputs.list(),
		Symbols: syms.symbols(),
	}

	trace.Emit(c.options.Tracer, trace.CompileComplete, time.Since(start), map[string]interface{}{
		"inputs.count": len(compiled.Inputs),
	})
	return compiled, nil
}

// compileWhere runs the normalize -> reorder -> unify pipeline over a
// WHERE tree using the given unifier.
func (c *Compiler) compileWhere(u *unifier, inputs *inputSet, where []query.Clause) error {
	stage := time.Now()
	clauses, err := newNormalizer(inputs).normalize(where)
	if err != nil {
		return err
	}
	trace.Emit(c.options.Tracer, trace.NormalizeComplete, time.Since(stage), map[string]interface{}{
		"clauses.count": len(clauses),
		"inputs.count":  len(inputs.list()),
	})

	stage = time.Now()
	ordered := reorder(clauses)
	trace.Emit(c.options.Tracer, trace.ReorderComplete, time.Since(stage), map[string]interface{}{
		"clauses.count": len(ordered),
	})

	stage = time.Now()
	if err := u.unify(ordered); err != nil {
		return err
	}
	trace.Emit(c.options.Tracer, trace.UnifyComplete, time.Since(stage), map[string]interface{}{
		"relations.count": len(u.relations),
	})

	return nil
}
