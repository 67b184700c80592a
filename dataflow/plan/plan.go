// Package plan defines the relational dataflow expressions the compiler
// emits. Node shapes are the external contract consumed by the
// downstream incremental dataflow engine: attributes appear only as
// resolved integer ids, variables only as positional ids.
package plan

import (
	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// Node is a relational dataflow expression
type Node interface {
	node() // Private marker method
}

// Ensure our types implement Node
func (*Lookup) node()    {}
func (*Entity) node()    {}
func (*HasAttr) node()   {}
func (*Filter) node()    {}
func (*Join) node()      {}
func (*Antijoin) node()  {}
func (*Union) node()     {}
func (*Project) node()   {}
func (*Aggregate) node() {}
func (*PredExpr) node()  {}
func (*RuleExpr) node()  {}

// Lookup scans the values of a known entity and attribute
type Lookup struct {
	EntityID int64
	AttrID   int
	VarPos   int
}

// Entity scans all attributes of a known entity
type Entity struct {
	EntityID int64
	AttrPos  int
	ValPos   int
}

// HasAttr scans all entities carrying a known attribute
type HasAttr struct {
	EntityPos int
	AttrID    int
	ValPos    int
}

// Filter scans entities whose attribute has a known value
type Filter struct {
	EntityPos int
	AttrID    int
	Value     dataflow.Value
}

// Join is an equi-join of two plans on a single variable
type Join struct {
	Left    Node
	Right   Node
	JoinPos int
}

// Antijoin removes from Left the bindings present in Right, keyed on
// JoinPos. Right must bind every key position.
type Antijoin struct {
	Left    Node
	Right   Node
	JoinPos []int
}

// Union merges child plans; every child binds exactly Positions, in
// order.
type Union struct {
	Positions []int
	Children  []Node
}

// Project narrows a plan to the given positions, in order
type Project struct {
	Child     Node
	Positions []int
}

// Aggregate applies a named aggregation function over the child plan
type Aggregate struct {
	Name   string
	Child  Node
	ArgPos []int
}

// PredExpr filters the child plan by a comparison predicate. The
// operator encoding (LT, LTE, GT, GTE, EQ, NEQ) is part of the external
// contract.
type PredExpr struct {
	Op     query.PredOp
	ArgPos []int
	Child  Node
}

// RuleExpr references a rule relation by name; the executor resolves
// it, which is what makes recursive rules work.
type RuleExpr struct {
	Name   string
	ArgPos []int
}

// Binding says where an input's value comes from: a hoisted constant or
// an externally supplied parameter.
type Binding struct {
	Const *dataflow.Value
	Input int // Zero-based position in the :in clause; valid when Const is nil
}

// IsConst reports whether the binding is a hoisted constant
func (b Binding) IsConst() bool {
	return b.Const != nil
}

// InputEntry maps one synthetic variable to its binding
type InputEntry struct {
	Var     query.Symbol
	Binding Binding
}

// CompiledQuery is the final output of a query compilation
type CompiledQuery struct {
	Plan    Node
	Inputs  []InputEntry
	Symbols []query.Symbol // Position-indexed variable names, for rendering
}

// Rule is the final output of a rule compilation
type Rule struct {
	Name string
	Plan Node
}
