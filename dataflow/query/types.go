// Package query defines the intermediate representation the parser
// produces and the compiler consumes: logic variables, function
// arguments, the clause sum type, and the find/in specifications.
package query

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-dataflow/dataflow"
)

// Symbol represents a variable in a query (e.g. ?x, ?name)
type Symbol string

// IsVariable returns true if this is a variable symbol (starts with ?)
func (s Symbol) IsVariable() bool {
	return len(s) > 0 && s[0] == '?'
}

// String returns the string representation
func (s Symbol) String() string {
	return string(s)
}

// FnArg is an argument to a predicate, aggregate, or rule invocation:
// either a variable or a constant.
type FnArg struct {
	Var   Symbol
	Const *dataflow.Value
}

// Var creates a variable argument
func Var(s Symbol) FnArg {
	return FnArg{Var: s}
}

// Const creates a constant argument
func Const(v dataflow.Value) FnArg {
	return FnArg{Const: &v}
}

// IsConst reports whether the argument is a constant
func (a FnArg) IsConst() bool {
	return a.Const != nil
}

// String returns the argument as it appears in query text
func (a FnArg) String() string {
	if a.Const != nil {
		return a.Const.String()
	}
	return a.Var.String()
}

// PredOp identifies a comparison predicate. The encoded names are part
// of the external plan contract and must not be renamed.
type PredOp string

const (
	OpLT  PredOp = "LT"
	OpLTE PredOp = "LTE"
	OpGT  PredOp = "GT"
	OpGTE PredOp = "GTE"
	OpEQ  PredOp = "EQ"
	OpNEQ PredOp = "NEQ"
)

// PredOpFromSymbol maps surface syntax to a predicate operator
func PredOpFromSymbol(s string) (PredOp, bool) {
	switch s {
	case "<":
		return OpLT, true
	case "<=":
		return OpLTE, true
	case ">":
		return OpGT, true
	case ">=":
		return OpGTE, true
	case "=":
		return OpEQ, true
	case "!=", "not=":
		return OpNEQ, true
	default:
		return "", false
	}
}

// Surface returns the operator as written in queries
func (op PredOp) Surface() string {
	switch op {
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpEQ:
		return "="
	case OpNEQ:
		return "!="
	default:
		return string(op)
	}
}

// FindElement represents an element in the find clause
type FindElement interface {
	String() string
	IsAggregate() bool
}

// FindVariable is a simple variable in the find clause
type FindVariable struct {
	Symbol Symbol
}

func (f FindVariable) String() string {
	return f.Symbol.String()
}

func (f FindVariable) IsAggregate() bool {
	return false
}

// FindAggregate represents an aggregate function in the find clause,
// e.g. (min ?t). Arguments may be constants; the compiler hoists those
// into inputs.
type FindAggregate struct {
	Function string
	Args     []FnArg
}

func (f FindAggregate) String() string {
	parts := make([]string, 0, len(f.Args)+1)
	parts = append(parts, f.Function)
	for _, a := range f.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (f FindAggregate) IsAggregate() bool {
	return true
}

// Query represents a parsed query: find spec, externally bound inputs,
// and the where tree.
type Query struct {
	Find  []FindElement
	In    []Symbol
	Where []Clause
}

// String returns a readable representation of the query
func (q Query) String() string {
	var b strings.Builder
	b.WriteString("[:find")
	for _, elem := range q.Find {
		b.WriteString(" " + elem.String())
	}
	if len(q.In) > 0 {
		b.WriteString(" :in")
		for _, sym := range q.In {
			b.WriteString(" " + sym.String())
		}
	}
	b.WriteString(" :where")
	for _, clause := range q.Where {
		b.WriteString(" " + clause.String())
	}
	b.WriteString("]")
	return b.String()
}

// RuleDef is a single rule definition: head name, head variables, and
// the body clauses.
type RuleDef struct {
	Name    string
	Vars    []Symbol
	Clauses []Clause
}

// String returns the definition as it appears in rule text
func (r RuleDef) String() string {
	var b strings.Builder
	b.WriteString("[(" + r.Name)
	for _, v := range r.Vars {
		b.WriteString(" " + v.String())
	}
	b.WriteString(")")
	for _, c := range r.Clauses {
		b.WriteString(" " + c.String())
	}
	b.WriteString("]")
	return b.String()
}

// Head renders the rule head, used to group definitions
func (r RuleDef) Head() string {
	parts := make([]string, 0, len(r.Vars)+1)
	parts = append(parts, r.Name)
	for _, v := range r.Vars {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// RuleSet is a sequence of rule definitions
type RuleSet []RuleDef
