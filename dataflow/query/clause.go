package query

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-dataflow/dataflow"
)

// Clause represents anything that can appear in a query's WHERE clause
type Clause interface {
	String() string
	clause() // Private marker method
}

// Ensure our types implement Clause
func (*Lookup) clause()         {}
func (*EntityPattern) clause()  {}
func (*HasAttr) clause()        {}
func (*Filter) clause()         {}
func (*Pred) clause()           {}
func (*RuleInvocation) clause() {}
func (*And) clause()            {}
func (*Or) clause()             {}
func (*OrJoin) clause()         {}
func (*Not) clause()            {}

// Lookup matches a known entity and attribute, binding the value:
// [eid :attr ?v]
type Lookup struct {
	Entity int64
	Attr   dataflow.Keyword
	V      Symbol
}

func (c *Lookup) String() string {
	return fmt.Sprintf("[%d %s %s]", c.Entity, c.Attr, c.V)
}

// Symbols returns the variables bound by this clause
func (c *Lookup) Symbols() []Symbol {
	return []Symbol{c.V}
}

// EntityPattern matches all attributes of a known entity, binding
// attribute and value: [eid ?a ?v]
type EntityPattern struct {
	Entity int64
	A      Symbol
	V      Symbol
}

func (c *EntityPattern) String() string {
	return fmt.Sprintf("[%d %s %s]", c.Entity, c.A, c.V)
}

// Symbols returns the variables bound by this clause
func (c *EntityPattern) Symbols() []Symbol {
	return dedupSymbols([]Symbol{c.A, c.V})
}

// HasAttr matches entities carrying an attribute, binding entity and
// value: [?e :attr ?v]
type HasAttr struct {
	E    Symbol
	Attr dataflow.Keyword
	V    Symbol
}

func (c *HasAttr) String() string {
	return fmt.Sprintf("[%s %s %s]", c.E, c.Attr, c.V)
}

// Symbols returns the variables bound by this clause
func (c *HasAttr) Symbols() []Symbol {
	return dedupSymbols([]Symbol{c.E, c.V})
}

// Filter matches entities whose attribute has a known value, binding
// the entity: [?e :attr value]
type Filter struct {
	E     Symbol
	Attr  dataflow.Keyword
	Value dataflow.Value
}

func (c *Filter) String() string {
	return fmt.Sprintf("[%s %s %s]", c.E, c.Attr, c.Value)
}

// Symbols returns the variables bound by this clause
func (c *Filter) Symbols() []Symbol {
	return []Symbol{c.E}
}

// Pred constrains already-bound variables: [(< ?a ?b)]
type Pred struct {
	Op   PredOp
	Args []FnArg
}

func (c *Pred) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Op.Surface())
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return "[(" + strings.Join(parts, " ") + ")]"
}

// RuleInvocation references a rule by name: (rule-name ?a ?b)
type RuleInvocation struct {
	Name string
	Args []FnArg
}

func (c *RuleInvocation) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// And is an explicit conjunction of clauses
type And struct {
	Clauses []Clause
}

func (c *And) String() string {
	return "(and " + joinClauses(c.Clauses) + ")"
}

// Or is a disjunction of clauses
type Or struct {
	Clauses []Clause
}

func (c *Or) String() string {
	return "(or " + joinClauses(c.Clauses) + ")"
}

// OrJoin is a disjunction with an explicit projection: only the listed
// variables must agree across branches.
type OrJoin struct {
	Vars    []Symbol
	Clauses []Clause
}

func (c *OrJoin) String() string {
	vars := make([]string, len(c.Vars))
	for i, v := range c.Vars {
		vars[i] = v.String()
	}
	return "(or-join [" + strings.Join(vars, " ") + "] " + joinClauses(c.Clauses) + ")"
}

// Not negates a conjunction of clauses
type Not struct {
	Clauses []Clause
}

func (c *Not) String() string {
	return "(not " + joinClauses(c.Clauses) + ")"
}

func joinClauses(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func dedupSymbols(symbols []Symbol) []Symbol {
	result := make([]Symbol, 0, len(symbols))
	for _, sym := range symbols {
		found := false
		for _, existing := range result {
			if existing == sym {
				found = true
				break
			}
		}
		if !found {
			result = append(result, sym)
		}
	}
	return result
}
