// Package parser validates query and rule text against the declarative
// grammar and produces the typed IR. Malformed input is rejected with a
// GrammarError identifying the offending subtree and the expected
// shape.
package parser

import (
	"fmt"

	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/edn"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// Reserved head symbols of logical forms
var logicalForms = map[string]bool{
	"and":     true,
	"or":      true,
	"or-join": true,
	"not":     true,
}

// ParseQuery parses a query from EDN text
func ParseQuery(input string) (*query.Query, error) {
	node, err := edn.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("reader error: %w", err)
	}
	return AnalyzeQuery(node)
}

// AnalyzeQuery validates an already-read EDN form as a query
func AnalyzeQuery(node *edn.Node) (*query.Query, error) {
	if node.Type != edn.NodeVector {
		return nil, grammarError(node, "query vector [:find ... :where ...]").in("query")
	}

	q := &query.Query{}
	seenFind := false
	seenWhere := false

	i := 0
	for i < len(node.Nodes) {
		if node.Nodes[i].Type != edn.NodeKeyword {
			return nil, grammarError(&node.Nodes[i], "section keyword (:find, :in, or :where)").in("query")
		}

		keyword := node.Nodes[i].Value
		i++

		switch keyword {
		case ":find":
			seenFind = true
			for i < len(node.Nodes) && node.Nodes[i].Type != edn.NodeKeyword {
				elem, err := parseFindElement(&node.Nodes[i])
				if err != nil {
					return nil, traced(err, ":find")
				}
				q.Find = append(q.Find, elem)
				i++
			}

		case ":in":
			for i < len(node.Nodes) && node.Nodes[i].Type != edn.NodeKeyword {
				sym, err := parseVariable(&node.Nodes[i])
				if err != nil {
					return nil, traced(err, ":in")
				}
				q.In = append(q.In, sym)
				i++
			}
			if len(q.In) == 0 {
				return nil, grammarError(node, "at least one input variable after :in").in(":in")
			}

		case ":where":
			seenWhere = true
			for i < len(node.Nodes) && node.Nodes[i].Type != edn.NodeKeyword {
				clause, err := parseClause(&node.Nodes[i])
				if err != nil {
					return nil, traced(err, ":where")
				}
				q.Where = append(q.Where, clause)
				i++
			}

		default:
			return nil, grammarError(&node.Nodes[i-1], ":find, :in, or :where").in("query")
		}
	}

	if !seenFind || len(q.Find) == 0 {
		return nil, grammarError(node, "non-empty :find specification").in("query")
	}
	if !seenWhere || len(q.Where) == 0 {
		return nil, grammarError(node, "non-empty :where specification").in("query")
	}

	return q, nil
}

// parseFindElement parses a find element (variable or aggregate)
func parseFindElement(node *edn.Node) (query.FindElement, error) {
	switch node.Type {
	case edn.NodeSymbol:
		sym := query.Symbol(node.Value)
		if !sym.IsVariable() {
			return nil, grammarError(node, "variable (leading ?)").in("find element")
		}
		return query.FindVariable{Symbol: sym}, nil

	case edn.NodeList:
		if len(node.Nodes) < 2 {
			return nil, grammarError(node, "aggregate (fn arg ...)").in("find element")
		}
		if node.Nodes[0].Type != edn.NodeSymbol || query.Symbol(node.Nodes[0].Value).IsVariable() {
			return nil, grammarError(&node.Nodes[0], "aggregate function name").in("find element")
		}
		fn := node.Nodes[0].Value

		args := make([]query.FnArg, 0, len(node.Nodes)-1)
		for j := 1; j < len(node.Nodes); j++ {
			arg, err := parseFnArg(&node.Nodes[j])
			if err != nil {
				return nil, traced(err, "find element")
			}
			args = append(args, arg)
		}
		return query.FindAggregate{Function: fn, Args: args}, nil

	default:
		return nil, grammarError(node, "variable or aggregate").in("find element")
	}
}

// parseClause parses one WHERE clause
func parseClause(node *edn.Node) (query.Clause, error) {
	switch node.Type {
	case edn.NodeVector:
		if len(node.Nodes) == 1 && node.Nodes[0].Type == edn.NodeList {
			return parsePredicate(&node.Nodes[0])
		}
		return parseDataPattern(node)

	case edn.NodeList:
		if len(node.Nodes) == 0 {
			return nil, grammarError(node, "logical form or rule invocation").in("clause")
		}
		head := &node.Nodes[0]
		if head.Type != edn.NodeSymbol {
			return nil, grammarError(head, "form head symbol").in("clause")
		}
		if logicalForms[head.Value] {
			return parseLogicalForm(node, head.Value)
		}
		return parseRuleInvocation(node)

	default:
		return nil, grammarError(node, "pattern vector or clause form").in("clause")
	}
}

// parseDataPattern classifies a 3-element pattern by the kind of each
// position.
func parseDataPattern(node *edn.Node) (query.Clause, error) {
	if len(node.Nodes) != 3 {
		return nil, grammarError(node, "3-element data pattern [e a v]").in("pattern")
	}

	e, a, v := &node.Nodes[0], &node.Nodes[1], &node.Nodes[2]

	switch {
	case e.Type == edn.NodeInt && a.Type == edn.NodeKeyword && isVariableNode(v):
		eid, err := e.AsInt()
		if err != nil {
			return nil, grammarError(e, "entity id").in("pattern")
		}
		return &query.Lookup{
			Entity: eid,
			Attr:   dataflow.NewKeyword(a.Value),
			V:      query.Symbol(v.Value),
		}, nil

	case e.Type == edn.NodeInt && isVariableNode(a) && isVariableNode(v):
		eid, err := e.AsInt()
		if err != nil {
			return nil, grammarError(e, "entity id").in("pattern")
		}
		return &query.EntityPattern{
			Entity: eid,
			A:      query.Symbol(a.Value),
			V:      query.Symbol(v.Value),
		}, nil

	case isVariableNode(e) && a.Type == edn.NodeKeyword && isVariableNode(v):
		return &query.HasAttr{
			E:    query.Symbol(e.Value),
			Attr: dataflow.NewKeyword(a.Value),
			V:    query.Symbol(v.Value),
		}, nil

	case isVariableNode(e) && a.Type == edn.NodeKeyword && isValueNode(v):
		value, err := parseValue(v)
		if err != nil {
			return nil, traced(err, "pattern")
		}
		return &query.Filter{
			E:     query.Symbol(e.Value),
			Attr:  dataflow.NewKeyword(a.Value),
			Value: value,
		}, nil

	default:
		return nil, grammarError(node,
			"[eid keyword ?var], [eid ?var ?var], [?var keyword ?var], or [?var keyword value]").in("pattern")
	}
}

// parsePredicate parses [(op fn-arg ...)]. A bracketed list whose head
// is not a comparison operator is a rule invocation, which may be
// written with or without the brackets.
func parsePredicate(node *edn.Node) (query.Clause, error) {
	if len(node.Nodes) == 0 || node.Nodes[0].Type != edn.NodeSymbol {
		return nil, grammarError(node, "(op fn-arg ...)").in("predicate")
	}

	op, ok := query.PredOpFromSymbol(node.Nodes[0].Value)
	if !ok {
		return parseRuleInvocation(node)
	}

	if len(node.Nodes) < 3 {
		return nil, grammarError(node, "at least two predicate arguments").in("predicate")
	}

	args := make([]query.FnArg, 0, len(node.Nodes)-1)
	for i := 1; i < len(node.Nodes); i++ {
		arg, err := parseFnArg(&node.Nodes[i])
		if err != nil {
			return nil, traced(err, "predicate")
		}
		args = append(args, arg)
	}

	return &query.Pred{Op: op, Args: args}, nil
}

// parseRuleInvocation parses (rule-name fn-arg ...)
func parseRuleInvocation(node *edn.Node) (query.Clause, error) {
	head := &node.Nodes[0]
	name := query.Symbol(head.Value)
	if name.IsVariable() {
		return nil, grammarError(head, "rule name (no leading ?)").in("rule invocation")
	}

	args := make([]query.FnArg, 0, len(node.Nodes)-1)
	for i := 1; i < len(node.Nodes); i++ {
		arg, err := parseFnArg(&node.Nodes[i])
		if err != nil {
			return nil, traced(err, "rule invocation")
		}
		args = append(args, arg)
	}

	return &query.RuleInvocation{Name: head.Value, Args: args}, nil
}

// parseLogicalForm parses (and ...), (or ...), (or-join [vars] ...), (not ...)
func parseLogicalForm(node *edn.Node, form string) (query.Clause, error) {
	rest := node.Nodes[1:]

	var projection []query.Symbol
	if form == "or-join" {
		if len(rest) == 0 || rest[0].Type != edn.NodeVector {
			return nil, grammarError(node, "or-join projection vector [?var ...]").in("or-join")
		}
		for i := range rest[0].Nodes {
			sym, err := parseVariable(&rest[0].Nodes[i])
			if err != nil {
				return nil, traced(err, "or-join projection")
			}
			projection = append(projection, sym)
		}
		if len(projection) == 0 {
			return nil, grammarError(&rest[0], "at least one projected variable").in("or-join")
		}
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return nil, grammarError(node, "at least one nested clause").in(form)
	}

	clauses := make([]query.Clause, 0, len(rest))
	for i := range rest {
		clause, err := parseClause(&rest[i])
		if err != nil {
			return nil, traced(err, form)
		}
		clauses = append(clauses, clause)
	}

	switch form {
	case "and":
		return &query.And{Clauses: clauses}, nil
	case "or":
		return &query.Or{Clauses: clauses}, nil
	case "or-join":
		return &query.OrJoin{Vars: projection, Clauses: clauses}, nil
	case "not":
		return &query.Not{Clauses: clauses}, nil
	default:
		return nil, grammarError(node, "logical form").in("clause")
	}
}

// parseFnArg parses a variable or constant argument
func parseFnArg(node *edn.Node) (query.FnArg, error) {
	if node.Type == edn.NodeSymbol {
		sym := query.Symbol(node.Value)
		if !sym.IsVariable() {
			return query.FnArg{}, grammarError(node, "variable or constant").in("fn-arg")
		}
		return query.Var(sym), nil
	}

	value, err := parseValue(node)
	if err != nil {
		return query.FnArg{}, traced(err, "fn-arg")
	}
	return query.Const(value), nil
}

// parseVariable parses a symbol that must be a variable
func parseVariable(node *edn.Node) (query.Symbol, error) {
	if node.Type != edn.NodeSymbol || !query.Symbol(node.Value).IsVariable() {
		return "", grammarError(node, "variable (leading ?)")
	}
	return query.Symbol(node.Value), nil
}

// parseValue parses a constant literal
func parseValue(node *edn.Node) (dataflow.Value, error) {
	switch node.Type {
	case edn.NodeInt:
		n, err := node.AsInt()
		if err != nil {
			return dataflow.Value{}, grammarError(node, "number")
		}
		return dataflow.Number(n), nil
	case edn.NodeString:
		return dataflow.String(node.Value), nil
	case edn.NodeBool:
		b, _ := node.AsBool()
		return dataflow.Bool(b), nil
	default:
		return dataflow.Value{}, grammarError(node, "number, string, or boolean")
	}
}

// isVariableNode reports whether a node is a variable symbol
func isVariableNode(node *edn.Node) bool {
	return node.Type == edn.NodeSymbol && query.Symbol(node.Value).IsVariable()
}

// isValueNode reports whether a node is a constant literal
func isValueNode(node *edn.Node) bool {
	return node.Type == edn.NodeInt || node.Type == edn.NodeString || node.Type == edn.NodeBool
}
