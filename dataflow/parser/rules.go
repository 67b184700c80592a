package parser

import (
	"fmt"

	"github.com/wbrown/janus-dataflow/dataflow/edn"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// ParseRules parses a rule set from EDN text
func ParseRules(input string) (query.RuleSet, error) {
	node, err := edn.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("reader error: %w", err)
	}
	return AnalyzeRules(node)
}

// AnalyzeRules validates an already-read EDN form as a rule set. Rule
// arity must be consistent per rule name across definitions.
func AnalyzeRules(node *edn.Node) (query.RuleSet, error) {
	if node.Type != edn.NodeVector || len(node.Nodes) == 0 {
		return nil, grammarError(node, "non-empty vector of rule definitions").in("rules")
	}

	arities := make(map[string]int)
	rules := make(query.RuleSet, 0, len(node.Nodes))

	for i := range node.Nodes {
		rule, err := parseRuleDef(&node.Nodes[i])
		if err != nil {
			return nil, traced(err, "rules")
		}

		if arity, seen := arities[rule.Name]; seen && arity != len(rule.Vars) {
			return nil, (&GrammarError{
				Expected: fmt.Sprintf("%d head variables for rule %s", arity, rule.Name),
				Actual:   rule.Head(),
				Line:     node.Nodes[i].Line,
				Col:      node.Nodes[i].Col,
			}).in("rules")
		}
		arities[rule.Name] = len(rule.Vars)

		rules = append(rules, rule)
	}

	return rules, nil
}

// parseRuleDef parses [(name ?var ...) clause ...]
func parseRuleDef(node *edn.Node) (query.RuleDef, error) {
	if node.Type != edn.NodeVector || len(node.Nodes) < 2 {
		return query.RuleDef{}, grammarError(node, "rule definition [(name ?var ...) clause ...]").in("rule")
	}

	head := &node.Nodes[0]
	if head.Type != edn.NodeList || len(head.Nodes) < 2 {
		return query.RuleDef{}, grammarError(head, "rule head (name ?var ...)").in("rule")
	}
	if head.Nodes[0].Type != edn.NodeSymbol || query.Symbol(head.Nodes[0].Value).IsVariable() {
		return query.RuleDef{}, grammarError(&head.Nodes[0], "rule name (no leading ?)").in("rule head")
	}
	if logicalForms[head.Nodes[0].Value] {
		return query.RuleDef{}, grammarError(&head.Nodes[0], "rule name distinct from logical forms").in("rule head")
	}

	def := query.RuleDef{Name: head.Nodes[0].Value}
	for i := 1; i < len(head.Nodes); i++ {
		sym, err := parseVariable(&head.Nodes[i])
		if err != nil {
			return query.RuleDef{}, traced(err, "rule head")
		}
		def.Vars = append(def.Vars, sym)
	}

	for i := 1; i < len(node.Nodes); i++ {
		clause, err := parseClause(&node.Nodes[i])
		if err != nil {
			return query.RuleDef{}, traced(err, "rule body")
		}
		def.Clauses = append(def.Clauses, clause)
	}

	return def, nil
}
