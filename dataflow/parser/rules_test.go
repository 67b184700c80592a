package parser

import (
	"testing"

	"github.com/wbrown/janus-dataflow/dataflow/query"
)

func TestParseRules(t *testing.T) {
	input := `[[(propagate ?x ?y) [?x :node ?y]]
               [(propagate ?x ?y) [?z :edge ?y] (propagate ?x ?z)]]`

	rules, err := ParseRules(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(rules))
	}

	for i, rule := range rules {
		if rule.Name != "propagate" {
			t.Errorf("rule %d: expected name propagate, got %s", i, rule.Name)
		}
		if len(rule.Vars) != 2 {
			t.Errorf("rule %d: expected 2 head vars, got %d", i, len(rule.Vars))
		}
	}

	if len(rules[0].Clauses) != 1 {
		t.Errorf("expected 1 body clause, got %d", len(rules[0].Clauses))
	}
	if len(rules[1].Clauses) != 2 {
		t.Errorf("expected 2 body clauses, got %d", len(rules[1].Clauses))
	}

	if _, ok := rules[1].Clauses[1].(*query.RuleInvocation); !ok {
		t.Errorf("expected recursive RuleInvocation, got %T", rules[1].Clauses[1])
	}
}

func TestParseRulesArityMismatch(t *testing.T) {
	input := `[[(older ?t1 ?t2) [(< ?t1 ?t2)]]
               [(older ?t1) [(< ?t1 0)]]]`

	_, err := ParseRules(input)
	if err == nil {
		t.Fatal("expected error for inconsistent arity")
	}
	if _, ok := err.(*GrammarError); !ok {
		t.Errorf("expected GrammarError, got %T: %v", err, err)
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty rule set", input: `[]`},
		{name: "not a vector", input: `(rules)`},
		{name: "rule without body", input: `[[(older ?t)]]`},
		{name: "head without vars", input: `[[(older) [?e :k ?v]]]`},
		{name: "variable rule name", input: `[[(?older ?t) [?e :k ?t]]]`},
		{name: "reserved rule name", input: `[[(not ?t) [?e :k ?t]]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			if _, ok := err.(*GrammarError); !ok {
				t.Errorf("expected GrammarError, got %T: %v", err, err)
			}
		})
	}
}
