package parser

import (
	"testing"

	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

func TestParseSimpleQuery(t *testing.T) {
	input := `[:find ?e ?name
              :where [?e :person/name ?name]]`

	q, err := ParseQuery(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(q.Find) != 2 {
		t.Errorf("expected 2 find elements, got %d", len(q.Find))
	}

	for i, elem := range q.Find {
		v, ok := elem.(query.FindVariable)
		if !ok {
			t.Errorf("find element %d is not a FindVariable", i)
			continue
		}

		switch i {
		case 0:
			if v.Symbol != "?e" {
				t.Errorf("Find[0]: expected ?e, got %s", v.Symbol)
			}
		case 1:
			if v.Symbol != "?name" {
				t.Errorf("Find[1]: expected ?name, got %s", v.Symbol)
			}
		}
	}

	if len(q.Where) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(q.Where))
	}

	hasAttr, ok := q.Where[0].(*query.HasAttr)
	if !ok {
		t.Fatalf("expected HasAttr, got %T", q.Where[0])
	}
	if hasAttr.E != "?e" || hasAttr.V != "?name" {
		t.Errorf("unexpected pattern variables: %s %s", hasAttr.E, hasAttr.V)
	}
	if hasAttr.Attr.String() != ":person/name" {
		t.Errorf("unexpected attribute %s", hasAttr.Attr)
	}
}

func TestParsePatternClassification(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected interface{}
	}{
		{
			name:     "lookup",
			input:    `[:find ?v :where [17 :person/name ?v]]`,
			expected: &query.Lookup{},
		},
		{
			name:     "entity",
			input:    `[:find ?a :where [17 ?a ?v]]`,
			expected: &query.EntityPattern{},
		},
		{
			name:     "has-attr",
			input:    `[:find ?e :where [?e :person/name ?v]]`,
			expected: &query.HasAttr{},
		},
		{
			name:     "filter string",
			input:    `[:find ?e :where [?e :person/name "Alice"]]`,
			expected: &query.Filter{},
		},
		{
			name:     "filter number",
			input:    `[:find ?e :where [?e :person/age 30]]`,
			expected: &query.Filter{},
		},
		{
			name:     "filter bool",
			input:    `[:find ?e :where [?e :person/active true]]`,
			expected: &query.Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := q.Where[0]
			switch tt.expected.(type) {
			case *query.Lookup:
				if _, ok := got.(*query.Lookup); !ok {
					t.Errorf("expected Lookup, got %T", got)
				}
			case *query.EntityPattern:
				if _, ok := got.(*query.EntityPattern); !ok {
					t.Errorf("expected EntityPattern, got %T", got)
				}
			case *query.HasAttr:
				if _, ok := got.(*query.HasAttr); !ok {
					t.Errorf("expected HasAttr, got %T", got)
				}
			case *query.Filter:
				if _, ok := got.(*query.Filter); !ok {
					t.Errorf("expected Filter, got %T", got)
				}
			}
		})
	}
}

func TestParseFilterValue(t *testing.T) {
	q, err := ParseQuery(`[:find ?e :where [?e :person/age 30]]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter := q.Where[0].(*query.Filter)
	if !filter.Value.Equal(dataflow.Number(30)) {
		t.Errorf("expected 30, got %s", filter.Value)
	}
}

func TestParsePredicate(t *testing.T) {
	q, err := ParseQuery(`[:find ?t1 :where [?op :assign/time ?t1] [(< ?t1 100)]]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pred, ok := q.Where[1].(*query.Pred)
	if !ok {
		t.Fatalf("expected Pred, got %T", q.Where[1])
	}
	if pred.Op != query.OpLT {
		t.Errorf("expected LT, got %s", pred.Op)
	}
	if len(pred.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(pred.Args))
	}
	if pred.Args[0].Var != "?t1" {
		t.Errorf("expected ?t1, got %s", pred.Args[0])
	}
	if !pred.Args[1].IsConst() || !pred.Args[1].Const.Equal(dataflow.Number(100)) {
		t.Errorf("expected constant 100, got %s", pred.Args[1])
	}
}

func TestParsePredicateOperators(t *testing.T) {
	ops := map[string]query.PredOp{
		"<":  query.OpLT,
		"<=": query.OpLTE,
		">":  query.OpGT,
		">=": query.OpGTE,
		"=":  query.OpEQ,
		"!=": query.OpNEQ,
	}

	for surface, expected := range ops {
		q, err := ParseQuery(`[:find ?a :where [?e :k ?a] [(` + surface + ` ?a ?b)]]`)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", surface, err)
		}
		pred := q.Where[1].(*query.Pred)
		if pred.Op != expected {
			t.Errorf("%s: expected %s, got %s", surface, expected, pred.Op)
		}
	}
}

func TestParseRuleInvocation(t *testing.T) {
	// Both bare and bracketed rule applications are accepted
	for _, input := range []string{
		`[:find ?t :where [?op :t ?t] (older ?t 5)]`,
		`[:find ?t :where [?op :t ?t] [(older ?t 5)]]`,
	} {
		q, err := ParseQuery(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rule, ok := q.Where[1].(*query.RuleInvocation)
		if !ok {
			t.Fatalf("expected RuleInvocation, got %T", q.Where[1])
		}
		if rule.Name != "older" {
			t.Errorf("expected older, got %s", rule.Name)
		}
		if len(rule.Args) != 2 {
			t.Errorf("expected 2 args, got %d", len(rule.Args))
		}
	}
}

func TestParseLogicalForms(t *testing.T) {
	input := `[:find ?x
              :where [?x :node ?y]
                     (or [?x :a ?y] (and [?x :b ?y] (not [?x :c ?y])))
                     (or-join [?x] [?x :d ?z])]`

	q, err := ParseQuery(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	or, ok := q.Where[1].(*query.Or)
	if !ok {
		t.Fatalf("expected Or, got %T", q.Where[1])
	}
	if len(or.Clauses) != 2 {
		t.Fatalf("expected 2 or-branches, got %d", len(or.Clauses))
	}

	and, ok := or.Clauses[1].(*query.And)
	if !ok {
		t.Fatalf("expected And, got %T", or.Clauses[1])
	}
	if _, ok := and.Clauses[1].(*query.Not); !ok {
		t.Errorf("expected Not, got %T", and.Clauses[1])
	}

	orJoin, ok := q.Where[2].(*query.OrJoin)
	if !ok {
		t.Fatalf("expected OrJoin, got %T", q.Where[2])
	}
	if len(orJoin.Vars) != 1 || orJoin.Vars[0] != "?x" {
		t.Errorf("unexpected or-join projection %v", orJoin.Vars)
	}
}

func TestParseIn(t *testing.T) {
	q, err := ParseQuery(`[:find ?v :in ?k ?limit :where [?e :k ?v]]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.In) != 2 || q.In[0] != "?k" || q.In[1] != "?limit" {
		t.Errorf("unexpected in spec %v", q.In)
	}
}

func TestParseAggregate(t *testing.T) {
	q, err := ParseQuery(`[:find (min ?t) :where [?op :assign/time ?t]]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg, ok := q.Find[0].(query.FindAggregate)
	if !ok {
		t.Fatalf("expected FindAggregate, got %T", q.Find[0])
	}
	if agg.Function != "min" {
		t.Errorf("expected min, got %s", agg.Function)
	}
	if len(agg.Args) != 1 || agg.Args[0].Var != "?t" {
		t.Errorf("unexpected aggregate args %v", agg.Args)
	}
}

func TestParseGrammarErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty where", input: `[:find ?e :where]`},
		{name: "missing where", input: `[:find ?e]`},
		{name: "missing find", input: `[:where [?e :k ?v]]`},
		{name: "empty find", input: `[:find :where [?e :k ?v]]`},
		{name: "empty in", input: `[:find ?e :in :where [?e :k ?v]]`},
		{name: "non-variable find", input: `[:find name :where [?e :k ?v]]`},
		{name: "two-element pattern", input: `[:find ?e :where [?e :k]]`},
		{name: "constant-only pattern", input: `[:find ?e :where [1 :k 2]]`},
		{name: "variable attribute with constant entity value", input: `[:find ?e :where [?e ?a 2]]`},
		{name: "or-join without projection", input: `[:find ?x :where (or-join [?x :a ?y])]`},
		{name: "empty not", input: `[:find ?x :where [?x :a ?y] (not)]`},
		{name: "not a query", input: `(:find ?e)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			if _, ok := err.(*GrammarError); !ok {
				t.Errorf("expected GrammarError, got %T: %v", err, err)
			}
		})
	}
}

func TestGrammarErrorTrace(t *testing.T) {
	_, err := ParseQuery(`[:find ?x :where (or [?x :k ?v] [?x :k])]`)
	if err == nil {
		t.Fatal("expected error")
	}

	ge, ok := err.(*GrammarError)
	if !ok {
		t.Fatalf("expected GrammarError, got %T", err)
	}
	if len(ge.Trace) == 0 {
		t.Error("expected a parse trace")
	}
	if ge.Line == 0 {
		t.Error("expected a source position")
	}
}
