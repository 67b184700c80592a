package compiler

import (
	"testing"

	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

func TestReorderPrefixFirst(t *testing.T) {
	where := []query.Clause{
		&query.Or{Clauses: []query.Clause{
			&query.HasAttr{E: "?x", Attr: dataflow.NewKeyword(":a"), V: "?y"},
			&query.HasAttr{E: "?x", Attr: dataflow.NewKeyword(":b"), V: "?y"},
		}},
		&query.HasAttr{E: "?x", Attr: dataflow.NewKeyword(":p"), V: "?q"},
	}

	clauses, err := newNormalizer(newInputSet()).normalize(where)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ordered := reorder(clauses)

	// The root clause surfaces before the or-branch clauses even though
	// it was written last.
	if len(ordered[0].Tag) != 1 {
		t.Errorf("expected root clause first, got tag %s", ordered[0].Tag)
	}
	if len(ordered[1].Tag) != 2 || len(ordered[2].Tag) != 2 {
		t.Errorf("expected branch clauses after root, got %s, %s", ordered[1].Tag, ordered[2].Tag)
	}

	// Sibling order within the disjunction is preserved
	if ordered[1].ID > ordered[2].ID {
		t.Errorf("sibling order not preserved: %d before %d", ordered[1].ID, ordered[2].ID)
	}
}

func TestReorderPreservesClauseSet(t *testing.T) {
	where := []query.Clause{
		&query.HasAttr{E: "?a", Attr: dataflow.NewKeyword(":x"), V: "?b"},
		&query.Or{Clauses: []query.Clause{
			&query.And{Clauses: []query.Clause{
				&query.HasAttr{E: "?a", Attr: dataflow.NewKeyword(":y"), V: "?c"},
			}},
			&query.HasAttr{E: "?a", Attr: dataflow.NewKeyword(":z"), V: "?c"},
		}},
		&query.Not{Clauses: []query.Clause{
			&query.HasAttr{E: "?a", Attr: dataflow.NewKeyword(":w"), V: "?b"},
		}},
	}

	clauses, err := newNormalizer(newInputSet()).normalize(where)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ordered := reorder(clauses)

	if len(ordered) != len(clauses) {
		t.Fatalf("reorder changed clause count: %d != %d", len(ordered), len(clauses))
	}

	seen := make(map[int]bool)
	for _, nc := range ordered {
		if seen[nc.ID] {
			t.Errorf("duplicate clause id %d", nc.ID)
		}
		seen[nc.ID] = true
	}
	for _, nc := range clauses {
		if !seen[nc.ID] {
			t.Errorf("clause id %d lost by reorder", nc.ID)
		}
	}
}

func TestReorderDeterministic(t *testing.T) {
	clauses := []NormalizedClause{
		{ID: 0, Tag: Tag{{Method: Conjunction, Scope: 0}, {Method: Disjunction, Scope: 2}}},
		{ID: 1, Tag: Tag{{Method: Conjunction, Scope: 0}}},
		{ID: 2, Tag: Tag{{Method: Conjunction, Scope: 0}, {Method: Disjunction, Scope: 1}}},
		{ID: 3, Tag: Tag{{Method: Conjunction, Scope: 0}}},
	}

	ordered := reorder(clauses)

	expected := []int{1, 3, 2, 0}
	for i, nc := range ordered {
		if nc.ID != expected[i] {
			t.Fatalf("expected order %v, got %d at %d", expected, nc.ID, i)
		}
	}
}
