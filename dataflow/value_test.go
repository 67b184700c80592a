package dataflow

import "testing"

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		kind     ValueKind
		rendered string
	}{
		{name: "number", value: Number(42), kind: KindNumber, rendered: "42"},
		{name: "negative number", value: Number(-7), kind: KindNumber, rendered: "-7"},
		{name: "string", value: String("abc"), kind: KindString, rendered: `"abc"`},
		{name: "bool", value: Bool(true), kind: KindBool, rendered: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.value.Kind)
			}
			if got := tt.value.String(); got != tt.rendered {
				t.Errorf("expected %s, got %s", tt.rendered, got)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	if !Number(1).Equal(Number(1)) {
		t.Error("equal numbers should compare equal")
	}
	if Number(1).Equal(Number(2)) {
		t.Error("distinct numbers should not compare equal")
	}
	if Number(1).Equal(String("1")) {
		t.Error("values of different kinds should not compare equal")
	}
	if !Bool(false).Equal(Bool(false)) {
		t.Error("equal bools should compare equal")
	}
}

func TestKeywordCompare(t *testing.T) {
	a := NewKeyword(":a")
	b := NewKeyword(":b")

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("keyword comparison is not a total order")
	}
	if a.String() != ":a" {
		t.Errorf("unexpected keyword string %s", a)
	}
}
