package parser

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-dataflow/dataflow/edn"
)

// GrammarError reports input that does not conform to the query or rule
// grammar. Trace is the path of grammar productions from the top-level
// form down to the offending subtree.
type GrammarError struct {
	Expected string
	Actual   string
	Line     int
	Col      int
	Trace    []string
}

func (e *GrammarError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grammar error at %d:%d: expected %s, got %s", e.Line, e.Col, e.Expected, e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&b, " (in %s)", strings.Join(e.Trace, " > "))
	}
	return b.String()
}

// grammarError creates a GrammarError anchored at a node
func grammarError(node *edn.Node, expected string) *GrammarError {
	actual := node.String()
	if len(actual) > 40 {
		actual = actual[:40] + "..."
	}
	return &GrammarError{
		Expected: expected,
		Actual:   actual,
		Line:     node.Line,
		Col:      node.Col,
	}
}

// in prepends a production name to the parse trace
func (e *GrammarError) in(production string) *GrammarError {
	e.Trace = append([]string{production}, e.Trace...)
	return e
}

// traced prepends the production when the error is a GrammarError and
// passes anything else through untouched.
func traced(err error, production string) error {
	if ge, ok := err.(*GrammarError); ok {
		return ge.in(production)
	}
	return err
}
