package compiler

import (
	"fmt"

	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// inputSet accumulates the bound constants and external parameters of a
// compilation, in a stable order: :in parameters first, hoisted
// constants in hoisting order.
type inputSet struct {
	entries   []plan.InputEntry
	index     map[query.Symbol]plan.Binding
	nextHoist int
}

func newInputSet() *inputSet {
	return &inputSet{index: make(map[query.Symbol]plan.Binding)}
}

// addParam records an externally supplied parameter from the :in clause
func (in *inputSet) addParam(sym query.Symbol, position int) {
	binding := plan.Binding{Input: position}
	in.index[sym] = binding
	in.entries = append(in.entries, plan.InputEntry{Var: sym, Binding: binding})
}

// hoist allocates a synthetic variable for a constant argument
func (in *inputSet) hoist(value dataflow.Value) query.Symbol {
	sym := query.Symbol(fmt.Sprintf("?in_%d", in.nextHoist))
	in.nextHoist++
	binding := plan.Binding{Const: &value}
	in.index[sym] = binding
	in.entries = append(in.entries, plan.InputEntry{Var: sym, Binding: binding})
	return sym
}

// substitute replaces constant arguments with fresh synthetic input
// variables, returning the resulting symbol list.
func (in *inputSet) substitute(args []query.FnArg) []query.Symbol {
	symbols := make([]query.Symbol, len(args))
	for i, arg := range args {
		if arg.IsConst() {
			symbols[i] = in.hoist(*arg.Const)
		} else {
			symbols[i] = arg.Var
		}
	}
	return symbols
}

// isInput reports whether a symbol is bound as an input
func (in *inputSet) isInput(sym query.Symbol) bool {
	_, ok := in.index[sym]
	return ok
}

// withoutInputs filters input symbols out of a symbol list
func (in *inputSet) withoutInputs(symbols []query.Symbol) []query.Symbol {
	result := make([]query.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if !in.isInput(s) {
			result = append(result, s)
		}
	}
	return result
}

// list returns the accumulated entries in declaration order
func (in *inputSet) list() []plan.InputEntry {
	result := make([]plan.InputEntry, len(in.entries))
	copy(result, in.entries)
	return result
}
