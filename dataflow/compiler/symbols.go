package compiler

import (
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// symbolTable assigns each variable a positional id, in registration
// order. Plans refer to variables exclusively by these positions.
type symbolTable struct {
	positions map[query.Symbol]int
	order     []query.Symbol
}

func newSymbolTable() *symbolTable {
	return &symbolTable{positions: make(map[query.Symbol]int)}
}

// register assigns a position to a symbol if it has none yet
func (t *symbolTable) register(sym query.Symbol) int {
	if pos, ok := t.positions[sym]; ok {
		return pos
	}
	pos := len(t.order)
	t.positions[sym] = pos
	t.order = append(t.order, sym)
	return pos
}

// resolve returns the position of a registered symbol
func (t *symbolTable) resolve(sym query.Symbol) (int, error) {
	pos, ok := t.positions[sym]
	if !ok {
		return 0, &UnknownSymbolError{Symbol: sym}
	}
	return pos, nil
}

// resolveAll resolves a list of symbols to positions
func (t *symbolTable) resolveAll(symbols []query.Symbol) ([]int, error) {
	positions := make([]int, len(symbols))
	for i, sym := range symbols {
		pos, err := t.resolve(sym)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}
	return positions, nil
}

// symbols returns the position-indexed symbol list
func (t *symbolTable) symbols() []query.Symbol {
	result := make([]query.Symbol, len(t.order))
	copy(result, t.order)
	return result
}
