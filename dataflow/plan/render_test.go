package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

func TestRenderTree(t *testing.T) {
	node := &Project{
		Child: &Join{
			Left:    &HasAttr{EntityPos: 0, AttrID: 1, ValPos: 2},
			Right:   &Filter{EntityPos: 0, AttrID: 3, Value: dataflow.String("x")},
			JoinPos: 0,
		},
		Positions: []int{2},
	}

	out := NewRenderer([]query.Symbol{"?op", "?k", "?t"}, false).Render(node)

	assert.Contains(t, out, "Project [?t(2)]")
	assert.Contains(t, out, "Join on ?op(0)")
	assert.Contains(t, out, "HasAttr attr=1")
	assert.Contains(t, out, `Filter attr=3 value="x"`)

	// Children are indented below their parents
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[1], "  "), "join should be indented")
	assert.True(t, strings.HasPrefix(lines[2], "    "), "join children should be indented twice")
}

func TestRenderWithoutSymbols(t *testing.T) {
	out := Render(&RuleExpr{Name: "older", ArgPos: []int{0, 1}})
	assert.Contains(t, out, "RuleExpr older [#0 #1]")
}

func TestBindingIsConst(t *testing.T) {
	v := dataflow.Number(5)
	assert.True(t, Binding{Const: &v}.IsConst())
	assert.False(t, Binding{Input: 0}.IsConst())
}
