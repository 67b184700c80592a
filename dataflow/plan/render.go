package plan

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/wbrown/janus-dataflow/dataflow/query"
)

// Renderer pretty-prints plan trees for humans. Positions are shown as
// variable names when the renderer knows the position-indexed symbol
// list, raw integers otherwise.
type Renderer struct {
	useColor bool
	symbols  []query.Symbol
}

// NewRenderer creates a renderer; symbols may be nil
func NewRenderer(symbols []query.Symbol, useColor bool) *Renderer {
	return &Renderer{useColor: useColor, symbols: symbols}
}

// Render returns an indented tree representation of the plan
func (r *Renderer) Render(node Node) string {
	var b strings.Builder
	r.render(&b, node, 0)
	return b.String()
}

func (r *Renderer) render(b *strings.Builder, node Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n := node.(type) {
	case *Lookup:
		fmt.Fprintf(b, "%s%s entity=%d attr=%d -> %s\n",
			indent, r.op("Lookup"), n.EntityID, n.AttrID, r.pos(n.VarPos))
	case *Entity:
		fmt.Fprintf(b, "%s%s entity=%d -> %s %s\n",
			indent, r.op("Entity"), n.EntityID, r.pos(n.AttrPos), r.pos(n.ValPos))
	case *HasAttr:
		fmt.Fprintf(b, "%s%s attr=%d %s -> %s\n",
			indent, r.op("HasAttr"), n.AttrID, r.pos(n.EntityPos), r.pos(n.ValPos))
	case *Filter:
		fmt.Fprintf(b, "%s%s attr=%d value=%s -> %s\n",
			indent, r.op("Filter"), n.AttrID, n.Value, r.pos(n.EntityPos))
	case *Join:
		fmt.Fprintf(b, "%s%s on %s\n", indent, r.op("Join"), r.pos(n.JoinPos))
		r.render(b, n.Left, depth+1)
		r.render(b, n.Right, depth+1)
	case *Antijoin:
		fmt.Fprintf(b, "%s%s on %s\n", indent, r.op("Antijoin"), r.posList(n.JoinPos))
		r.render(b, n.Left, depth+1)
		r.render(b, n.Right, depth+1)
	case *Union:
		fmt.Fprintf(b, "%s%s %s\n", indent, r.op("Union"), r.posList(n.Positions))
		for _, child := range n.Children {
			r.render(b, child, depth+1)
		}
	case *Project:
		fmt.Fprintf(b, "%s%s %s\n", indent, r.op("Project"), r.posList(n.Positions))
		r.render(b, n.Child, depth+1)
	case *Aggregate:
		fmt.Fprintf(b, "%s%s %s %s\n", indent, r.op("Aggregate"), n.Name, r.posList(n.ArgPos))
		r.render(b, n.Child, depth+1)
	case *PredExpr:
		fmt.Fprintf(b, "%s%s %s %s\n", indent, r.op("PredExpr"), n.Op, r.posList(n.ArgPos))
		r.render(b, n.Child, depth+1)
	case *RuleExpr:
		fmt.Fprintf(b, "%s%s %s %s\n", indent, r.op("RuleExpr"), n.Name, r.posList(n.ArgPos))
	default:
		fmt.Fprintf(b, "%sUnknown[%T]\n", indent, node)
	}
}

func (r *Renderer) op(name string) string {
	if r.useColor {
		return color.New(color.FgCyan).Sprint(name)
	}
	return name
}

func (r *Renderer) pos(p int) string {
	if p >= 0 && p < len(r.symbols) {
		return fmt.Sprintf("%s(%d)", r.symbols[p], p)
	}
	return fmt.Sprintf("#%d", p)
}

func (r *Renderer) posList(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = r.pos(p)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Render returns the default uncolored rendering of a plan
func Render(node Node) string {
	return NewRenderer(nil, false).Render(node)
}
