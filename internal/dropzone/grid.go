package dropzone

import "channel-scheduler/internal/tree"

// Grid is a View over fixed-height rows laid out top-down, the way a list
// renderer without variable row heights would place them. Every node is
// expanded unless collapsed.
type Grid struct {
	RowHeight float64

	rows      map[string]int
	collapsed map[string]bool
}

func NewGrid(t *tree.Tree, rowHeight float64, collapsed ...string) *Grid {
	g := &Grid{RowHeight: rowHeight, rows: map[string]int{}, collapsed: map[string]bool{}}
	for _, id := range collapsed {
		g.collapsed[id] = true
	}
	for i, n := range t.Rows(g.IsExpanded) {
		g.rows[n.ID] = i
	}
	return g
}

func (g *Grid) RowBounds(id string) (Rect, bool) {
	i, ok := g.rows[id]
	if !ok {
		return Rect{}, false
	}
	return Rect{Top: float64(i) * g.RowHeight, Height: g.RowHeight}, true
}

func (g *Grid) IsExpanded(id string) bool { return !g.collapsed[id] }

// PointAt returns the y coordinate at frac (0 top, 1 bottom) of id's row.
func (g *Grid) PointAt(id string, frac float64) (float64, bool) {
	r, ok := g.RowBounds(id)
	if !ok {
		return 0, false
	}
	return r.Top + r.Height*frac, true
}
