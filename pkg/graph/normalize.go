package graph

import (
	"math"

	"github.com/matzehuels/graphrender/pkg/errors"
)

// DefaultPadding is the canvas margin used when none is configured.
const DefaultPadding = 10.0

// Normalize computes absolute canvas coordinates for every node, port and
// label. The root sits at (padding, padding); every other node is placed at
// its parent's absolute position plus its own relative offset. Edge labels
// with coordinates are placed relative to the edge's reference node.
//
// The traversal is iterative and tracks visited nodes, so a malformed arena
// (a child listed twice, a parent link that disagrees with the child list, a
// cycle detached from the root) fails with STRUCTURAL instead of looping.
// Normalize always recomputes from relative values and can be called again
// with the same padding to get identical results.
func (m *Model) Normalize(padding float64) error {
	if len(m.Nodes) == 0 {
		return errors.New(errors.ErrCodeStructural, "graph has no root node")
	}
	if p := m.Nodes[0].Parent; p != NoIndex {
		return errors.New(errors.ErrCodeStructural, "root node %q has a parent", m.Nodes[0].ID)
	}

	visited := make([]bool, len(m.Nodes))
	root := &m.Nodes[0]
	root.Abs = Point{X: padding, Y: padding}
	visited[0] = true

	stack := []int{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &m.Nodes[ni]

		for k := len(n.Children) - 1; k >= 0; k-- {
			ci := n.Children[k]
			if ci < 0 || ci >= len(m.Nodes) {
				return errors.New(errors.ErrCodeStructural, "node %q lists unknown child #%d", n.ID, ci)
			}
			c := &m.Nodes[ci]
			if visited[ci] {
				return errors.New(errors.ErrCodeStructural, "node %q is reachable twice (cycle at %q)", c.ID, n.ID)
			}
			if c.Parent != ni {
				return errors.New(errors.ErrCodeStructural, "node %q is listed under %q but its parent is #%d", c.ID, n.ID, c.Parent)
			}
			visited[ci] = true
			c.Abs = n.Abs.Add(c.Rel)
			stack = append(stack, ci)
		}
		m.placeNodeContents(ni)
	}

	for i, ok := range visited {
		if !ok {
			return errors.New(errors.ErrCodeStructural, "node %q is not reachable from the root", m.Nodes[i].ID)
		}
	}

	for i := range m.Edges {
		e := &m.Edges[i]
		if e.Reference == NoIndex {
			continue
		}
		base := m.Nodes[e.Reference].Abs
		for j := range e.Labels {
			if l := &e.Labels[j]; l.Positioned {
				l.Abs = base.Add(l.Rel)
			}
		}
	}

	m.Padding = padding
	m.normalized = true
	return nil
}

func (m *Model) placeNodeContents(ni int) {
	n := &m.Nodes[ni]
	for j := range n.Labels {
		placeLabel(&n.Labels[j], n.Abs, n.Bounds().Center())
	}
	for _, pi := range n.Ports {
		p := &m.Ports[pi]
		p.Abs = n.Abs.Add(p.Rel)
		if p.Side == SideUndefined {
			p.Side = inferSide(n.Bounds(), p.Center())
		}
		for j := range p.Labels {
			placeLabel(&p.Labels[j], p.Abs, p.Center())
		}
	}
}

// placeLabel positions l relative to base, or centers it on center when the
// input gave no coordinates.
func placeLabel(l *Label, base, center Point) {
	if l.Positioned {
		l.Abs = base.Add(l.Rel)
		return
	}
	l.Abs = Point{X: center.X - l.Width/2, Y: center.Y - l.Height/2}
}

// inferSide picks the node border closest to c. Ties resolve in the order
// WEST, EAST, NORTH, SOUTH.
func inferSide(node Rect, c Point) Side {
	candidates := []struct {
		side Side
		dist float64
	}{
		{SideWest, math.Abs(c.X - node.X)},
		{SideEast, math.Abs(c.X - (node.X + node.W))},
		{SideNorth, math.Abs(c.Y - node.Y)},
		{SideSouth, math.Abs(c.Y - (node.Y + node.H))},
	}
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.dist < best.dist {
			best = cand
		}
	}
	return best.side
}

// Extents returns the canvas size. A root with explicit width and height
// yields that size plus padding on each side; otherwise the canvas is the
// bounding box of all normalized node, port and label geometry (anchored at
// the origin) plus padding.
func (m *Model) Extents() (width, height float64) {
	p := m.Padding
	if m.RootSized {
		r := m.Root()
		return r.Width + 2*p, r.Height + 2*p
	}

	maxX, maxY := p, p
	grow := func(r Rect) {
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	for i := 1; i < len(m.Nodes); i++ {
		n := &m.Nodes[i]
		grow(n.Bounds())
		for j := range n.Labels {
			grow(n.Labels[j].Bounds())
		}
	}
	for i := range m.Ports {
		grow(m.Ports[i].Bounds())
	}
	return maxX + p, maxY + p
}

// Content returns the root area inside the padding.
func (m *Model) Content() Rect {
	w, h := m.Extents()
	return Rect{X: m.Padding, Y: m.Padding, W: w - 2*m.Padding, H: h - 2*m.Padding}
}
