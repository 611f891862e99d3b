// Package route resolves the drawable geometry of edges in a normalized
// [graph.Model].
//
// An edge with routed sections is translated from the coordinate space of its
// reference node (the nearest common ancestor of its endpoints) into canvas
// space. An edge without sections falls back to a straight line between its
// endpoint anchors: the port center when the endpoint names a port, the node
// center otherwise.
//
// Edges whose endpoints did not resolve are handled by [Policy]: skipped with
// a warning, or reported as a fatal EDGE_RESOLUTION error.
package route

import (
	"fmt"
	"strings"

	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/graph"
)

// Policy decides what happens to edges with unresolved endpoints.
type Policy string

const (
	PolicySkip  Policy = "skip"  // omit the edge, report a warning
	PolicyAbort Policy = "abort" // fail the render
)

// ParsePolicy converts a config or flag value. Empty means [PolicySkip].
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown edge policy %q (use skip or abort)", s)
}

// Path is the canvas-space geometry of one edge.
type Path struct {
	Edge      *graph.Edge
	Polylines [][]graph.Point // one per section, start to end
	Bends     []graph.Point
	Junctions []graph.Point
	Labels    []graph.Label // absolute positions filled in
	Fallback  bool          // true when no sections were given
}

// D returns the SVG path data: a move-to at each polyline start followed by
// line-to commands through the remaining points.
func (p Path) D() string {
	var sb strings.Builder
	for _, line := range p.Polylines {
		for i, pt := range line {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			if i == 0 {
				sb.WriteString("M ")
			} else {
				sb.WriteString("L ")
			}
			sb.WriteString(graph.FormatNumber(pt.X))
			sb.WriteByte(' ')
			sb.WriteString(graph.FormatNumber(pt.Y))
		}
	}
	return sb.String()
}

// Start returns the first point of the path.
func (p Path) Start() (graph.Point, bool) {
	if len(p.Polylines) == 0 || len(p.Polylines[0]) == 0 {
		return graph.Point{}, false
	}
	return p.Polylines[0][0], true
}

// End returns the last point of the path.
func (p Path) End() (graph.Point, bool) {
	if len(p.Polylines) == 0 {
		return graph.Point{}, false
	}
	last := p.Polylines[len(p.Polylines)-1]
	if len(last) == 0 {
		return graph.Point{}, false
	}
	return last[len(last)-1], true
}

// Result is the outcome of routing a whole model.
type Result struct {
	Paths    []Path
	Skipped  []*graph.Edge
	Warnings []error
}

// Route resolves every edge of a normalized model, in model order.
// Under [PolicyAbort] the first unresolved edge is returned as an error.
func Route(m *graph.Model, policy Policy) (Result, error) {
	if !m.Normalized() {
		return Result{}, errors.New(errors.ErrCodeInternal, "route called before normalize")
	}
	var res Result
	for i := range m.Edges {
		e := &m.Edges[i]
		if e.Err != nil {
			if policy == PolicyAbort {
				return Result{}, e.Err
			}
			res.Skipped = append(res.Skipped, e)
			res.Warnings = append(res.Warnings, fmt.Errorf("skipped edge: %w", e.Err))
			continue
		}
		res.Paths = append(res.Paths, Edge(m, e))
	}
	return res, nil
}

// Edge computes the canvas-space path of one resolved edge.
func Edge(m *graph.Model, e *graph.Edge) Path {
	p := Path{Edge: e}
	base := m.Nodes[e.Reference].Abs
	src := Anchor(m, e.Source)
	tgt := Anchor(m, e.Target)

	for _, s := range e.Sections {
		line := make([]graph.Point, 0, len(s.Bends)+2)
		if s.HasStart {
			line = append(line, base.Add(s.Start))
		} else {
			line = append(line, src)
		}
		for _, b := range s.Bends {
			bp := base.Add(b)
			line = append(line, bp)
			p.Bends = append(p.Bends, bp)
		}
		if s.HasEnd {
			line = append(line, base.Add(s.End))
		} else {
			line = append(line, tgt)
		}
		p.Polylines = append(p.Polylines, line)
	}
	if len(p.Polylines) == 0 {
		p.Polylines = [][]graph.Point{{src, tgt}}
		p.Fallback = true
	}

	for _, j := range e.Junctions {
		p.Junctions = append(p.Junctions, base.Add(j))
	}

	start, _ := p.Start()
	end, _ := p.End()
	mid := graph.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	for _, l := range e.Labels {
		if !l.Positioned {
			l.Abs = graph.Point{X: mid.X - l.Width/2, Y: mid.Y - l.Height/2}
		}
		p.Labels = append(p.Labels, l)
	}
	return p
}

// Anchor returns the canvas point an endpoint attaches to when no routed
// section says otherwise.
func Anchor(m *graph.Model, ep graph.Endpoint) graph.Point {
	if ep.Port != graph.NoIndex {
		return m.Ports[ep.Port].Center()
	}
	return m.Nodes[ep.Node].Bounds().Center()
}
