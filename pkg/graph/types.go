package graph

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// Constants
// =============================================================================

// RootID is the id given to the root node when the input omits one.
const RootID = "root"

// NoIndex marks an absent arena reference (the root's parent, an unresolved
// edge endpoint, an endpoint given without a port).
const NoIndex = -1

// Kind distinguishes leaf nodes from compound nodes.
type Kind int

const (
	KindLeaf     Kind = iota // no children
	KindCompound             // establishes a coordinate origin for its children
)

func (k Kind) String() string {
	if k == KindCompound {
		return "compound"
	}
	return "leaf"
}

// Side is the border of its node a port sits on.
type Side string

const (
	SideUndefined Side = ""
	SideWest      Side = "WEST"
	SideEast      Side = "EAST"
	SideNorth     Side = "NORTH"
	SideSouth     Side = "SOUTH"
)

// ParseSide accepts ELK port side names case-insensitively.
func ParseSide(s string) Side {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideWest:
		return SideWest
	case SideEast:
		return SideEast
	case SideNorth:
		return SideNorth
	case SideSouth:
		return SideSouth
	}
	return SideUndefined
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in some coordinate space.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the geometric center of r.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// =============================================================================
// Arena elements
// =============================================================================

// Node is one element of the node arena. Children, Ports and Parent are arena
// indices; Abs is only meaningful after [Model.Normalize].
type Node struct {
	Index    int
	ID       string
	Kind     Kind
	Parent   int
	Rel      Point // relative to the parent's origin, as given
	Width    float64
	Height   float64
	Abs      Point // canvas space
	Type     string
	Icon     string
	Children []int
	Ports    []int
	Labels   []Label
	Options  Options
}

// Bounds returns the node's absolute box.
func (n *Node) Bounds() Rect { return Rect{X: n.Abs.X, Y: n.Abs.Y, W: n.Width, H: n.Height} }

// Port is a connection point owned by a node.
type Port struct {
	Index  int
	ID     string
	Owner  int
	Rel    Point // relative to the owning node
	Width  float64
	Height float64
	Abs    Point
	Side   Side // given or inferred during normalization
	Labels []Label
}

// Bounds returns the port's absolute box.
func (p *Port) Bounds() Rect { return Rect{X: p.Abs.X, Y: p.Abs.Y, W: p.Width, H: p.Height} }

// Center returns the absolute center of the port, the anchor used when an
// edge carries no routed sections.
func (p *Port) Center() Point { return p.Bounds().Center() }

// Label is a piece of text attached to a node, port or edge. A label without
// coordinates (Positioned false) is placed by its owner's rules.
type Label struct {
	ID         string
	Text       string
	Rel        Point
	Positioned bool
	Width      float64
	Height     float64
	FontSize   float64 // zero when the input gives none
	Abs        Point
}

// Bounds returns the label's absolute box.
func (l *Label) Bounds() Rect { return Rect{X: l.Abs.X, Y: l.Abs.Y, W: l.Width, H: l.Height} }

// Endpoint is an edge end as written in the input plus its arena resolution.
// NodeID/PortID come from the source/sourcePort form; Ref holds the first
// entry of an ELK sources/targets array, which may name a port or a node.
type Endpoint struct {
	NodeID string
	PortID string
	Ref    string
	Node   int // resolved node index, NoIndex if unresolved
	Port   int // resolved port index, NoIndex when no port is referenced
}

// Section is one routed segment of an edge. Points are relative to the
// edge's reference node (see [Edge.Reference]).
type Section struct {
	ID       string
	Start    Point
	End      Point
	Bends    []Point
	HasStart bool // false means start at the source anchor
	HasEnd   bool // false means end at the target anchor
}

// Edge is one element of the edge arena.
type Edge struct {
	Index     int
	ID        string
	Type      string
	Container int // node whose "edges" array declared the edge
	Source    Endpoint
	Target    Endpoint
	Sections  []Section
	Labels    []Label
	Junctions []Point
	Options   Options

	// Reference is the nearest common ancestor of both endpoint nodes; all
	// section, junction and label coordinates are relative to it. NoIndex
	// while the edge is unresolved.
	Reference int

	// Err is non-nil when an endpoint names a node or port that does not exist.
	Err error
}

// Resolved reports whether both endpoints were found.
func (e *Edge) Resolved() bool { return e.Err == nil }

// =============================================================================
// Options
// =============================================================================

// Options holds the merged ELK layoutOptions and properties of an element.
// layoutOptions entries take precedence over properties entries.
type Options struct {
	Layout     map[string]any
	Properties map[string]any
}

// Lookup returns the first value found for keys, checking layoutOptions and
// then properties for each key in turn.
func (o Options) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o.Layout[k]; ok {
			return v, true
		}
		if v, ok := o.Properties[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Float returns the first value for keys converted to a float64. Strings are
// parsed; unparsable values report ok=false.
func (o Options) Float(keys ...string) (float64, bool) {
	v, ok := o.Lookup(keys...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// String returns the first value for keys formatted as a string.
func (o Options) String(keys ...string) (string, bool) {
	v, ok := o.Lookup(keys...)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Option keys understood by the renderer.
var (
	FontSizeKeys      = []string{"org.eclipse.elk.font.size", "elk.font.size", "font.size"}
	EdgeThicknessKeys = []string{"org.eclipse.elk.edge.thickness", "elk.edge.thickness", "edge.thickness", "stroke.width"}
	EdgeTypeKeys      = []string{"org.eclipse.elk.edge.type", "elk.edge.type"}
	PortSideKeys      = []string{"org.eclipse.elk.port.side", "elk.port.side", "port.side"}
)

// FormatNumber renders a coordinate for output: rounded to three decimals,
// shortest form, and never "-0".
func FormatNumber(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
