package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/graphrender/pkg/graph"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
)

// Defaults for [Assembler].
const (
	DefaultFontSize = 12.0
	IconMargin      = 4.0
	LabelColor      = "#111"
)

// Input is everything one document is assembled from.
type Input struct {
	Model  *graph.Model // normalized
	Routes route.Result
	Theme  style.Theme

	// Icons maps icon identifiers to resolved fragments. Nodes whose icon
	// is missing are drawn without one.
	Icons map[string]*icons.Fragment
}

// Option configures an [Assembler].
type Option func(*Assembler)

// WithNodeAttrs overrides node rectangle attributes. Geometry keys
// (x, y, width, height, d) are ignored by all three attribute options.
func WithNodeAttrs(a style.Attrs) Option {
	return func(as *Assembler) { as.nodeAttrs = as.nodeAttrs.Merge(a.WithoutGeometry()) }
}

// WithPortAttrs overrides port rectangle attributes.
func WithPortAttrs(a style.Attrs) Option {
	return func(as *Assembler) { as.portAttrs = as.portAttrs.Merge(a.WithoutGeometry()) }
}

// WithEdgeAttrs overrides edge path attributes.
func WithEdgeAttrs(a style.Attrs) Option {
	return func(as *Assembler) { as.edgeAttrs = as.edgeAttrs.Merge(a.WithoutGeometry()) }
}

// WithFontSize sets the size of labels that carry none. Non-positive sizes
// are ignored.
func WithFontSize(size float64) Option {
	return func(as *Assembler) {
		if size > 0 {
			as.fontSize = size
		}
	}
}

// Assembler builds documents. It holds no per-document state and may be
// reused.
type Assembler struct {
	nodeAttrs, portAttrs, edgeAttrs style.Attrs
	fontSize                        float64
}

// NewAssembler creates an Assembler with the default styles.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		nodeAttrs: style.DefaultNodeAttrs(),
		portAttrs: style.DefaultPortAttrs(),
		edgeAttrs: style.DefaultEdgeAttrs(),
		fontSize:  DefaultFontSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// document carries the per-call state of Assemble.
type document struct {
	*Assembler
	in  Input
	ids *icons.DefIDs
}

// Assemble builds the document tree for in.
func (a *Assembler) Assemble(in Input) *Element {
	d := &document{Assembler: a, in: in, ids: icons.NewDefIDs()}
	m := in.Model
	w, h := m.Extents()

	root := El("svg",
		A("xmlns", "http://www.w3.org/2000/svg"),
		A("width", w),
		A("height", h),
		A("viewBox", fmt.Sprintf("0 0 %s %s", graph.FormatNumber(w), graph.FormatNumber(h))),
	)

	if in.Theme.Embed && strings.TrimSpace(in.Theme.CSS) != "" {
		root.Append(&Element{Name: "style", Text: in.Theme.CSS})
	}

	root.Append(d.defs())

	if c := m.Content(); c.W > 0 && c.H > 0 {
		root.Append(El("rect",
			A("id", m.Root().ID),
			A("class", "background"),
			A("x", c.X), A("y", c.Y), A("width", c.W), A("height", c.H),
			A("fill", "none"),
			A("stroke", "none"),
		))
	}

	if nodes := d.nodes(); len(nodes.Children) > 0 {
		root.Append(nodes)
	}
	if edges := d.edges(); len(edges.Children) > 0 {
		root.Append(edges)
	}
	return root
}

// Render assembles and serializes in one step.
func (a *Assembler) Render(in Input, pretty bool) []byte {
	return Marshal(a.Assemble(in), pretty)
}

// =============================================================================
// Defs
// =============================================================================

func (d *document) defs() *Element {
	defs := El("defs").Append(markers(d.edgeAttrs)...)
	for _, icon := range d.in.Model.Icons() {
		frag := d.in.Icons[icon]
		if frag == nil {
			continue
		}
		g := &Element{Name: "g", Attrs: []Attr{A("id", d.ids.ID(icon))}, Raw: frag.Inner}
		// prefixes bound on the icon root must stay in scope for its markup
		for _, ns := range frag.Namespaces {
			g.Attrs = append(g.Attrs, A("xmlns:"+ns.Prefix, ns.URI))
		}
		defs.Append(g)
	}
	return defs
}

// =============================================================================
// Nodes
// =============================================================================

func (d *document) nodes() *Element {
	g := El("g", A("id", "nodes"))
	m := d.in.Model
	for _, ci := range m.Root().Children {
		g.Append(d.node(ci))
	}
	return g
}

// node renders one node and, nested inside it, its descendants. The arena
// was checked for cycles during normalization.
func (d *document) node(i int) *Element {
	m := d.in.Model
	n := &m.Nodes[i]
	b := n.Bounds()

	g := El("g", A("id", n.ID), A("class", style.Classes("node", n.Type)))
	g.Append(El("rect", append(
		[]Attr{A("x", b.X), A("y", b.Y), A("width", b.W), A("height", b.H)},
		attrs(d.nodeAttrs)...)...))

	if icon := d.icon(n); icon != nil {
		g.Append(icon)
	}

	labels := El("g", A("class", "labels"))
	for li := range n.Labels {
		labels.Append(d.text(&n.Labels[li], "middle", "middle"))
	}
	if len(n.Labels) == 0 {
		c := b.Center()
		labels.Append(&Element{Name: "text", Text: n.ID, Attrs: []Attr{
			A("x", c.X), A("y", c.Y),
			A("font-size", d.fontSize),
			A("text-anchor", "middle"),
			A("dominant-baseline", "middle"),
			A("fill", LabelColor),
		}})
	}
	g.Append(labels)

	if len(n.Ports) > 0 {
		ports := El("g", A("class", "ports"))
		for _, pi := range n.Ports {
			ports.Append(d.portElement(&m.Ports[pi]))
		}
		g.Append(ports)
	}

	for _, ci := range n.Children {
		g.Append(d.node(ci))
	}
	return g
}

func (d *document) icon(n *graph.Node) *Element {
	if n.Icon == "" {
		return nil
	}
	frag := d.in.Icons[n.Icon]
	if frag == nil {
		return nil
	}
	targetW := max(n.Width-2*IconMargin, 1)
	targetH := max(n.Height-2*IconMargin, 1)
	scale := min(targetW/frag.Width, targetH/frag.Height)
	c := n.Bounds().Center()

	transform := fmt.Sprintf("translate(%s,%s) scale(%s) translate(%s,%s)",
		graph.FormatNumber(c.X), graph.FormatNumber(c.Y),
		formatScale(scale),
		graph.FormatNumber(-(frag.MinX + frag.Width/2)), graph.FormatNumber(-(frag.MinY + frag.Height/2)))

	return El("g", A("class", "icon"), A("transform", transform)).
		Append(El("use", A("href", "#"+d.ids.ID(n.Icon))))
}

func (d *document) portElement(p *graph.Port) *Element {
	b := p.Bounds()
	g := El("g", A("id", p.ID), A("class", "port"))
	g.Append(El("rect", append(
		[]Attr{A("x", b.X), A("y", b.Y), A("width", b.W), A("height", b.H)},
		attrs(d.portAttrs)...)...))

	if len(p.Labels) == 0 {
		return g
	}
	anchor := "middle"
	switch p.Side {
	case graph.SideWest:
		anchor = "end"
	case graph.SideEast:
		anchor = "start"
	}
	centerY := p.Center().Y

	labels := El("g", A("class", "labels"))
	for li := range p.Labels {
		l := &p.Labels[li]
		baseline := "middle"
		switch y := l.Bounds().Center().Y; {
		case y < centerY-1e-6:
			baseline = "text-before-edge"
		case y > centerY+1e-6:
			baseline = "text-after-edge"
		}
		if bg := labelBackground(l); bg != nil {
			labels.Append(bg)
		}
		labels.Append(d.text(l, anchor, baseline))
	}
	return g.Append(labels)
}

// =============================================================================
// Edges
// =============================================================================

func (d *document) edges() *Element {
	g := El("g", A("id", "edges"))
	for i := range d.in.Routes.Paths {
		g.Append(d.edgeElement(&d.in.Routes.Paths[i]))
	}
	return g
}

func (d *document) edgeElement(p *route.Path) *Element {
	e := p.Edge
	g := El("g", A("id", e.ID), A("class", style.Classes("edge", e.Type)))

	edgeType, ok := e.Options.String(graph.EdgeTypeKeys...)
	if !ok || edgeType == "" {
		edgeType = e.Type
	}
	deco := Decoration(edgeType)

	pa := style.Attrs{"fill": "none"}.Merge(d.edgeAttrs).Merge(style.Attrs{
		"stroke-width":     d.thickness(e),
		"marker-start":     deco.MarkerStart,
		"marker-end":       deco.MarkerEnd,
		"stroke-dasharray": deco.Dash,
	})
	g.Append(El("path", append([]Attr{A("d", p.D())}, attrs(pa)...)...))

	for _, b := range p.Bends {
		g.Append(El("circle", A("cx", b.X), A("cy", b.Y), A("r", 2), A("fill", "#888"), A("stroke", "none")))
	}
	for _, j := range p.Junctions {
		g.Append(El("circle", A("cx", j.X), A("cy", j.Y), A("r", 2.5), A("fill", "#444")))
	}

	if len(p.Labels) > 0 {
		labels := El("g", A("class", "labels"))
		for li := range p.Labels {
			l := &p.Labels[li]
			if bg := labelBackground(l); bg != nil {
				labels.Append(bg)
			}
			labels.Append(d.text(l, "middle", "middle"))
		}
		g.Append(labels)
	}
	return g
}

// thickness returns the stroke width for e: its thickness option when
// numeric (non-positive becomes 1), otherwise the configured edge width.
func (d *document) thickness(e *graph.Edge) string {
	t, ok := e.Options.Float(graph.EdgeThicknessKeys...)
	if !ok {
		return d.edgeAttrs["stroke-width"]
	}
	if t <= 0 {
		t = 1
	}
	return graph.FormatNumber(t)
}

// =============================================================================
// Labels
// =============================================================================

func (d *document) text(l *graph.Label, anchor, baseline string) *Element {
	c := l.Bounds().Center()
	size := l.FontSize
	if size <= 0 {
		size = d.fontSize
	}
	return &Element{Name: "text", Text: l.Text, Attrs: []Attr{
		A("x", c.X), A("y", c.Y),
		A("font-size", size),
		A("text-anchor", anchor),
		A("dominant-baseline", baseline),
		A("fill", LabelColor),
	}}
}

func labelBackground(l *graph.Label) *Element {
	if l.Width <= 0 || l.Height <= 0 {
		return nil
	}
	return El("rect",
		A("class", "background"),
		A("x", l.Abs.X), A("y", l.Abs.Y), A("width", l.Width), A("height", l.Height),
		A("fill", "none"),
		A("stroke", LabelColor),
		A("stroke-width", 0.5),
	)
}

// attrs returns a as attributes sorted by name.
func attrs(a style.Attrs) []Attr {
	out := make([]Attr, 0, len(a))
	for _, k := range a.Keys() {
		out = append(out, Attr{k, a[k]})
	}
	return out
}

func formatScale(s float64) string {
	r := math.Round(s*1e6) / 1e6
	return strconv.FormatFloat(r, 'f', -1, 64)
}
