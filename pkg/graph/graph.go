package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/graphrender/pkg/errors"
)

// =============================================================================
// Wire format
// =============================================================================

// ID is an ELK element identifier. ELK accepts both strings and numbers.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// ElkNode is a node (or the root graph) as emitted by ELK after layout.
// Pointer geometry fields distinguish "absent" from zero.
type ElkNode struct {
	ID            ID             `json:"id"`
	X             *float64       `json:"x,omitempty"`
	Y             *float64       `json:"y,omitempty"`
	Width         *float64       `json:"width,omitempty"`
	Height        *float64       `json:"height,omitempty"`
	Type          string         `json:"type,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	Children      []ElkNode      `json:"children,omitempty"`
	Ports         []ElkPort      `json:"ports,omitempty"`
	Labels        []ElkLabel     `json:"labels,omitempty"`
	Edges         []ElkEdge      `json:"edges,omitempty"`
	LayoutOptions map[string]any `json:"layoutOptions,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// ElkPort is a port on an ElkNode, positioned relative to it.
type ElkPort struct {
	ID            ID             `json:"id"`
	X             *float64       `json:"x,omitempty"`
	Y             *float64       `json:"y,omitempty"`
	Width         float64        `json:"width,omitempty"`
	Height        float64        `json:"height,omitempty"`
	Side          string         `json:"side,omitempty"`
	Labels        []ElkLabel     `json:"labels,omitempty"`
	LayoutOptions map[string]any `json:"layoutOptions,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// ElkLabel is a text label. Coordinates are relative to the owner.
type ElkLabel struct {
	ID            ID             `json:"id,omitempty"`
	Text          string         `json:"text"`
	X             *float64       `json:"x,omitempty"`
	Y             *float64       `json:"y,omitempty"`
	Width         float64        `json:"width,omitempty"`
	Height        float64        `json:"height,omitempty"`
	LayoutOptions map[string]any `json:"layoutOptions,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// ElkPoint is a coordinate pair inside a section.
type ElkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElkSection is one routed piece of an edge.
type ElkSection struct {
	ID         ID         `json:"id,omitempty"`
	StartPoint *ElkPoint  `json:"startPoint,omitempty"`
	EndPoint   *ElkPoint  `json:"endPoint,omitempty"`
	BendPoints []ElkPoint `json:"bendPoints,omitempty"`
}

// ElkEdge accepts both the simple (source/sourcePort) and the extended
// (sources/targets) ELK edge forms.
type ElkEdge struct {
	ID             ID             `json:"id"`
	Type           string         `json:"type,omitempty"`
	Source         ID             `json:"source,omitempty"`
	SourcePort     ID             `json:"sourcePort,omitempty"`
	Target         ID             `json:"target,omitempty"`
	TargetPort     ID             `json:"targetPort,omitempty"`
	Sources        []ID           `json:"sources,omitempty"`
	Targets        []ID           `json:"targets,omitempty"`
	Sections       []ElkSection   `json:"sections,omitempty"`
	Labels         []ElkLabel     `json:"labels,omitempty"`
	JunctionPoints []ElkPoint     `json:"junctionPoints,omitempty"`
	LayoutOptions  map[string]any `json:"layoutOptions,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// =============================================================================
// Reading API
// =============================================================================

// ReadModelFile reads an ELK layout JSON file and builds its [Model].
func ReadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readModelFrom(f)
}

// ReadModel decodes ELK layout JSON from an io.Reader and builds its [Model].
func ReadModel(r io.Reader) (*Model, error) {
	return readModelFrom(r)
}

// UnmarshalModel builds a [Model] from ELK layout JSON bytes.
func UnmarshalModel(data []byte) (*Model, error) {
	return readModelFrom(bytes.NewReader(data))
}

func readModelFrom(r io.Reader) (*Model, error) {
	var root ElkNode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout JSON")
	}
	return Build(&root)
}

// =============================================================================
// Model
// =============================================================================

// Model is the arena form of a laid-out graph. Nodes are stored in pre-order
// (Nodes[0] is the root, children follow their parent in input order), so
// iterating the slices gives a deterministic traversal.
type Model struct {
	Nodes []Node
	Ports []Port
	Edges []Edge

	// RootSized reports whether the input root carried both width and height.
	RootSized bool

	// Padding is the canvas margin applied by the last Normalize call.
	Padding float64

	nodeIndex  map[string]int
	portIndex  map[string]int
	normalized bool
}

// Root returns the root node.
func (m *Model) Root() *Node { return &m.Nodes[0] }

// Node looks up a node by id.
func (m *Model) Node(id string) (*Node, bool) {
	i, ok := m.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &m.Nodes[i], true
}

// Port looks up a port by id.
func (m *Model) Port(id string) (*Port, bool) {
	i, ok := m.portIndex[id]
	if !ok {
		return nil, false
	}
	return &m.Ports[i], true
}

// Normalized reports whether absolute coordinates have been computed.
func (m *Model) Normalized() bool { return m.normalized }

// UnresolvedEdges returns the edges whose endpoints could not be resolved.
func (m *Model) UnresolvedEdges() []*Edge {
	var out []*Edge
	for i := range m.Edges {
		if m.Edges[i].Err != nil {
			out = append(out, &m.Edges[i])
		}
	}
	return out
}

// Icons returns the distinct icon identifiers in node order.
func (m *Model) Icons() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range m.Nodes {
		icon := m.Nodes[i].Icon
		if icon == "" || seen[icon] {
			continue
		}
		seen[icon] = true
		out = append(out, icon)
	}
	return out
}

// Ancestors returns the ancestor chain of node i, starting with i itself and
// ending at the root.
func (m *Model) Ancestors(i int) []int {
	var chain []int
	for steps := 0; i != NoIndex && steps <= len(m.Nodes); steps++ {
		chain = append(chain, i)
		i = m.Nodes[i].Parent
	}
	return chain
}

// CommonAncestor returns the nearest common ancestor of nodes a and b. A
// node's chain includes itself, so the result may be a or b; a self-loop
// resolves to the node's parent (the root for the root).
func (m *Model) CommonAncestor(a, b int) int {
	if a == b {
		if p := m.Nodes[a].Parent; p != NoIndex {
			return p
		}
		return a
	}
	onA := make(map[int]bool)
	for _, n := range m.Ancestors(a) {
		onA[n] = true
	}
	for _, n := range m.Ancestors(b) {
		if onA[n] {
			return n
		}
	}
	return 0
}

// =============================================================================
// Build
// =============================================================================

type frame struct {
	raw    *ElkNode
	parent int
}

// Build converts a decoded ELK document into a [Model]. All ids are indexed
// and every edge endpoint is resolved here; an endpoint that names a missing
// node or port leaves the edge in the model with Err set, so the caller can
// apply its own skip or abort policy.
//
// Build returns INVALID_INPUT for missing required geometry or duplicate ids
// and STRUCTURAL when a node id reappears inside its own subtree.
func Build(root *ElkNode) (*Model, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout document is empty")
	}
	m := &Model{
		nodeIndex: make(map[string]int),
		portIndex: make(map[string]int),
	}

	var rawEdges []rawEdgeRef
	stack := []frame{{raw: root, parent: NoIndex}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx, err := m.addNode(f.raw, f.parent)
		if err != nil {
			return nil, err
		}
		for i := range f.raw.Edges {
			rawEdges = append(rawEdges, rawEdgeRef{raw: &f.raw.Edges[i], container: idx})
		}
		for i := len(f.raw.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{raw: &f.raw.Children[i], parent: idx})
		}
	}

	if root.Width != nil && root.Height != nil {
		m.RootSized = true
	}

	edgeIDs := make(map[string]bool)
	for _, re := range rawEdges {
		e, err := m.buildEdge(re.raw, re.container)
		if err != nil {
			return nil, err
		}
		if edgeIDs[e.ID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = true
		e.Index = len(m.Edges)
		m.Edges = append(m.Edges, e)
	}
	return m, nil
}

type rawEdgeRef struct {
	raw       *ElkEdge
	container int
}

func (m *Model) addNode(raw *ElkNode, parent int) (int, error) {
	isRoot := parent == NoIndex
	id := string(raw.ID)
	if id == "" {
		if !isRoot {
			return 0, errors.New(errors.ErrCodeInvalidInput, "node without id under %q", m.Nodes[parent].ID)
		}
		id = RootID
	}

	if prev, dup := m.nodeIndex[id]; dup {
		for _, a := range m.Ancestors(parent) {
			if a == prev {
				return 0, errors.New(errors.ErrCodeStructural, "node %q is nested inside itself", id)
			}
		}
		return 0, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", id)
	}

	n := Node{
		Index:   len(m.Nodes),
		ID:      id,
		Parent:  parent,
		Type:    raw.Type,
		Icon:    raw.Icon,
		Options: Options{Layout: raw.LayoutOptions, Properties: raw.Properties},
	}
	if isRoot {
		n.Width, n.Height = deref(raw.Width), deref(raw.Height)
	} else {
		var missing []string
		for _, f := range []struct {
			name string
			v    *float64
			dst  *float64
		}{
			{"x", raw.X, &n.Rel.X},
			{"y", raw.Y, &n.Rel.Y},
			{"width", raw.Width, &n.Width},
			{"height", raw.Height, &n.Height},
		} {
			if f.v == nil {
				missing = append(missing, f.name)
				continue
			}
			*f.dst = *f.v
		}
		if len(missing) > 0 {
			return 0, errors.New(errors.ErrCodeInvalidInput, "node %q is missing %v", id, missing)
		}
	}
	if len(raw.Children) > 0 {
		n.Kind = KindCompound
	}
	for i := range raw.Labels {
		n.Labels = append(n.Labels, buildLabel(&raw.Labels[i]))
	}

	m.nodeIndex[id] = n.Index
	m.Nodes = append(m.Nodes, n)
	if parent != NoIndex {
		m.Nodes[parent].Children = append(m.Nodes[parent].Children, n.Index)
	}

	for i := range raw.Ports {
		if err := m.addPort(&raw.Ports[i], n.Index); err != nil {
			return 0, err
		}
	}
	return n.Index, nil
}

func (m *Model) addPort(raw *ElkPort, owner int) error {
	id := string(raw.ID)
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "port without id on node %q", m.Nodes[owner].ID)
	}
	if _, dup := m.portIndex[id]; dup {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate port id %q", id)
	}
	if raw.X == nil || raw.Y == nil {
		return errors.New(errors.ErrCodeInvalidInput, "port %q is missing x/y", id)
	}
	p := Port{
		Index:  len(m.Ports),
		ID:     id,
		Owner:  owner,
		Rel:    Point{X: *raw.X, Y: *raw.Y},
		Width:  raw.Width,
		Height: raw.Height,
		Side:   ParseSide(raw.Side),
	}
	if p.Side == SideUndefined {
		opts := Options{Layout: raw.LayoutOptions, Properties: raw.Properties}
		if s, ok := opts.String(PortSideKeys...); ok {
			p.Side = ParseSide(s)
		}
	}
	for i := range raw.Labels {
		p.Labels = append(p.Labels, buildLabel(&raw.Labels[i]))
	}
	m.portIndex[id] = p.Index
	m.Ports = append(m.Ports, p)
	m.Nodes[owner].Ports = append(m.Nodes[owner].Ports, p.Index)
	return nil
}

func buildLabel(raw *ElkLabel) Label {
	l := Label{
		ID:     string(raw.ID),
		Text:   raw.Text,
		Width:  raw.Width,
		Height: raw.Height,
	}
	if raw.X != nil && raw.Y != nil {
		l.Rel = Point{X: *raw.X, Y: *raw.Y}
		l.Positioned = true
	}
	opts := Options{Layout: raw.LayoutOptions, Properties: raw.Properties}
	if fs, ok := opts.Float(FontSizeKeys...); ok && fs > 0 {
		l.FontSize = fs
	}
	return l
}

func (m *Model) buildEdge(raw *ElkEdge, container int) (Edge, error) {
	e := Edge{
		ID:        string(raw.ID),
		Type:      raw.Type,
		Container: container,
		Options:   Options{Layout: raw.LayoutOptions, Properties: raw.Properties},
		Reference: NoIndex,
	}
	if e.ID == "" {
		return e, errors.New(errors.ErrCodeInvalidInput, "edge without id on node %q", m.Nodes[container].ID)
	}

	var ok bool
	if e.Source, ok = endpointFrom(raw.Source, raw.SourcePort, raw.Sources); !ok {
		return e, errors.New(errors.ErrCodeInvalidInput, "edge %q has no source", e.ID)
	}
	if e.Target, ok = endpointFrom(raw.Target, raw.TargetPort, raw.Targets); !ok {
		return e, errors.New(errors.ErrCodeInvalidInput, "edge %q has no target", e.ID)
	}

	for _, s := range raw.Sections {
		sec := Section{ID: string(s.ID)}
		if s.StartPoint != nil {
			sec.Start, sec.HasStart = Point(*s.StartPoint), true
		}
		if s.EndPoint != nil {
			sec.End, sec.HasEnd = Point(*s.EndPoint), true
		}
		for _, b := range s.BendPoints {
			sec.Bends = append(sec.Bends, Point(b))
		}
		e.Sections = append(e.Sections, sec)
	}
	for _, j := range raw.JunctionPoints {
		e.Junctions = append(e.Junctions, Point(j))
	}
	for i := range raw.Labels {
		e.Labels = append(e.Labels, buildLabel(&raw.Labels[i]))
	}

	if err := m.resolve(&e.Source, e.ID, "source"); err != nil {
		e.Err = err
	} else if err := m.resolve(&e.Target, e.ID, "target"); err != nil {
		e.Err = err
	} else {
		e.Reference = m.CommonAncestor(e.Source.Node, e.Target.Node)
	}
	return e, nil
}

func endpointFrom(node, port ID, refs []ID) (Endpoint, bool) {
	ep := Endpoint{NodeID: string(node), PortID: string(port), Node: NoIndex, Port: NoIndex}
	if ep.NodeID == "" && ep.PortID == "" && len(refs) > 0 {
		ep.Ref = string(refs[0])
	}
	return ep, ep.NodeID != "" || ep.PortID != "" || ep.Ref != ""
}

// resolve maps an endpoint's ids to arena indices.
func (m *Model) resolve(ep *Endpoint, edgeID, role string) error {
	if ep.Ref != "" {
		if pi, ok := m.portIndex[ep.Ref]; ok {
			ep.Port, ep.Node = pi, m.Ports[pi].Owner
			return nil
		}
		if ni, ok := m.nodeIndex[ep.Ref]; ok {
			ep.Node = ni
			return nil
		}
		return errors.New(errors.ErrCodeEdgeResolution, "edge %q: %s %q does not exist", edgeID, role, ep.Ref).At(edgeID)
	}

	if ep.NodeID != "" {
		ni, ok := m.nodeIndex[ep.NodeID]
		if !ok {
			return errors.New(errors.ErrCodeEdgeResolution, "edge %q: %s node %q does not exist", edgeID, role, ep.NodeID).At(edgeID)
		}
		ep.Node = ni
	}
	if ep.PortID != "" {
		pi, ok := m.portIndex[ep.PortID]
		if !ok {
			return errors.New(errors.ErrCodeEdgeResolution, "edge %q: %s port %q does not exist", edgeID, role, ep.PortID).At(edgeID)
		}
		owner := m.Ports[pi].Owner
		if ep.Node != NoIndex && ep.Node != owner {
			return errors.New(errors.ErrCodeEdgeResolution, "edge %q: %s port %q belongs to %q, not %q",
				edgeID, role, ep.PortID, m.Nodes[owner].ID, ep.NodeID).At(edgeID)
		}
		ep.Port, ep.Node = pi, owner
	}
	return nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// String gives a compact summary, mostly for logs.
func (m *Model) String() string {
	return "graph{nodes=" + strconv.Itoa(len(m.Nodes)) +
		" ports=" + strconv.Itoa(len(m.Ports)) +
		" edges=" + strconv.Itoa(len(m.Edges)) + "}"
}
