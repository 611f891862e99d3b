package svg

import (
	"cmp"
	"strings"

	"github.com/matzehuels/graphrender/pkg/style"
)

// Marker ids referenced by edge paths.
const (
	MarkerArrow          = "arrow"
	MarkerArrowOpen      = "arrow-open"
	MarkerTriangleHollow = "triangle-hollow"
)

// DependencyDash is the dash pattern of DEPENDENCY edges.
const DependencyDash = "6 3"

// EdgeDecoration is the marker and dash styling of one edge type.
type EdgeDecoration struct {
	MarkerStart string
	MarkerEnd   string
	Dash        string
}

// Decoration maps an ELK edge type to its markers. Matching ignores case;
// unknown and empty types get a filled arrow at the target.
func Decoration(edgeType string) EdgeDecoration {
	switch strings.ToUpper(strings.TrimSpace(edgeType)) {
	case "NONE", "UNDIRECTED":
		return EdgeDecoration{}
	case "ASSOCIATION":
		return EdgeDecoration{MarkerEnd: ref(MarkerArrowOpen)}
	case "DEPENDENCY":
		return EdgeDecoration{MarkerEnd: ref(MarkerArrowOpen), Dash: DependencyDash}
	case "GENERALIZATION":
		return EdgeDecoration{MarkerEnd: ref(MarkerTriangleHollow)}
	}
	return EdgeDecoration{MarkerEnd: ref(MarkerArrow)}
}

func ref(id string) string { return "url(#" + id + ")" }

// markers builds the marker definitions, colored like edges drawn with
// attrs.
func markers(attrs style.Attrs) []*Element {
	defaults := style.DefaultEdgeAttrs()
	stroke := cmp.Or(attrs["stroke"], defaults["stroke"])
	width := cmp.Or(attrs["stroke-width"], defaults["stroke-width"])

	marker := func(id string, size, refX, refY int, path *Element) *Element {
		return El("marker",
			A("id", id),
			A("markerWidth", size),
			A("markerHeight", size),
			A("refX", refX),
			A("refY", refY),
			A("orient", "auto"),
			A("markerUnits", "strokeWidth"),
		).Append(path)
	}
	return []*Element{
		marker(MarkerArrow, 10, 5, 5, El("path",
			A("d", "M 0 0 L 10 5 L 0 10 L 2 5 Z"),
			A("fill", stroke),
		)),
		marker(MarkerArrowOpen, 10, 10, 5, El("path",
			A("d", "M 0 0 L 10 5 L 0 10"),
			A("fill", "none"),
			A("stroke", stroke),
			A("stroke-width", width),
		)),
		marker(MarkerTriangleHollow, 12, 10, 6, El("path",
			A("d", "M 0 0 L 10 6 L 0 12 Z"),
			A("fill", "white"),
			A("stroke", stroke),
			A("stroke-width", width),
		)),
	}
}
