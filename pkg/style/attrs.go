package style

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Attrs is a set of SVG presentation attributes. Keys may be written with
// underscores (stroke_width) and are normalized to SVG names (stroke-width).
type Attrs map[string]string

// DefaultNodeAttrs returns the attributes drawn on node rectangles.
func DefaultNodeAttrs() Attrs {
	return Attrs{"fill": "lightblue", "stroke": "black", "rx": "2"}
}

// DefaultPortAttrs returns the attributes drawn on port rectangles.
func DefaultPortAttrs() Attrs {
	return Attrs{"fill": "#444", "stroke": "#111"}
}

// DefaultEdgeAttrs returns the attributes drawn on edge paths.
func DefaultEdgeAttrs() Attrs {
	return Attrs{"stroke": "#222", "stroke-width": "1.5"}
}

// Merge returns a copy of a with every entry of override applied on top.
// An override with an empty value removes the attribute.
func (a Attrs) Merge(override Attrs) Attrs {
	out := make(Attrs, len(a)+len(override))
	for k, v := range a {
		out[normalizeKey(k)] = v
	}
	for k, v := range override {
		k = normalizeKey(k)
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Overlay returns a with override layered on top. Unlike Merge, empty
// values are kept, so a later Merge onto the defaults still removes the
// attribute. A nil or empty override returns a unchanged.
func (a Attrs) Overlay(override Attrs) Attrs {
	if len(override) == 0 {
		return a
	}
	out := make(Attrs, len(a)+len(override))
	for k, v := range a {
		out[normalizeKey(k)] = v
	}
	for k, v := range override {
		out[normalizeKey(k)] = v
	}
	return out
}

// geometryAttrs are taken from the layout and never overridden.
var geometryAttrs = []string{"d", "height", "width", "x", "y"}

// Geometry returns the keys of a that name layout geometry, sorted.
func (a Attrs) Geometry() []string {
	var out []string
	for _, k := range a.Keys() {
		if slices.Contains(geometryAttrs, normalizeKey(k)) {
			out = append(out, k)
		}
	}
	return out
}

// WithoutGeometry returns a copy of a with the geometry keys removed.
func (a Attrs) WithoutGeometry() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		if k = normalizeKey(k); !slices.Contains(geometryAttrs, k) {
			out[k] = v
		}
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Float returns the numeric value of key.
func (a Attrs) Float(key string) (float64, bool) {
	v, ok := a[normalizeKey(key)]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}

// AttrsFromMap converts loosely typed config values (numbers, bools,
// strings) into Attrs.
func AttrsFromMap(m map[string]any) Attrs {
	if m == nil {
		return nil
	}
	out := make(Attrs, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[normalizeKey(k)] = t
		case float64:
			out[normalizeKey(k)] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			out[normalizeKey(k)] = ""
		default:
			out[normalizeKey(k)] = fmt.Sprint(t)
		}
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.TrimSpace(k), "_", "-")
}
