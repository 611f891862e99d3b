// Package svg assembles a normalized [graph.Model] into an SVG document.
//
// # Document order
//
// The root <svg> is sized to the model's canvas extents. Its children are
// emitted in a fixed order:
//
//  1. rect.background covering the content area (omitted when empty)
//  2. <style> with the theme CSS, only when the theme is embedded
//  3. <defs>: edge markers, then one <g id="icon-..."> per distinct icon
//  4. g#nodes: the node tree, children nested inside their parents
//  5. g#edges: one group per routed edge
//
// Nodes reference icons with <use href="#icon-...">, so markup size grows with
// the number of distinct icons rather than the number of icon uses.
//
// # Serialization
//
// [Marshal] writes either pretty output (two-space indentation, one element
// per line, CSS indented under <style>) or compact single-line output.
// Attribute order is fixed per element and presentation attributes are sorted
// by name, so identical input yields byte-identical output.
package svg
