// Package graph provides the geometry model for ELK layout output.
//
// ELK (Eclipse Layout Kernel) emits nested JSON where every node, port, label
// and edge section is positioned relative to its container. This package
// decodes that JSON into an arena [Model], resolves every id reference once,
// and computes absolute canvas coordinates.
//
// # Architecture
//
// The package sits at the input boundary of the render pipeline:
//
//   - [ElkNode], [ElkEdge], [ElkPort], [ElkLabel]: wire format (this package)
//   - [Model]: arena of [Node], [Port] and [Edge] addressed by integer index
//   - pkg/route: turns resolved edges into canvas-space paths
//   - pkg/svg: draws the normalized model
//
// # Reading
//
//	m, err := graph.ReadModelFile("layout.json")
//	if err != nil {
//	    return err // INVALID_INPUT, STRUCTURAL or FILE_NOT_FOUND
//	}
//	if err := m.Normalize(graph.DefaultPadding); err != nil {
//	    return err
//	}
//	w, h := m.Extents()
//
// # Coordinates
//
// The root node is placed at (padding, padding) regardless of any x/y it
// carries. Each other node's absolute position is its parent's absolute
// position plus its own relative x/y. Ports and node labels use their owning
// node as origin; port labels use the port.
//
// Edge sections, junction points and edge labels are relative to the edge's
// reference node: the nearest common ancestor of the two endpoint nodes.
// See [Model.CommonAncestor].
//
// Layout data whose descendants stick out of their compound parent is
// accepted as given. Nothing is clipped.
//
// # Edge resolution
//
// [Build] never fails on a dangling edge reference. Such edges stay in the
// model with [Edge.Err] set to an EDGE_RESOLUTION error; whether to skip them
// or abort is the caller's policy.
//
// # Concurrency
//
// A Model is owned by one render call. It is not safe for concurrent writes.
package graph
