// Package pkg provides the core libraries for graphrender.
//
// # Overview
//
// graphrender turns an ELK-style laid-out graph (nested nodes, ports, labels
// and routed edge sections, all positioned relative to their parent) into a
// deterministic SVG document. The pkg directory is organized into three
// areas:
//
//  1. Geometry - [graph] (model, normalization) and [route] (edge paths)
//  2. Presentation - [style] (class tokens, themes), [icons] (icon cache)
//     and [svg] (document assembly and serialization)
//  3. Infrastructure - [cache] (persistent stores), [httputil] (retrying
//     HTTP client), [config], [errors], [observability] and [buildinfo]
//
// [pipeline] wires them together for the CLI and the HTTP server.
//
// # Architecture
//
// The data flow of one render:
//
//	layout JSON
//	     ↓
//	[graph] decode, index, normalize to canvas coordinates
//	     ↓
//	[route] edge sections → canvas paths
//	     ↓
//	[style] theme CSS        [icons] icon fragments (memory → store → network)
//	     ↓                        ↓
//	[svg] assemble and serialize (pretty or compact)
//	     ↓
//	SVG document
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/graphrender/pkg/cache"
//	    "github.com/matzehuels/graphrender/pkg/icons"
//	    "github.com/matzehuels/graphrender/pkg/pipeline"
//	    "github.com/matzehuels/graphrender/pkg/style"
//	)
//
//	dir, enabled := cache.ResolveDir(nil)
//	fetcher, _ := icons.NewIconifyFetcher("", 0)
//	runner := pipeline.NewRunner(cache.StoreForDir(dir, enabled), fetcher, style.SassCLI{}, nil)
//
//	result, err := runner.RenderFile(context.Background(), "layout.json", pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Document)
//
// # Determinism
//
// For a fixed input and fixed options two renders produce byte-identical
// documents: attributes are emitted in a fixed order, numbers are formatted
// canonically, and nothing time-dependent reaches the output.
package pkg
