package pipeline

import (
	"github.com/matzehuels/graphrender/pkg/graph"
	"github.com/matzehuels/graphrender/pkg/icons"
	"github.com/matzehuels/graphrender/pkg/route"
	"github.com/matzehuels/graphrender/pkg/style"
	"github.com/matzehuels/graphrender/pkg/svg"
)

// Load decodes layout JSON into a model. Errors are INVALID_INPUT or
// STRUCTURAL.
func Load(data []byte) (*graph.Model, error) {
	return graph.UnmarshalModel(data)
}

// Geometry normalizes m with the configured padding and routes its edges
// under the configured edge policy.
func Geometry(m *graph.Model, opts Options) (route.Result, error) {
	if err := m.Normalize(opts.Padding); err != nil {
		return route.Result{}, err
	}
	return route.Route(m, opts.EdgePolicy)
}

// Assemble builds and serializes the document.
func Assemble(m *graph.Model, routes route.Result, theme style.Theme, frags map[string]*icons.Fragment, opts Options) []byte {
	a := svg.NewAssembler(opts.AssemblerOptions()...)
	return a.Render(svg.Input{
		Model:  m,
		Routes: routes,
		Theme:  theme,
		Icons:  frags,
	}, opts.Pretty)
}
