package view

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/graphpane/graphpane/graph"
)

// playScript mutates a fresh model according to an encoded operation
// script, reconciling every third operation to interleave view catch-up
// with mutation, and finishes with one reconcile on the quiesced model.
// Each op encodes kind = op%4 (add vertex, add edge, remove vertex,
// remove edge) and an argument selecting the target.
func playScript(ops []int) *Panel {
	g := graph.New()
	p, err := New(g)
	if err != nil {
		panic(err)
	}
	p.width, p.height = 800, 600

	var vertices []*graph.Vertex
	var edges []*graph.Edge

	for i, op := range ops {
		kind, arg := op%4, op/4
		switch kind {
		case 0:
			vertices = append(vertices, g.AddVertex(fmt.Sprintf("v%d", i)))
		case 1:
			if len(vertices) > 0 {
				a := vertices[arg%len(vertices)]
				b := vertices[(arg/7)%len(vertices)]
				if e, addErr := g.AddEdge(a, b, nil); addErr == nil {
					edges = append(edges, e)
				}
			}
		case 2:
			if len(vertices) > 0 {
				idx := arg % len(vertices)
				_ = g.RemoveVertex(vertices[idx])
				vertices = append(vertices[:idx], vertices[idx+1:]...)
			}
		case 3:
			if len(edges) > 0 {
				// The handle may already be gone through a vertex cascade.
				idx := arg % len(edges)
				_ = g.RemoveEdge(edges[idx])
				edges = append(edges[:idx], edges[idx+1:]...)
			}
		}
		if i%3 == 2 {
			p.reconcileLocked()
		}
	}
	p.reconcileLocked()
	return p
}

// checkConverged verifies that the view exactly mirrors the quiesced
// model: element sets, multiplicity indices, adjacency cache, bounds.
func checkConverged(p *Panel) error {
	if got, want := len(p.registry.vertices), p.model.Order(); got != want {
		return fmt.Errorf("displaying %d vertices, model has %d", got, want)
	}
	if got, want := len(p.registry.edges), p.model.Size(); got != want {
		return fmt.Errorf("displaying %d edges, model has %d", got, want)
	}

	for _, v := range p.model.Vertices() {
		vv, ok := p.registry.vertexView(v)
		if !ok {
			return fmt.Errorf("vertex %v not displayed", v)
		}
		if !vv.attached {
			return fmt.Errorf("vertex %v left staged", v)
		}
		if err := checkBounds(p, vv); err != nil {
			return err
		}
	}

	// Multiplicity: per unordered endpoint pair, indices gap-free from
	// zero with the oldest edge on the straight slot.
	type pairKey struct{ lo, hi string }
	keyOf := func(ev *EdgeView) pairKey {
		a, b := ev.from.vertex.ID(), ev.to.vertex.ID()
		if b < a {
			a, b = b, a
		}
		return pairKey{a, b}
	}
	indices := make(map[pairKey][]int)
	for _, c := range p.registry.connections {
		ev, ok := p.registry.edges[c.edge]
		if !ok {
			return fmt.Errorf("connection records unknown edge %v", c.edge)
		}
		if !ev.attached {
			return fmt.Errorf("edge %v left staged", c.edge)
		}
		key := keyOf(ev)
		indices[key] = append(indices[key], ev.index)
	}
	for key, idx := range indices {
		if idx[0] != 0 {
			return fmt.Errorf("pair %v: oldest edge has index %d, want 0", key, idx[0])
		}
		seen := make([]bool, len(idx))
		for _, i := range idx {
			if i < 0 || i >= len(idx) || seen[i] {
				return fmt.Errorf("pair %v: indices %v are not gap-free", key, idx)
			}
			seen[i] = true
		}
	}

	// Adjacency cache agrees with the model for every displayed pair.
	views := p.registry.vertexViews()
	for i, vv := range views {
		for j, ov := range views {
			if i == j {
				continue
			}
			_, cached := vv.adjacent[ov]
			connected := len(p.model.EdgesBetween(vv.vertex, ov.vertex)) > 0
			if cached != connected {
				return fmt.Errorf("adjacency %s-%s: cached=%v, model=%v",
					vv.label, ov.label, cached, connected)
			}
		}
	}
	return nil
}

func checkBounds(p *Panel, vv *VertexView) error {
	if vv.x < vv.radius || vv.x > p.width-vv.radius ||
		vv.y < vv.radius || vv.y > p.height-vv.radius {
		return fmt.Errorf("vertex %s out of bounds at (%v, %v)", vv.label, vv.x, vv.y)
	}
	return nil
}

func TestViewInvariantsUnderMutationScripts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("view mirrors the quiesced model", prop.ForAll(
		func(ops []int) bool {
			return checkConverged(playScript(ops)) == nil
		},
		gen.SliceOf(gen.IntRange(0, 399)),
	))

	properties.Property("positions stay in bounds through simulation steps", prop.ForAll(
		func(ops []int, steps int) bool {
			p := playScript(ops)
			for i := 0; i < steps; i++ {
				p.stepLocked()
			}
			for _, vv := range p.registry.vertexViews() {
				if checkBounds(p, vv) != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 399)),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
