package view

import (
	"github.com/graphpane/graphpane/graph"
)

// connection is the provisional record of a displayed edge and its
// endpoint pair. Records are kept oldest-first; their order defines
// insertion age for multiplicity renumbering, and they survive lookups
// even while the view lags behind a rapidly mutating model.
type connection struct {
	edge *graph.Edge
	a, b *graph.Vertex
}

func (c connection) matches(a, b *graph.Vertex) bool {
	return (c.a == a && c.b == b) || (c.a == b && c.b == a)
}

// registry is the bidirectional mapping between model elements and their
// view records. It is not safe for concurrent use; the panel serializes
// access.
type registry struct {
	vertices map[*graph.Vertex]*VertexView
	edges    map[*graph.Edge]*EdgeView

	connections []connection
}

func newRegistry() *registry {
	return &registry{
		vertices: make(map[*graph.Vertex]*VertexView),
		edges:    make(map[*graph.Edge]*EdgeView),
	}
}

func (r *registry) vertexView(v *graph.Vertex) (*VertexView, bool) {
	vv, ok := r.vertices[v]
	return vv, ok
}

func (r *registry) edgeView(e *graph.Edge) (*EdgeView, bool) {
	ev, ok := r.edges[e]
	return ev, ok
}

// addVertex registers a view in the staged (not yet attached) state.
func (r *registry) addVertex(vv *VertexView) {
	r.vertices[vv.vertex] = vv
}

// addEdge registers an edge view in the staged state, assigns the next
// multiplicity index for its endpoint pair, records the connection, and
// links the endpoints' adjacency caches.
func (r *registry) addEdge(e *graph.Edge, from, to *VertexView) *EdgeView {
	maxIndex := -1
	for _, c := range r.connections {
		if !c.matches(from.vertex, to.vertex) {
			continue
		}
		if ev := r.edges[c.edge]; ev.index > maxIndex {
			maxIndex = ev.index
		}
	}

	ev := &EdgeView{edge: e, from: from, to: to, index: maxIndex + 1}
	r.edges[e] = ev
	r.connections = append(r.connections, connection{edge: e, a: from.vertex, b: to.vertex})

	if from != to {
		from.adjacent[to] = struct{}{}
		to.adjacent[from] = struct{}{}
	}
	return ev
}

// removeEdge drops an edge view. The endpoints' adjacency link is severed
// only when the model holds no other edge between the pair; the cached
// view state may lag the model, so the model is the authority here.
// Surviving edges of the pair are then renumbered.
func (r *registry) removeEdge(ev *EdgeView, model *graph.Graph) {
	delete(r.edges, ev.edge)
	for i, c := range r.connections {
		if c.edge == ev.edge {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			break
		}
	}

	a, b := ev.from, ev.to
	if a != b && len(model.EdgesBetween(a.vertex, b.vertex)) == 0 {
		delete(a.adjacent, b)
		delete(b.adjacent, a)
	}

	r.renumber(a.vertex, b.vertex)
}

// removeVertex drops a vertex view. Incident edge views are expected to
// be gone already; the model removes incident edges with the vertex, and
// the reconciler removes stale edges before stale vertices.
func (r *registry) removeVertex(vv *VertexView) {
	delete(r.vertices, vv.vertex)
}

// renumber reassigns multiplicity indices for the surviving edges between
// the unordered pair {a,b}. The n survivors always occupy slots 0..n-1:
// the oldest takes 0, and each younger survivor takes the lowest free
// slot of the same parity as its previous index, falling back to the
// lowest free slot when its parity bucket is exhausted. Parity decides
// which side an edge curves to, so keeping it stable keeps edges from
// visually swapping sides when a sibling disappears.
func (r *registry) renumber(a, b *graph.Vertex) {
	var survivors []*EdgeView
	for _, c := range r.connections {
		if c.matches(a, b) {
			survivors = append(survivors, r.edges[c.edge])
		}
	}
	if len(survivors) == 0 {
		return
	}

	used := make([]bool, len(survivors))
	survivors[0].index = 0
	used[0] = true

	for _, ev := range survivors[1:] {
		slot := -1
		for s := ev.index % 2; s < len(survivors); s += 2 {
			if !used[s] {
				slot = s
				break
			}
		}
		if slot < 0 {
			for s := range used {
				if !used[s] {
					slot = s
					break
				}
			}
		}
		ev.index = slot
		used[slot] = true
	}
}

// attachAll flips every staged view to attached, exposing it for
// rendering. Called as the final reconciliation step, so renderers never
// observe a partially wired batch.
func (r *registry) attachAll() {
	for _, vv := range r.vertices {
		vv.attached = true
	}
	for _, ev := range r.edges {
		ev.attached = true
	}
}

// vertexViews returns the attached vertex views.
func (r *registry) vertexViews() []*VertexView {
	out := make([]*VertexView, 0, len(r.vertices))
	for _, vv := range r.vertices {
		if vv.attached {
			out = append(out, vv)
		}
	}
	return out
}

// edgeViews returns the attached edge views, oldest first.
func (r *registry) edgeViews() []*EdgeView {
	out := make([]*EdgeView, 0, len(r.edges))
	for _, c := range r.connections {
		if ev := r.edges[c.edge]; ev.attached {
			out = append(out, ev)
		}
	}
	return out
}
