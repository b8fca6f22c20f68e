package graph

import (
	"github.com/google/uuid"
)

// AddVertex inserts a new vertex carrying the given payload and returns its
// handle.
func (g *Graph) AddVertex(value any) *Vertex {
	v := &Vertex{
		id:    uuid.New().String(),
		Value: value,
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.vertices[v.id] = v
	g.incidence[v.id] = nil
	return v
}

// AddEdge inserts an edge from a to b and returns its handle. Both
// endpoints must be live handles of this graph. Violating a construction
// constraint (WithoutParallelEdges, WithoutSelfLoops) returns the matching
// sentinel error.
func (g *Graph) AddEdge(a, b *Vertex, value any, opts ...EdgeOption) (*Edge, error) {
	if a == nil || b == nil {
		return nil, ErrNilVertex
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vertices[a.id] != a || g.vertices[b.id] != b {
		return nil, ErrVertexNotFound
	}
	if a == b && !g.loops {
		return nil, ErrSelfLoop
	}
	if !g.parallel && len(g.edgesBetweenLocked(a, b)) > 0 {
		return nil, ErrParallelEdge
	}

	e := &Edge{
		id:    uuid.New().String(),
		Value: value,
		from:  a,
		to:    b,
	}
	for _, opt := range opts {
		opt(e)
	}

	g.edges[e.id] = e
	g.incidence[a.id] = append(g.incidence[a.id], e)
	if a != b {
		g.incidence[b.id] = append(g.incidence[b.id], e)
	}
	return e, nil
}

// RemoveVertex deletes the vertex and every edge incident to it.
func (g *Graph) RemoveVertex(v *Vertex) error {
	if v == nil {
		return ErrNilVertex
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vertices[v.id] != v {
		return ErrVertexNotFound
	}

	// removeEdgeLocked splices the incidence slices in place, so the
	// cascade iterates a detached copy.
	incident := append([]*Edge(nil), g.incidence[v.id]...)
	for _, e := range incident {
		g.removeEdgeLocked(e)
	}
	delete(g.incidence, v.id)
	delete(g.vertices, v.id)
	return nil
}

// RemoveEdge deletes the edge.
func (g *Graph) RemoveEdge(e *Edge) error {
	if e == nil {
		return ErrNilEdge
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.edges[e.id] != e {
		return ErrEdgeNotFound
	}
	g.removeEdgeLocked(e)
	return nil
}

func (g *Graph) removeEdgeLocked(e *Edge) {
	delete(g.edges, e.id)
	g.incidence[e.from.id] = dropEdge(g.incidence[e.from.id], e)
	if e.from != e.to {
		g.incidence[e.to.id] = dropEdge(g.incidence[e.to.id], e)
	}
}

func dropEdge(edges []*Edge, e *Edge) []*Edge {
	for i, candidate := range edges {
		if candidate == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
