package graph

// Vertices returns a snapshot slice of all vertex handles, unordered.
func (g *Graph) Vertices() []*Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	return out
}

// Edges returns a snapshot slice of all edge handles, unordered.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// IncidentEdges returns the edges touching v, oldest first. A foreign or
// removed handle yields an empty slice.
func (g *Graph) IncidentEdges(v *Vertex) []*Edge {
	if v == nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.vertices[v.id] != v {
		return nil
	}
	out := make([]*Edge, len(g.incidence[v.id]))
	copy(out, g.incidence[v.id])
	return out
}

// Opposite returns the endpoint of e that is not v. For a self-loop it
// returns v itself. Returns ErrNotIncident when v is not an endpoint of e.
func (g *Graph) Opposite(v *Vertex, e *Edge) (*Vertex, error) {
	if v == nil {
		return nil, ErrNilVertex
	}
	if e == nil {
		return nil, ErrNilEdge
	}
	switch v {
	case e.from:
		return e.to, nil
	case e.to:
		return e.from, nil
	}
	return nil, ErrNotIncident
}

// EdgesBetween returns every edge whose endpoint pair matches {a,b}
// regardless of orientation, oldest first. Used to decide whether any
// model edge still connects a pair.
func (g *Graph) EdgesBetween(a, b *Vertex) []*Edge {
	if a == nil || b == nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesBetweenLocked(a, b)
}

func (g *Graph) edgesBetweenLocked(a, b *Vertex) []*Edge {
	var out []*Edge
	for _, e := range g.incidence[a.id] {
		if (e.from == a && e.to == b) || (e.from == b && e.to == a) {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether v is a live handle of this graph.
func (g *Graph) Contains(v *Vertex) bool {
	if v == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.vertices[v.id] == v
}

// ContainsEdge reports whether e is a live handle of this graph.
func (g *Graph) ContainsEdge(e *Edge) bool {
	if e == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[e.id] == e
}

// Order returns the number of vertices.
func (g *Graph) Order() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// Size returns the number of edges.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// FindVertex looks a vertex up by ID.
func (g *Graph) FindVertex(id string) (*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.vertices[id]
	if !ok {
		return nil, ErrVertexNotFound
	}
	return v, nil
}

// FindEdge looks an edge up by ID.
func (g *Graph) FindEdge(id string) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return nil, ErrEdgeNotFound
	}
	return e, nil
}
