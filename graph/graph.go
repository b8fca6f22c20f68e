// Package graph provides the mutable graph model backing a visualization
// panel: vertices and edges with identity-stable handles, optional
// direction, parallel edges and self-loops, and the incidence queries the
// view layer relies on. All operations are safe for concurrent use.
package graph

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors returned by model operations.
var (
	ErrNilVertex      = errors.New("graph: nil vertex")
	ErrNilEdge        = errors.New("graph: nil edge")
	ErrVertexNotFound = errors.New("graph: vertex not found")
	ErrEdgeNotFound   = errors.New("graph: edge not found")
	ErrParallelEdge   = errors.New("graph: parallel edges disabled")
	ErrSelfLoop       = errors.New("graph: self-loops disabled")
	ErrNotIncident    = errors.New("graph: vertex not incident to edge")
)

// Vertex is an element of a Graph. The *Vertex pointer itself is the
// vertex's identity for as long as it remains in the graph; callers must
// not compare vertices by value.
type Vertex struct {
	id string

	// Value is the caller's payload. It is not interpreted by the model
	// beyond default label formatting.
	Value any
}

// ID returns the vertex's unique identifier.
func (v *Vertex) ID() string { return v.id }

// String formats the vertex by its payload, which doubles as the default
// display label.
func (v *Vertex) String() string { return fmt.Sprintf("%v", v.Value) }

// Edge connects two vertices. The endpoint order (from, to) is fixed at
// creation and reused for all geometry, whether or not the graph is
// directed. The *Edge pointer is the edge's identity.
type Edge struct {
	id string

	// Value is the caller's payload, used for default edge labels.
	Value any

	// Weight is an optional scalar attached at creation.
	Weight float64

	from, to *Vertex
}

// ID returns the edge's unique identifier.
func (e *Edge) ID() string { return e.id }

// Endpoints returns the edge's ordered endpoint pair.
func (e *Edge) Endpoints() (from, to *Vertex) { return e.from, e.to }

// IsLoop reports whether both endpoints are the same vertex.
func (e *Edge) IsLoop() bool { return e.from == e.to }

// String formats the edge by its payload.
func (e *Edge) String() string { return fmt.Sprintf("%v", e.Value) }

// Option configures a Graph at construction.
type Option func(*Graph)

// WithDirected makes the graph directed. Edge endpoint order then carries
// direction semantics; rendering draws arrowheads.
func WithDirected() Option {
	return func(g *Graph) { g.directed = true }
}

// WithoutParallelEdges rejects a second edge between an endpoint pair with
// ErrParallelEdge. The pair is matched unordered, so in a directed graph
// this also rejects the reverse edge.
func WithoutParallelEdges() Option {
	return func(g *Graph) { g.parallel = false }
}

// WithoutSelfLoops rejects edges whose endpoints coincide with ErrSelfLoop.
func WithoutSelfLoops() Option {
	return func(g *Graph) { g.loops = false }
}

// EdgeOption configures a single edge at creation.
type EdgeOption func(*Edge)

// WithWeight sets the edge's weight.
func WithWeight(w float64) EdgeOption {
	return func(e *Edge) { e.Weight = w }
}

// Graph is a mutable multigraph. The zero value is not usable; construct
// with New.
type Graph struct {
	mu sync.RWMutex

	directed bool
	parallel bool
	loops    bool

	vertices  map[string]*Vertex
	edges     map[string]*Edge
	incidence map[string][]*Edge // vertex id -> incident edges, oldest first
}

// New constructs an empty graph. By default it is undirected and permits
// parallel edges and self-loops.
func New(opts ...Option) *Graph {
	g := &Graph{
		parallel:  true,
		loops:     true,
		vertices:  make(map[string]*Vertex),
		edges:     make(map[string]*Edge),
		incidence: make(map[string][]*Edge),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Directed reports whether the graph was constructed directed.
func (g *Graph) Directed() bool { return g.directed }
