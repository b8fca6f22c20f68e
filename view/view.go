// Package view keeps a rendered representation of a live graph model in
// sync with the model's contents. It tracks one view record per displayed
// vertex and edge, reconciles the records against the model on demand,
// assigns collision-avoiding positions to newly discovered vertices,
// disambiguates parallel edges with stable multiplicity indices, and runs
// the force-directed simulation that animates vertex positions.
//
// The entry point is Panel. The model may be mutated from any goroutine;
// the panel serializes all view access internally.
package view

import (
	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/physics"
)

// VertexView is the displayed state of one model vertex: its committed
// center position, collision radius, label, and the transient simulation
// state. All fields are guarded by the owning panel's lock.
type VertexView struct {
	vertex *graph.Vertex

	x, y   float64 // committed center position
	radius float64
	label  string

	// adjacent caches the set of views connected to this one by at least
	// one displayed edge, for O(1) lookups during force passes. Self-loops
	// are not recorded.
	adjacent map[*VertexView]struct{}

	fx, fy float64 // force accumulator, reset every simulation pass
	px, py float64 // projected position for the current batch

	dragging bool
	attached bool
}

func newVertexView(v *graph.Vertex, label string, radius, x, y float64) *VertexView {
	return &VertexView{
		vertex:   v,
		x:        x,
		y:        y,
		px:       x,
		py:       y,
		radius:   radius,
		label:    label,
		adjacent: make(map[*VertexView]struct{}),
	}
}

// Vertex returns the model vertex this view displays.
func (v *VertexView) Vertex() *graph.Vertex { return v.vertex }

// Position returns the committed center position.
func (v *VertexView) Position() (x, y float64) { return v.x, v.y }

// Label returns the display label chosen by the panel's label provider.
func (v *VertexView) Label() string { return v.label }

// SetPosition moves the committed and projected position together. It is
// meant for initial placement strategies, which run while the panel holds
// its lock.
func (v *VertexView) SetPosition(x, y float64) {
	v.x, v.y = x, y
	v.px, v.py = x, y
}

// Radius returns the collision radius. Part of physics.Body.
func (v *VertexView) Radius() float64 { return v.radius }

// Projected returns the in-progress position for the current simulation
// batch. Part of physics.Body.
func (v *VertexView) Projected() (x, y float64) { return v.px, v.py }

// AddForce accumulates a force on the vertex. Part of physics.Body.
func (v *VertexView) AddForce(fx, fy float64) {
	v.fx += fx
	v.fy += fy
}

// AdjacentTo reports whether a displayed edge connects the two views.
// Part of physics.Body.
func (v *VertexView) AdjacentTo(other physics.Body) bool {
	o, ok := other.(*VertexView)
	if !ok {
		return false
	}
	_, ok = v.adjacent[o]
	return ok
}

// EdgeView is the displayed state of one model edge: its ordered endpoint
// views and the multiplicity index that disambiguates it from other edges
// sharing the same endpoint pair.
type EdgeView struct {
	edge     *graph.Edge
	from, to *VertexView

	// index is 0 for the plain straight edge; 1, 2, 3, ... select
	// progressively offset curves, alternating sides by parity. Self-loops
	// use the index to vary loop size. Among all displayed edges sharing
	// the same unordered endpoint pair, indices are gap-free from 0 with
	// the oldest edge at 0.
	index int

	attached bool
}

// Edge returns the model edge this view displays.
func (e *EdgeView) Edge() *graph.Edge { return e.edge }

// From returns the view of the edge's first endpoint.
func (e *EdgeView) From() *VertexView { return e.from }

// To returns the view of the edge's second endpoint.
func (e *EdgeView) To() *VertexView { return e.to }

// Index returns the multiplicity index.
func (e *EdgeView) Index() int { return e.index }

// IsLoop reports whether both endpoints are the same view.
func (e *EdgeView) IsLoop() bool { return e.from == e.to }
