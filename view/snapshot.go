package view

import "sort"

// Snapshot is a consistent deep copy of the attached view state, safe to
// hold and render while the panel keeps simulating.
type Snapshot struct {
	Width, Height float64
	Directed      bool
	Vertices      []SnapshotVertex
	Edges         []SnapshotEdge
}

// SnapshotVertex is the rendered state of one vertex.
type SnapshotVertex struct {
	ID     string
	Label  string
	X, Y   float64
	Radius float64
}

// SnapshotEdge is the rendered state of one edge. From and To index into
// the snapshot's Vertices slice.
type SnapshotEdge struct {
	ID     string
	Label  string
	Weight float64
	From   int
	To     int

	// Index is the multiplicity index among edges sharing this endpoint
	// pair: 0 draws straight, higher indices curve to alternating sides.
	Index int
	Loop  bool
}

// Snapshot copies the attached views under the panel lock. Vertices are
// ordered by model ID and edges oldest first, so consecutive snapshots of
// an unchanged graph are identical.
func (p *Panel) Snapshot() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	views := p.registry.vertexViews()
	sort.Slice(views, func(i, j int) bool {
		return views[i].vertex.ID() < views[j].vertex.ID()
	})

	snap := &Snapshot{
		Width:    p.width,
		Height:   p.height,
		Directed: p.model.Directed(),
		Vertices: make([]SnapshotVertex, len(views)),
	}
	at := make(map[*VertexView]int, len(views))
	for i, vv := range views {
		at[vv] = i
		snap.Vertices[i] = SnapshotVertex{
			ID:     vv.vertex.ID(),
			Label:  vv.label,
			X:      vv.x,
			Y:      vv.y,
			Radius: vv.radius,
		}
	}

	for _, ev := range p.registry.edgeViews() {
		from, okFrom := at[ev.from]
		to, okTo := at[ev.to]
		if !okFrom || !okTo {
			continue
		}
		snap.Edges = append(snap.Edges, SnapshotEdge{
			ID:     ev.edge.ID(),
			Label:  p.labelOf(ev.edge.Value),
			Weight: ev.edge.Weight,
			From:   from,
			To:     to,
			Index:  ev.index,
			Loop:   ev.IsLoop(),
		})
	}
	return snap
}
