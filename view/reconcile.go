package view

import "log"

// reconcileLocked brings the view registry into agreement with the model
// in four strict passes: stale views are dropped, new vertices are placed
// and registered, new edges are indexed and registered, and finally the
// whole batch is attached for rendering in one step.
//
// The model keeps mutating while a pass runs, so a single pass is not
// guaranteed to converge; each pass leaves the registry consistent and the
// next Update closes any remaining gap. Renderers only ever see attached
// views, never a half-wired batch.
func (p *Panel) reconcileLocked() {
	p.removalPassLocked()
	p.vertexPassLocked()
	p.edgePassLocked()
	p.registry.attachAll()

	p.stats.RecordReconcile(len(p.registry.vertices), len(p.registry.edges))
}

// removalPassLocked drops views whose model elements are gone. Edges go
// first: removing a model vertex removes its incident edges too, and
// clearing those edge views while the endpoint views still exist lets the
// adjacency cache and multiplicity indices unwind cleanly.
func (p *Panel) removalPassLocked() {
	for e, ev := range p.registry.edges {
		if !p.model.ContainsEdge(e) {
			p.registry.removeEdge(ev, p.model)
		}
	}
	for v, vv := range p.registry.vertices {
		if !p.model.Contains(v) {
			p.registry.removeVertex(vv)
		}
	}
}

// vertexPassLocked registers a view for every model vertex that lacks
// one, positioned by the spawn search. Surviving views refresh their
// provider-driven label and radius first, so the search measures
// clearance against current radii.
func (p *Panel) vertexPassLocked() {
	vertices := p.model.Vertices()

	for _, v := range vertices {
		if vv, ok := p.registry.vertexView(v); ok {
			vv.label = p.labelOf(v.Value)
			vv.radius = p.radiusOf(v.Value)
		}
	}

	for _, v := range vertices {
		if _, ok := p.registry.vertexView(v); ok {
			continue
		}
		vv := newVertexView(v, p.labelOf(v.Value), p.radiusOf(v.Value), 0, 0)
		x, y, fallback := p.spawnPositionLocked(vv)
		vv.SetPosition(x, y)
		p.registry.addVertex(vv)
		if fallback {
			p.stats.RecordSpawnFallback()
			log.Printf("view: no clear spot for %q, spawning jittered at (%.0f, %.0f)", vv.label, x, y)
		}
	}
}

// edgePassLocked registers a view for every model edge that lacks one. An
// edge whose endpoint has no view yet is skipped without complaint: the
// model grew between the vertex pass and this one, and the edge is picked
// up on the next reconciliation.
func (p *Panel) edgePassLocked() {
	for _, e := range p.model.Edges() {
		if _, ok := p.registry.edgeView(e); ok {
			continue
		}
		from, to := e.Endpoints()
		fv, okFrom := p.registry.vertexView(from)
		tv, okTo := p.registry.vertexView(to)
		if !okFrom || !okTo {
			continue
		}
		p.registry.addEdge(e, fv, tv)
	}
}
