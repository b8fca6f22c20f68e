package view

import (
	"math"
	"sort"
	"sync/atomic"
)

const (
	// spawnPadding is the minimum clearance between a spawned vertex's
	// surface and every existing vertex's surface.
	spawnPadding = 4.0

	spawnRings      = 10
	spawnAngles     = 16
	scatterAttempts = 20
)

// spawnPositionLocked finds an in-bounds, non-overlapping position for a
// vertex about to be displayed. The search is deterministic up to the
// random scatter stage: seed point, then expanding rings of candidates
// around it. When even scattering fails the seed is returned with a small
// jitter and fallback=true; the panel is effectively full and termination
// wins over separation.
func (p *Panel) spawnPositionLocked(vv *VertexView) (x, y float64, fallback bool) {
	radius := vv.radius
	seedX, seedY := p.spawnSeedLocked(vv)

	if p.spawnFits(seedX, seedY, radius) {
		return seedX, seedY, false
	}

	// Concentric rings of candidates around the seed. Leaving the positive
	// quadrant (or going non-finite) means the rings have escaped the
	// usable area; give up on the ring search as a whole.
	step := 2*radius + spawnPadding
rings:
	for ring := 1; ring <= spawnRings; ring++ {
		rr := float64(ring) * step
		for k := 0; k < spawnAngles; k++ {
			angle := 2 * math.Pi * float64(k) / spawnAngles
			cx := seedX + rr*math.Cos(angle)
			cy := seedY + rr*math.Sin(angle)
			if cx < 0 || cy < 0 ||
				math.IsNaN(cx) || math.IsInf(cx, 0) ||
				math.IsNaN(cy) || math.IsInf(cy, 0) {
				break rings
			}
			if p.spawnFits(cx, cy, radius) {
				return cx, cy, false
			}
		}
	}

	// Bounded random scatter around the seed.
	maxOffset := float64(spawnRings) * step
	for i := 0; i < scatterAttempts; i++ {
		cx := seedX + (fastRand()*2-1)*maxOffset
		cy := seedY + (fastRand()*2-1)*maxOffset
		if p.spawnFits(cx, cy, radius) {
			return cx, cy, false
		}
	}

	// The panel is packed. Take the seed with a small jitter so stacked
	// spawns do not coincide exactly.
	x = clamp(seedX+(fastRand()*2-1)*2*radius, radius, p.width-radius)
	y = clamp(seedY+(fastRand()*2-1)*2*radius, radius, p.height-radius)
	return x, y, true
}

// spawnSeedLocked picks the search origin: the centroid of the vertex's
// already-displayed neighbors when it has any, otherwise the top-left
// corner of the displayed vertices' bounding box. Seeding isolated
// vertices outside the visual mass avoids perturbing the existing layout.
// An empty panel seeds at the center. The vertex being placed is not yet
// registered, so it never counts as its own neighbor.
func (p *Panel) spawnSeedLocked(vv *VertexView) (float64, float64) {
	var sumX, sumY float64
	neighbors := 0
	for _, e := range p.model.IncidentEdges(vv.vertex) {
		opposite, err := p.model.Opposite(vv.vertex, e)
		if err != nil {
			continue
		}
		if ov, ok := p.registry.vertexView(opposite); ok {
			sumX += ov.x
			sumY += ov.y
			neighbors++
		}
	}
	if neighbors > 0 {
		return sumX / float64(neighbors), sumY / float64(neighbors)
	}

	first := true
	var minX, minY float64
	for _, other := range p.registry.vertices {
		if first || other.x < minX {
			minX = other.x
		}
		if first || other.y < minY {
			minY = other.y
		}
		first = false
	}
	if !first {
		return minX, minY
	}
	return p.width / 2, p.height / 2
}

// spawnFits reports whether a candidate center keeps the vertex inside
// the panel and clear of every registered vertex by at least the padding.
func (p *Panel) spawnFits(x, y, radius float64) bool {
	if x < radius || x > p.width-radius || y < radius || y > p.height-radius {
		return false
	}
	for _, other := range p.registry.vertices {
		minDist := radius + other.radius + spawnPadding
		if math.Hypot(other.x-x, other.y-y) < minDist {
			return false
		}
	}
	return true
}

// Placement chooses initial positions for the vertices already present in
// the model when the panel is initialized. Vertices discovered later go
// through the spawn position search instead.
type Placement interface {
	Place(width, height float64, views []*VertexView)
}

// RandomPlacement scatters vertices uniformly inside the panel bounds.
// It is the default.
type RandomPlacement struct{}

// Place assigns each view a uniform random in-bounds position.
func (RandomPlacement) Place(width, height float64, views []*VertexView) {
	for _, vv := range views {
		x := clamp(fastRand()*width, vv.radius, width-vv.radius)
		y := clamp(fastRand()*height, vv.radius, height-vv.radius)
		vv.SetPosition(x, y)
	}
}

// CircularSortedPlacement spaces vertices evenly on a circle centered in
// the panel, ordered by label, so the same graph always starts in the
// same shape.
type CircularSortedPlacement struct{}

// Place arranges the views on a centered circle in label order.
func (CircularSortedPlacement) Place(width, height float64, views []*VertexView) {
	if len(views) == 0 {
		return
	}

	sorted := make([]*VertexView, len(views))
	copy(sorted, views)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].label < sorted[j].label })

	maxRadius := 0.0
	for _, vv := range sorted {
		if vv.radius > maxRadius {
			maxRadius = vv.radius
		}
	}
	circle := math.Min(width, height)/2 - maxRadius - spawnPadding
	if circle < 0 {
		circle = 0
	}

	cx, cy := width/2, height/2
	for i, vv := range sorted {
		angle := 2 * math.Pi * float64(i) / float64(len(sorted))
		vv.SetPosition(cx+circle*math.Cos(angle), cy+circle*math.Sin(angle))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Fast pseudo-random number generator (0-1 range). Panels draw from
// the shared state concurrently, so it advances by compare-and-swap.
var randState atomic.Uint32

func init() { randState.Store(1234567890) }

func fastRand() float64 {
	for {
		s := randState.Load()
		// Xorshift algorithm
		next := s ^ s<<13
		next ^= next >> 17
		next ^= next << 5
		if randState.CompareAndSwap(s, next) {
			return float64(next) / float64(4294967295)
		}
	}
}
