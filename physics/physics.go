package physics

import (
	"errors"
	"fmt"
	"math"
)

// Body is a displayed vertex as the simulation sees it. Implementations
// expose the in-progress projected position and collect forces; the
// simulation owner decides when projected positions become visible.
type Body interface {
	// Projected returns the position being computed for the current batch.
	Projected() (x, y float64)

	// Radius returns the body's collision radius.
	Radius() float64

	// AddForce accumulates a force vector on the body.
	AddForce(fx, fy float64)

	// AdjacentTo reports whether at least one displayed edge connects this
	// body to other. Must be symmetric.
	AdjacentTo(other Body) bool
}

// Strategy computes one pass of forces over the full set of displayed
// bodies. Implementations read projected positions and write force
// accumulators only; they never move bodies themselves.
type Strategy interface {
	ComputeForces(bodies []Body, width, height float64)
	Name() string
}

// Errors returned by strategy constructors.
var (
	ErrBadConstant     = errors.New("physics: force constant must be positive and finite")
	ErrGravityRange    = errors.New("physics: gravity must be in (0,1]")
	ErrNilStrategy     = errors.New("physics: nil base strategy")
	ErrUnknownStrategy = errors.New("physics: unknown strategy")
)

// Default force-law constants, tuned for panels in the hundreds of pixels.
const (
	DefaultRepulsion    = 25.0
	DefaultAttraction   = 3.0
	DefaultScale        = 10.0
	DefaultAcceleration = 0.8
	DefaultGravity      = 0.01
)

const (
	// minDistance floors the surface-to-surface distance so the force laws
	// stay finite when bodies overlap.
	minDistance = 1.0

	// overlapThreshold switches repulsion from inverse-square to a linear
	// penalty when bodies are nearly touching.
	overlapThreshold = 10.0

	// repulsionCap bounds the inverse-square branch.
	repulsionCap = 500.0
)

// SpringSystem is the plain spring-embedder strategy: inverse-square
// repulsion between every pair, logarithmic spring attraction between
// adjacent pairs, applied equal and opposite.
type SpringSystem struct {
	repulsion    float64
	attraction   float64
	scale        float64
	acceleration float64
}

// NewSpringSystem constructs a spring strategy with explicit constants.
// All four must be finite and positive; acceleration must not exceed 1.
func NewSpringSystem(repulsion, attraction, scale, acceleration float64) (*SpringSystem, error) {
	if err := checkConstant("repulsion", repulsion); err != nil {
		return nil, err
	}
	if err := checkConstant("attraction", attraction); err != nil {
		return nil, err
	}
	if err := checkConstant("scale", scale); err != nil {
		return nil, err
	}
	if err := checkConstant("acceleration", acceleration); err != nil {
		return nil, err
	}
	if acceleration > 1 {
		return nil, fmt.Errorf("%w: acceleration %v", ErrBadConstant, acceleration)
	}
	return &SpringSystem{
		repulsion:    repulsion,
		attraction:   attraction,
		scale:        scale,
		acceleration: acceleration,
	}, nil
}

// DefaultSpringSystem returns a spring strategy with the default constants.
func DefaultSpringSystem() *SpringSystem {
	s, err := NewSpringSystem(DefaultRepulsion, DefaultAttraction, DefaultScale, DefaultAcceleration)
	if err != nil {
		panic(err) // defaults are known good
	}
	return s
}

// Name returns the strategy's registry name.
func (s *SpringSystem) Name() string { return "spring" }

// ComputeForces accumulates pairwise spring and repulsion forces.
func (s *SpringSystem) ComputeForces(bodies []Body, width, height float64) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			s.applyPair(bodies[i], bodies[j])
		}
	}
}

// applyPair computes the combined force between v and w and applies it to
// both with opposite signs.
func (s *SpringSystem) applyPair(v, w Body) {
	vx, vy := v.Projected()
	wx, wy := w.Projected()
	dx, dy := wx-vx, wy-vy

	centerDist := math.Hypot(dx, dy)
	if centerDist == 0 {
		// Coincident centers leave no direction to push along.
		return
	}
	ux, uy := dx/centerDist, dy/centerDist

	// Distance between body surfaces, floored for stability.
	distance := centerDist - v.Radius() - w.Radius()
	if distance < minDistance {
		distance = minDistance
	}

	var repulsion float64
	if distance < overlapThreshold {
		// Nearly touching: a linear penalty avoids the inverse-square blowup.
		repulsion = s.repulsion * (overlapThreshold - distance)
	} else {
		repulsion = s.repulsion * 1000 / (distance * distance)
		if repulsion > repulsionCap {
			repulsion = repulsionCap
		}
	}

	fx := -ux * repulsion
	fy := -uy * repulsion

	if v.AdjacentTo(w) {
		attraction := s.attraction * math.Log(distance/s.scale)
		fx += ux * attraction
		fy += uy * attraction
	}

	fx *= s.acceleration
	fy *= s.acceleration

	v.AddForce(fx, fy)
	w.AddForce(-fx, -fy)
}

// SpringGravity is the spring strategy plus a weak pull toward the panel
// center. Pure spring systems push disconnected components to the panel
// edges; the gravity term keeps them near the middle, so this is the
// preferred default.
type SpringGravity struct {
	SpringSystem
	gravity float64
}

// NewSpringGravity constructs a gravity-augmented spring strategy. Gravity
// must lie in (0,1]; the remaining constants follow NewSpringSystem's rules.
func NewSpringGravity(repulsion, attraction, scale, acceleration, gravity float64) (*SpringGravity, error) {
	base, err := NewSpringSystem(repulsion, attraction, scale, acceleration)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(gravity) || gravity <= 0 || gravity > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrGravityRange, gravity)
	}
	return &SpringGravity{SpringSystem: *base, gravity: gravity}, nil
}

// DefaultSpringGravity returns the gravity strategy with default constants.
func DefaultSpringGravity() *SpringGravity {
	s, err := NewSpringGravity(DefaultRepulsion, DefaultAttraction, DefaultScale, DefaultAcceleration, DefaultGravity)
	if err != nil {
		panic(err) // defaults are known good
	}
	return s
}

// Name returns the strategy's registry name.
func (s *SpringGravity) Name() string { return "spring-gravity" }

// ComputeForces runs the pairwise spring pass, then pulls every body
// toward the panel center.
func (s *SpringGravity) ComputeForces(bodies []Body, width, height float64) {
	s.SpringSystem.ComputeForces(bodies, width, height)

	cx, cy := width/2, height/2
	for _, b := range bodies {
		px, py := b.Projected()
		b.AddForce((cx-px)*s.gravity, (cy-py)*s.gravity)
	}
}

// ByName returns a fresh strategy with default constants for a registry
// name. Recognized names: "spring", "spring-gravity", "noise-drift".
func ByName(name string) (Strategy, error) {
	switch name {
	case "spring":
		return DefaultSpringSystem(), nil
	case "spring-gravity", "gravity":
		return DefaultSpringGravity(), nil
	case "noise-drift", "noise":
		return DefaultNoiseDrift(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func checkConstant(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s %v", ErrBadConstant, name, v)
	}
	return nil
}
