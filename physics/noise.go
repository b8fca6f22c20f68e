package physics

import (
	"fmt"
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	// DefaultDriftAmplitude is the default peak drift force.
	DefaultDriftAmplitude = 2.0

	// noiseScale maps panel coordinates into noise space; small values give
	// broad, slow-varying drift fields.
	noiseScale = 0.03

	// noiseTimeStep advances the field between passes.
	noiseTimeStep = 0.01
)

// NoiseDrift decorates another strategy with a smooth simplex-noise drift
// force, giving otherwise static equilibria a gentle organic motion. The
// drift is bounded by the amplitude, so the base strategy's equilibrium
// still dominates.
type NoiseDrift struct {
	base      Strategy
	noise     opensimplex.Noise
	amplitude float64
	time      float64
}

// NewNoiseDrift wraps base with a drift field of the given amplitude.
// Amplitude must be finite and positive.
func NewNoiseDrift(base Strategy, amplitude float64, seed int64) (*NoiseDrift, error) {
	if base == nil {
		return nil, ErrNilStrategy
	}
	if err := checkConstant("amplitude", amplitude); err != nil {
		return nil, err
	}
	return &NoiseDrift{
		base:      base,
		noise:     opensimplex.New(seed),
		amplitude: amplitude,
	}, nil
}

// DefaultNoiseDrift wraps the default gravity strategy with the default
// amplitude and a time-based seed.
func DefaultNoiseDrift() *NoiseDrift {
	d, err := NewNoiseDrift(DefaultSpringGravity(), DefaultDriftAmplitude, time.Now().UnixNano())
	if err != nil {
		panic(err) // defaults are known good
	}
	return d
}

// Name returns the strategy's registry name.
func (d *NoiseDrift) Name() string { return fmt.Sprintf("noise-drift(%s)", d.base.Name()) }

// ComputeForces runs the base strategy, then adds the drift force sampled
// from the evolving noise field at each body's projected position.
func (d *NoiseDrift) ComputeForces(bodies []Body, width, height float64) {
	d.base.ComputeForces(bodies, width, height)

	for _, b := range bodies {
		px, py := b.Projected()

		// Two decorrelated samples, one per axis. Eval3 is in [-1,1].
		nx := d.noise.Eval3(px*noiseScale, py*noiseScale, d.time)
		ny := d.noise.Eval3(px*noiseScale+100, py*noiseScale+100, d.time)

		b.AddForce(nx*d.amplitude, ny*d.amplitude)
	}

	d.time += noiseTimeStep
}

// MaxDrift returns the largest force magnitude the drift field can add to
// a single body in one pass.
func (d *NoiseDrift) MaxDrift() float64 {
	return math.Hypot(d.amplitude, d.amplitude)
}
