package physics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphpane/graphpane/physics"
)

// nullStrategy applies no forces, isolating the drift term.
type nullStrategy struct{}

func (nullStrategy) ComputeForces([]physics.Body, float64, float64) {}
func (nullStrategy) Name() string                                   { return "null" }

func TestNewNoiseDriftValidation(t *testing.T) {
	_, err := physics.NewNoiseDrift(nil, 2, 1)
	assert.ErrorIs(t, err, physics.ErrNilStrategy)

	_, err = physics.NewNoiseDrift(nullStrategy{}, 0, 1)
	assert.ErrorIs(t, err, physics.ErrBadConstant)

	_, err = physics.NewNoiseDrift(nullStrategy{}, math.Inf(1), 1)
	assert.ErrorIs(t, err, physics.ErrBadConstant)

	d, err := physics.NewNoiseDrift(nullStrategy{}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "noise-drift(null)", d.Name())
}

func TestNoiseDriftBounded(t *testing.T) {
	const amplitude = 2.0

	d, err := physics.NewNoiseDrift(nullStrategy{}, amplitude, 42)
	require.NoError(t, err)

	bodies := []physics.Body{
		newStub(100, 100, 10),
		newStub(400, 300, 10),
		newStub(700, 500, 10),
	}
	for i := 0; i < 50; i++ {
		d.ComputeForces(bodies, 800, 600)
	}

	// Eval3 stays in [-1,1], so the accumulated per-pass drift never
	// exceeds the amplitude per axis.
	for _, b := range bodies {
		sb := b.(*stubBody)
		assert.LessOrEqual(t, math.Abs(sb.fx), amplitude*50)
		assert.LessOrEqual(t, math.Abs(sb.fy), amplitude*50)
	}
}

func TestNoiseDriftDeterministicBySeed(t *testing.T) {
	run := func(seed int64) (float64, float64) {
		d, err := physics.NewNoiseDrift(nullStrategy{}, 2, seed)
		require.NoError(t, err)
		b := newStub(250, 250, 10)
		d.ComputeForces([]physics.Body{b}, 800, 600)
		return b.fx, b.fy
	}

	fx1, fy1 := run(7)
	fx2, fy2 := run(7)
	assert.Equal(t, fx1, fx2)
	assert.Equal(t, fy1, fy2)
}

func TestNoiseDriftDelegatesToBase(t *testing.T) {
	d, err := physics.NewNoiseDrift(physics.DefaultSpringGravity(), 0.5, 1)
	require.NoError(t, err)

	// A lone off-center body still feels the base strategy's gravity pull;
	// the drift can only perturb it by the amplitude.
	b := newStub(100, 100, 10)
	d.ComputeForces([]physics.Body{b}, 800, 600)

	gravityX := (400.0 - 100.0) * physics.DefaultGravity
	assert.InDelta(t, gravityX, b.fx, 0.5+1e-9)
}
