package physics_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphpane/graphpane/physics"
)

// stubBody implements physics.Body for tests.
type stubBody struct {
	x, y     float64
	radius   float64
	fx, fy   float64
	adjacent map[*stubBody]bool
}

func (b *stubBody) Projected() (float64, float64) { return b.x, b.y }
func (b *stubBody) Radius() float64               { return b.radius }
func (b *stubBody) AddForce(fx, fy float64)       { b.fx += fx; b.fy += fy }

func (b *stubBody) AdjacentTo(other physics.Body) bool {
	o, ok := other.(*stubBody)
	return ok && b.adjacent[o]
}

func newStub(x, y, radius float64) *stubBody {
	return &stubBody{x: x, y: y, radius: radius, adjacent: make(map[*stubBody]bool)}
}

func connect(a, b *stubBody) {
	a.adjacent[b] = true
	b.adjacent[a] = true
}

func TestNewSpringSystemValidation(t *testing.T) {
	tests := []struct {
		name                                     string
		repulsion, attraction, scale, acceleration float64
		wantErr                                  error
	}{
		{"defaults", physics.DefaultRepulsion, physics.DefaultAttraction, physics.DefaultScale, physics.DefaultAcceleration, nil},
		{"zero repulsion", 0, 3, 10, 0.8, physics.ErrBadConstant},
		{"negative attraction", 25, -3, 10, 0.8, physics.ErrBadConstant},
		{"NaN scale", 25, 3, math.NaN(), 0.8, physics.ErrBadConstant},
		{"infinite repulsion", math.Inf(1), 3, 10, 0.8, physics.ErrBadConstant},
		{"acceleration above one", 25, 3, 10, 1.5, physics.ErrBadConstant},
		{"acceleration at one", 25, 3, 10, 1.0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := physics.NewSpringSystem(tt.repulsion, tt.attraction, tt.scale, tt.acceleration)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestNewSpringGravityValidation(t *testing.T) {
	tests := []struct {
		name    string
		gravity float64
		wantErr error
	}{
		{"default", physics.DefaultGravity, nil},
		{"upper bound", 1.0, nil},
		{"zero", 0, physics.ErrGravityRange},
		{"negative", -0.01, physics.ErrGravityRange},
		{"above one", 1.01, physics.ErrGravityRange},
		{"NaN", math.NaN(), physics.ErrGravityRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := physics.NewSpringGravity(
				physics.DefaultRepulsion, physics.DefaultAttraction,
				physics.DefaultScale, physics.DefaultAcceleration, tt.gravity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
		})
	}
}

func TestSpringForceSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("force on v is the exact negation of force on w", prop.ForAll(
		func(x1, y1, x2, y2, r1, r2 float64, adjacent bool) bool {
			v := newStub(x1, y1, r1)
			w := newStub(x2, y2, r2)
			if adjacent {
				connect(v, w)
			}

			s := physics.DefaultSpringSystem()
			s.ComputeForces([]physics.Body{v, w}, 800, 600)

			return v.fx == -w.fx && v.fy == -w.fy
		},
		gen.Float64Range(0, 800),
		gen.Float64Range(0, 600),
		gen.Float64Range(0, 800),
		gen.Float64Range(0, 600),
		gen.Float64Range(1, 30),
		gen.Float64Range(1, 30),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestRepulsionPushesApart(t *testing.T) {
	v := newStub(100, 300, 10)
	w := newStub(300, 300, 10)

	s := physics.DefaultSpringSystem()
	s.ComputeForces([]physics.Body{v, w}, 800, 600)

	// Not adjacent: only repulsion acts, pushing v left and w right.
	assert.Negative(t, v.fx)
	assert.Positive(t, w.fx)
	assert.Zero(t, v.fy)
	assert.Zero(t, w.fy)
}

func TestAttractionRequiresAdjacency(t *testing.T) {
	makePair := func() (*stubBody, *stubBody) {
		// Far apart, so the log spring term dominates repulsion when present.
		return newStub(100, 300, 5), newStub(700, 300, 5)
	}

	v1, w1 := makePair()
	s := physics.DefaultSpringSystem()
	s.ComputeForces([]physics.Body{v1, w1}, 800, 600)

	v2, w2 := makePair()
	connect(v2, w2)
	s.ComputeForces([]physics.Body{v2, w2}, 800, 600)

	// With adjacency the pair is pulled together: v's force gains a
	// rightward component relative to the repulsion-only run.
	assert.Greater(t, v2.fx, v1.fx)
	assert.Less(t, w2.fx, w1.fx)
	assert.Positive(t, v2.fx, "attraction outweighs repulsion at this distance")
}

func TestOverlapLinearPenalty(t *testing.T) {
	// Surface distance = 205 - 100 - 100 = 5, inside the overlap band.
	v := newStub(100, 100, 100)
	w := newStub(305, 100, 100)

	s, err := physics.NewSpringSystem(25, 3, 10, 1.0)
	require.NoError(t, err)
	s.ComputeForces([]physics.Body{v, w}, 800, 600)

	// Linear penalty: 25 * (10 - 5) = 125 along -x for v.
	assert.InDelta(t, -125.0, v.fx, 1e-9)
	assert.InDelta(t, 125.0, w.fx, 1e-9)
}

func TestGravityPullsTowardCenter(t *testing.T) {
	b := newStub(100, 100, 10)

	s := physics.DefaultSpringGravity()
	s.ComputeForces([]physics.Body{b}, 800, 600)

	// A single body feels only gravity: gravity * (center - position).
	assert.InDelta(t, (400.0-100.0)*physics.DefaultGravity, b.fx, 1e-9)
	assert.InDelta(t, (300.0-100.0)*physics.DefaultGravity, b.fy, 1e-9)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"spring", "spring-gravity", "gravity", "noise-drift", "noise"} {
		s, err := physics.ByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, s, name)
	}

	_, err := physics.ByName("bogus")
	assert.ErrorIs(t, err, physics.ErrUnknownStrategy)
}
