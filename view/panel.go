package view

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graphpane/graphpane/graph"
	"github.com/graphpane/graphpane/metrics"
	"github.com/graphpane/graphpane/physics"
)

// Errors returned by panel operations.
var (
	ErrNilModel           = errors.New("view: nil graph model")
	ErrNilStrategy        = errors.New("view: nil layout strategy")
	ErrNilPlacement       = errors.New("view: nil placement strategy")
	ErrZeroBounds         = errors.New("view: panel bounds must be positive")
	ErrNotInitialized     = errors.New("view: panel not initialized")
	ErrAlreadyInitialized = errors.New("view: panel already initialized")
	ErrClosed             = errors.New("view: panel closed")
	ErrUnknownVertex      = errors.New("view: vertex not displayed")
	ErrNotDragging        = errors.New("view: vertex is not being dragged")
)

const (
	// DefaultRadius is the collision radius used when no radius provider is
	// installed, or when the provider declines with a non-positive value.
	DefaultRadius = 12.0

	// DefaultFrameInterval is the cadence of the simulation loop, roughly
	// display refresh rate.
	DefaultFrameInterval = 33 * time.Millisecond

	// stepIterations is the number of force/integrate passes batched into
	// one committed simulation step. One pass per frame converges far too
	// slowly to watch; batching amortizes convergence without rendering the
	// intermediate sub-steps.
	stepIterations = 20

	// waitTimeout bounds UpdateAndWait. Hitting it is logged, not returned:
	// the caller proceeds without a guarantee that the view is current.
	waitTimeout = time.Second
)

// Panel owns the displayed state of one graph model: the view registry,
// the reconciler keeping it in agreement with the model, the placement
// search for new vertices, and the simulation loop animating positions.
//
// The model may be mutated from any goroutine at any time. The panel never
// observes those mutations by itself; callers signal them with Update or
// UpdateAndWait. A single mutex serializes every view access, so one full
// reconciliation and one full simulation step are each atomic with respect
// to readers.
type Panel struct {
	model *graph.Graph

	mu       sync.Mutex
	registry *registry

	width, height float64
	closed        bool
	automatic     bool

	// initialized is atomic so the readiness check never touches the main
	// mutex: UpdateAndWait must stay callable (and able to time out) from
	// code the loop itself runs, such as a label provider.
	initialized atomic.Bool

	strategy  physics.Strategy
	placement Placement
	labelFor  func(any) string
	radiusFor func(any) float64

	frame time.Duration
	stats *metrics.Metrics

	updates chan chan struct{}
	done    chan struct{}
}

// Option configures a Panel at construction.
type Option func(*Panel)

// WithStrategy selects the initial layout strategy. The default is the
// gravity-augmented spring system.
func WithStrategy(s physics.Strategy) Option {
	return func(p *Panel) { p.strategy = s }
}

// WithPlacement selects the placement strategy for vertices present in the
// model at initialization time. The default scatters them randomly.
func WithPlacement(pl Placement) Option {
	return func(p *Panel) { p.placement = pl }
}

// WithFrameInterval sets the simulation loop cadence.
func WithFrameInterval(d time.Duration) Option {
	return func(p *Panel) {
		if d > 0 {
			p.frame = d
		}
	}
}

// WithMetrics wires engine instrumentation into the panel. A nil recorder
// is valid and records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Panel) { p.stats = m }
}

// WithLabelProvider installs the vertex/edge label source at construction.
func WithLabelProvider(f func(any) string) Option {
	return func(p *Panel) { p.labelFor = f }
}

// WithRadiusProvider installs the vertex radius source at construction.
func WithRadiusProvider(f func(any) float64) Option {
	return func(p *Panel) { p.radiusFor = f }
}

// New constructs a panel for the given model. The panel is idle until Init
// establishes its bounds and starts the loop.
func New(model *graph.Graph, opts ...Option) (*Panel, error) {
	if model == nil {
		return nil, ErrNilModel
	}

	p := &Panel{
		model:     model,
		registry:  newRegistry(),
		automatic: true,
		strategy:  physics.DefaultSpringGravity(),
		placement: RandomPlacement{},
		frame:     DefaultFrameInterval,
		updates:   make(chan chan struct{}, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.strategy == nil {
		return nil, ErrNilStrategy
	}
	if p.placement == nil {
		return nil, ErrNilPlacement
	}
	return p, nil
}

// Init establishes the panel bounds, places the vertices already present
// in the model, reconciles once, and starts the simulation loop. It may be
// called exactly once; bounds must be positive and finite.
func (p *Panel) Init(width, height float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.initialized.Load() {
		return ErrAlreadyInitialized
	}
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: got %vx%v", ErrZeroBounds, width, height)
	}
	p.width, p.height = width, height

	// Vertices known at this point are positioned by the placement
	// strategy in one shot; everything the model grows later goes through
	// the spawn search instead.
	staged := make([]*VertexView, 0, p.model.Order())
	for _, v := range p.model.Vertices() {
		vv := newVertexView(v, p.labelOf(v.Value), p.radiusOf(v.Value), 0, 0)
		p.registry.addVertex(vv)
		staged = append(staged, vv)
	}
	p.placement.Place(width, height, staged)
	p.reconcileLocked()

	p.initialized.Store(true)
	go p.loop()
	return nil
}

// Close stops the simulation loop. The panel cannot be reused afterwards.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
}

// Update requests a reconciliation of the view against the model and
// returns immediately. Requests are coalesced: if one is already queued,
// the pending pass will observe the caller's mutations anyway. There is no
// ordering guarantee relative to the caller's subsequent reads.
func (p *Panel) Update() error {
	if err := p.ready(); err != nil {
		return err
	}

	select {
	case p.updates <- nil:
	default:
		// A pass is already queued and will pick up the latest model state.
	}
	return nil
}

// UpdateAndWait requests a reconciliation and blocks until it has
// committed, for callers that must observe the just-inserted view state
// immediately after. The wait is bounded: on timeout the panel logs and
// returns nil rather than failing, and the caller proceeds without a
// guarantee that the view reflects the latest model state. The bound also
// keeps a call from the loop's own goroutine from deadlocking.
func (p *Panel) UpdateAndWait() error {
	if err := p.ready(); err != nil {
		return err
	}

	ack := make(chan struct{})
	select {
	case p.updates <- ack:
	case <-p.done:
		return ErrClosed
	case <-time.After(waitTimeout):
		log.Printf("view: update queue stalled for %v, proceeding without sync", waitTimeout)
		return nil
	}

	select {
	case <-ack:
	case <-p.done:
		return ErrClosed
	case <-time.After(waitTimeout):
		log.Printf("view: reconciliation not committed after %v, proceeding without sync", waitTimeout)
	}
	return nil
}

// SetAutomaticLayout toggles the simulation driver. Reconciliation remains
// active either way; only the force-directed animation pauses.
func (p *Panel) SetAutomaticLayout(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.automatic = enabled
}

// AutomaticLayout reports whether the simulation driver is running.
func (p *Panel) AutomaticLayout() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.automatic
}

// SetLayoutStrategy swaps the force computation. Safe at any time; the
// next simulation step uses the new strategy.
func (p *Panel) SetLayoutStrategy(s physics.Strategy) error {
	if s == nil {
		return ErrNilStrategy
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategy = s
	return nil
}

// Strategy returns the active layout strategy.
func (p *Panel) Strategy() physics.Strategy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.strategy
}

// SetLabelProvider installs f as the display label source for vertex and
// edge payloads. A nil provider restores the default formatting
// (fmt-style rendering of the payload, empty for nil).
func (p *Panel) SetLabelProvider(f func(any) string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labelFor = f
}

// SetRadiusProvider installs f as the vertex radius source. Radii take
// effect at the next reconciliation. A nil provider, or a non-positive or
// non-finite result, falls back to DefaultRadius.
func (p *Panel) SetRadiusProvider(f func(any) float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.radiusFor = f
}

// Bounds returns the panel dimensions established by Init.
func (p *Panel) Bounds() (width, height float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Resize changes the panel bounds and clamps every committed position into
// them. Bounds must be positive and finite.
func (p *Panel) Resize(width, height float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: got %vx%v", ErrZeroBounds, width, height)
	}

	p.width, p.height = width, height
	for _, vv := range p.registry.vertices {
		vv.SetPosition(
			clamp(vv.x, vv.radius, width-vv.radius),
			clamp(vv.y, vv.radius, height-vv.radius),
		)
	}
	return nil
}

// SetVertexPosition moves a displayed vertex to (x, y), clamped into the
// panel bounds exactly as the simulation's commit is.
func (p *Panel) SetVertexPosition(v *graph.Vertex, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	vv, ok := p.registry.vertexView(v)
	if !ok {
		return ErrUnknownVertex
	}
	vv.SetPosition(p.clampX(vv, x), p.clampY(vv, y))
	return nil
}

// VertexPosition returns the committed position of a displayed vertex.
func (p *Panel) VertexPosition(v *graph.Vertex) (x, y float64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return 0, 0, err
	}
	vv, ok := p.registry.vertexView(v)
	if !ok {
		return 0, 0, ErrUnknownVertex
	}
	return vv.x, vv.y, nil
}

// StartDrag suspends automatic repositioning of v until EndDrag. The
// simulation keeps running for every other vertex; commits skip this one.
func (p *Panel) StartDrag(v *graph.Vertex) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	vv, ok := p.registry.vertexView(v)
	if !ok {
		return ErrUnknownVertex
	}
	vv.dragging = true
	return nil
}

// Drag moves a vertex mid-drag, clamped into the panel bounds. The vertex
// must be between StartDrag and EndDrag; otherwise the simulation could
// overwrite the position on its next commit.
func (p *Panel) Drag(v *graph.Vertex, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	vv, ok := p.registry.vertexView(v)
	if !ok {
		return ErrUnknownVertex
	}
	if !vv.dragging {
		return ErrNotDragging
	}
	vv.SetPosition(p.clampX(vv, x), p.clampY(vv, y))
	return nil
}

// EndDrag resumes automatic repositioning of v.
func (p *Panel) EndDrag(v *graph.Vertex) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	vv, ok := p.registry.vertexView(v)
	if !ok {
		return ErrUnknownVertex
	}
	vv.dragging = false
	return nil
}

// Step runs one full simulation step: a batch of force/integrate passes
// followed by a single clamped commit of the projected positions. The loop
// calls it every frame while automatic layout is enabled; callers driving
// a one-shot layout (renders without a live loop) may call it directly.
func (p *Panel) Step() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.readyLocked(); err != nil {
		return err
	}
	p.stepLocked()
	return nil
}

// loop is the single executor of reconciliation and simulation steps. It
// owns the frame ticker and drains the update queue; nothing else touches
// the registry without the panel mutex.
func (p *Panel) loop() {
	ticker := time.NewTicker(p.frame)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case ack := <-p.updates:
			p.mu.Lock()
			p.reconcileLocked()
			p.mu.Unlock()
			if ack != nil {
				close(ack)
			}
		case <-ticker.C:
			p.mu.Lock()
			if p.automatic {
				p.stepLocked()
			}
			p.mu.Unlock()
		}
	}
}

// stepLocked batches stepIterations force passes into one commit. The
// projected positions are seeded from the committed ones once per batch;
// every pass resets the accumulators, asks the strategy for forces, and
// integrates projected += force (explicit Euler, unit step). Only the
// final projected position is committed, clamped into the panel, skipping
// vertices currently held by a drag.
func (p *Panel) stepLocked() {
	views := p.registry.vertexViews()
	if len(views) == 0 {
		return
	}
	start := time.Now()

	bodies := make([]physics.Body, len(views))
	for i, vv := range views {
		bodies[i] = vv
		vv.px, vv.py = vv.x, vv.y
	}

	for i := 0; i < stepIterations; i++ {
		for _, vv := range views {
			vv.fx, vv.fy = 0, 0
		}
		p.strategy.ComputeForces(bodies, p.width, p.height)
		for _, vv := range views {
			vv.px += vv.fx
			vv.py += vv.fy
		}
	}

	for _, vv := range views {
		if vv.dragging {
			continue
		}
		if !finite(vv.px) || !finite(vv.py) {
			// A non-finite projection would stick through the clamp; the
			// vertex keeps its previous position instead.
			vv.px, vv.py = vv.x, vv.y
		}
		vv.x = p.clampX(vv, vv.px)
		vv.y = p.clampY(vv, vv.py)
	}

	p.stats.ObserveStep(time.Since(start))
}

func (p *Panel) clampX(vv *VertexView, x float64) float64 {
	return clamp(x, vv.radius, p.width-vv.radius)
}

func (p *Panel) clampY(vv *VertexView, y float64) float64 {
	return clamp(y, vv.radius, p.height-vv.radius)
}

// ready is the lock-free readiness check used by the update entry points.
// It must not take the panel mutex: a label or radius provider running
// inside a reconciliation may call UpdateAndWait, and that call has to
// reach its timeout instead of deadlocking on the lock it already holds.
func (p *Panel) ready() error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	if !p.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

func (p *Panel) readyLocked() error {
	if p.closed {
		return ErrClosed
	}
	if !p.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// labelOf resolves a display label for a vertex or edge payload.
func (p *Panel) labelOf(payload any) string {
	if p.labelFor != nil {
		return p.labelFor(payload)
	}
	if payload == nil {
		return ""
	}
	return fmt.Sprintf("%v", payload)
}

// radiusOf resolves a vertex collision radius for a payload.
func (p *Panel) radiusOf(payload any) float64 {
	if p.radiusFor == nil {
		return DefaultRadius
	}
	r := p.radiusFor(payload)
	if !finite(r) || r <= 0 {
		return DefaultRadius
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
