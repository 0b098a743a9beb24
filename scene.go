package stage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/phanxgames/stage/config"
)

// Scene owns a node tree and runs its update pipeline.
//
// The scene has two sides. The event side (the producer) builds and mutates
// the tree through Node methods and calls Commit; it must be a single
// goroutine. The update side calls Update once per tick and may run on a
// different goroutine. Consumers read the published Frame, which is never
// modified after publication.
type Scene struct {
	cfg   config.Scene
	clock *frameClock
	root  *Node
	debug atomic.Bool

	// Event side.
	deferred   []func()
	notifying  int
	depthDirty bool

	// Shared.
	queue     messageQueue
	published atomic.Pointer[Frame]
	tracker   *damageTracker

	// Update side.
	updateMu         sync.Mutex
	camera           *Camera
	viewport         Rect
	animations       []*Animation
	constraints      []*Constraint
	constraintOrder  []*Constraint
	constraintsDirty bool
	collector        collector
	stats            debugStats
}

// NewScene creates a running scene with a root layer the size of the
// viewport.
func NewScene(cfg config.Scene) *Scene {
	viewport := Rect{Width: cfg.Width, Height: cfg.Height}
	s := &Scene{
		cfg:      cfg,
		clock:    newFrameClock(),
		tracker:  newDamageTracker(cfg.DamageTileSize, cfg.MaxDamageRects),
		camera:   newCamera(viewport),
		viewport: viewport,
	}
	s.camera.CullEnabled = cfg.Cull
	s.debug.Store(cfg.Debug)
	if cfg.Debug {
		globalDebug.Store(true)
	}
	s.collector.planner = &clipPlanner{}

	root := NewLayer("root", LayerUI)
	root.isRoot = true
	root.state.parentOrigin = Center
	root.state.size = Vector3{cfg.Width, cfg.Height, 0}
	root.connect(s)
	s.root = root
	s.depthDirty = true
	return s
}

// Root returns the scene's root layer.
func (s *Scene) Root() *Node {
	return s.root
}

// Add appends n to the root layer.
func (s *Scene) Add(n *Node) error {
	return s.root.AddChild(n)
}

// Remove detaches n from the root layer.
func (s *Scene) Remove(n *Node) error {
	return s.root.RemoveChild(n)
}

// Config returns the settings the scene was created with.
func (s *Scene) Config() config.Scene {
	return s.cfg
}

// StencilCapacity returns the number of stencil bit-planes available for
// nested ClipChildren nodes.
func (s *Scene) StencilCapacity() int {
	return s.cfg.StencilBits
}

// Camera returns the scene camera. It belongs to the update side.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Running reports whether the scene accepts property writes.
func (s *Scene) Running() bool {
	return s.clock.running.Load()
}

// Stop shuts the scene down. Later property writes fail with ErrNotRunning.
func (s *Scene) Stop() {
	s.clock.running.Store(false)
}

// SetDebugMode enables or disables per-tick timing logs and tree sanity
// warnings. Call it from the event side between ticks.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug.Store(enabled)
	globalDebug.Store(enabled)
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations on detached trees can check it cheaply.
var globalDebug atomic.Bool

// SetViewport resizes the viewport and the root layer. The next frame is a
// full redraw.
func (s *Scene) SetViewport(width, height float32) {
	s.cfg.Width, s.cfg.Height = width, height
	s.root.SetSize(Vector3{width, height, 0})
	s.post(func() {
		s.viewport = Rect{Width: width, Height: height}
		s.camera.Viewport = s.viewport
	})
}

// Queue runs fn on the update side at the start of the next tick, after the
// messages already queued. Use it to change the camera or renderer state
// from the event side.
func (s *Scene) Queue(fn func()) {
	s.post(fn)
}

// post appends a message for the update side.
func (s *Scene) post(fn func()) {
	s.queue.push(fn)
}

// deferMutation queues fn for the next Commit when a signal is being
// emitted. It reports whether fn was deferred. A nil scene never defers.
func (s *Scene) deferMutation(fn func()) bool {
	if s == nil || s.notifying == 0 {
		return false
	}
	s.deferred = append(s.deferred, fn)
	return true
}

// requestDepthRebuild marks the depth tree for rebuilding at the next
// Commit.
func (s *Scene) requestDepthRebuild() {
	s.depthDirty = true
}

// Commit ends an event-processing batch: it runs tree mutations deferred by
// signal handlers and rebuilds the depth tree once if anything requested it.
func (s *Scene) Commit() {
	for len(s.deferred) > 0 {
		batch := s.deferred
		s.deferred = nil
		for _, fn := range batch {
			fn()
		}
	}
	if !s.depthDirty {
		return
	}
	s.depthDirty = false
	counter := 1
	depths := buildDepthTree(s.root, &counter, nil)
	s.post(func() {
		for _, d := range depths {
			d.sn.sortedDepth = d.depth
		}
	})
}

// Update runs one tick of the update pipeline and publishes its frame. dt is
// the elapsed time in seconds.
//
// The order is fixed: drain messages, reset properties to their base
// values, run animations, then constraints, resolve world transforms and
// colors, plan clipping and build render lists, track damage, publish the
// frame and finally swap the property buffers.
func (s *Scene) Update(dt float32) *Frame {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	debug := s.debug.Load()
	var t0 time.Time
	if debug {
		t0 = time.Now()
	}

	rootSN := s.root.sn
	rootSN.walk((*sceneNode).resetToBase)
	messages := s.queue.drain()
	for _, m := range messages {
		m()
	}
	s.queue.recycle(messages)

	s.stepAnimations(dt)
	s.applyConstraints()
	s.camera.update(dt, s.clock)

	if debug {
		s.stats.messageCount = len(messages)
		s.stats.prepareTime = time.Since(t0)
		t0 = time.Now()
	}

	resolveWorld(rootSN, s.clock)

	if debug {
		s.stats.resolveTime = time.Since(t0)
		t0 = time.Now()
	}

	cl := &s.collector
	view := s.camera.ViewMatrix()
	cl.reset(s.clock, view, s.viewport, s.camera.CullEnabled, uint32(max(s.cfg.StencilBits, 0)))
	cl.visit(rootSN, nil, cl.planner.root(), false)
	cl.sortLists()

	if debug {
		s.stats.collectTime = time.Since(t0)
		t0 = time.Now()
	}

	number := s.clock.frame.Load() + 1
	if prev := s.published.Load(); prev != nil && prev.View != view {
		s.tracker.invalidateAll()
	}
	damage := s.tracker.track(number, cl.records, s.viewport)

	frame := &Frame{
		Number:          number,
		Viewport:        s.viewport,
		View:            view,
		Damage:          damage,
		ClippingUsed:    cl.planner.used,
		StencilOverflow: cl.planner.overflowed,
	}
	frame.Lists = make([]RenderList, len(cl.lists))
	for i, l := range cl.lists {
		frame.Lists[i] = *l
	}

	for _, l := range cl.lists {
		for i := range l.Items {
			if r := l.Items[i].Renderer; r != nil {
				r.Rendered()
			}
		}
	}
	rootSN.walk((*sceneNode).endTick)

	if debug {
		s.stats.damageTime = time.Since(t0)
		s.stats.itemCount = frame.ItemCount()
		s.stats.listCount = len(frame.Lists)
		s.stats.damageRects = len(damage.Rects)
		s.debugLog(number, s.stats)
	}

	s.published.Store(frame)
	s.clock.swap()
	return frame
}

// Tick commits pending event-side work and runs one update. It is the
// single-goroutine way to drive a scene.
func (s *Scene) Tick(dt float32) *Frame {
	s.Commit()
	return s.Update(dt)
}

// Frame returns the most recently published frame, or nil before the first
// tick. It never blocks.
func (s *Scene) Frame() *Frame {
	return s.published.Load()
}

// AcknowledgeDamage tells the scene which rectangles of frame the consumer
// actually redrew. Once a consumer acknowledges, rectangles of a frame it
// did not fully redraw are added to the next frame's damage.
func (s *Scene) AcknowledgeDamage(frame uint64, submitted []Rect) {
	s.tracker.acknowledge(frame, submitted)
}

// InvalidateAll makes the next frame a full redraw.
func (s *Scene) InvalidateAll() {
	s.tracker.invalidateAll()
}

// viewMatrix returns the view of the last published frame for event-side
// projections.
func (s *Scene) viewMatrix() Matrix {
	if f := s.published.Load(); f != nil {
		return f.View
	}
	return composeMatrix(One3, QuaternionIdentity, Vector3{s.cfg.Width / 2, s.cfg.Height / 2, 0})
}
