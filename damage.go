package stage

import "sync"

// DamageRecord describes one node whose screen area changed.
type DamageRecord struct {
	NodeID   uint32
	Previous Rect
	Current  Rect
	// FullRedraw is set when the change cannot be bounded by rectangles.
	FullRedraw bool
}

// Damage is the part of the viewport that must be redrawn for a frame.
type Damage struct {
	// FullRedraw requests redrawing the whole viewport. Rects is then a
	// single viewport rectangle.
	FullRedraw bool
	// Rects are tile-aligned, non-overlapping and clipped to the viewport.
	Rects   []Rect
	Records []DamageRecord
}

// Idle reports whether nothing needs to be redrawn.
func (d Damage) Idle() bool {
	return !d.FullRedraw && len(d.Rects) == 0
}

// Bounds returns the union of the damage rectangles.
func (d Damage) Bounds() Rect {
	var r Rect
	for _, x := range d.Rects {
		r = r.Union(x)
	}
	return r
}

// nodeRecord is what the render traversal reports about every drawn node.
type nodeRecord struct {
	id    uint32
	rect  Rect
	color Color
	clip  ClipInfo
	// dirty is set when a property, renderer or the hierarchy changed during
	// the tick even if rect and color compare equal.
	dirty bool
	// fullRedraw marks nodes whose rect does not bound their pixels: 3D
	// layers and rotations out of the screen plane.
	fullRedraw bool
	// area, when set, narrows the damage of a renderer-only change.
	area    Rect
	hasArea bool
}

type damageHistory struct {
	rect       Rect
	color      Color
	clip       ClipInfo
	fullRedraw bool
}

// damageAck is the consumer's acknowledgement for one frame.
type damageAck struct {
	frame     uint64
	submitted []Rect
}

// damageTracker compares each tick's records with the previous tick's and
// produces damage rectangles.
type damageTracker struct {
	tileSize float32
	maxRects int

	history map[uint32]damageHistory
	next    map[uint32]damageHistory

	first      bool
	viewport   Rect
	invalidate bool

	// Acknowledgement state. Carry-over only starts once the consumer
	// acknowledged at least one frame.
	mu        sync.Mutex
	acking    bool
	ack       damageAck
	lastFrame uint64
	lastRects []Rect
	lastFull  bool
}

func newDamageTracker(tileSize float32, maxRects int) *damageTracker {
	if maxRects <= 0 {
		maxRects = 1
	}
	return &damageTracker{
		tileSize: tileSize,
		maxRects: maxRects,
		history:  make(map[uint32]damageHistory),
		next:     make(map[uint32]damageHistory),
		first:    true,
	}
}

// acknowledge records the rectangles the consumer submitted for frame.
func (t *damageTracker) acknowledge(frame uint64, submitted []Rect) {
	t.mu.Lock()
	t.acking = true
	t.ack = damageAck{frame: frame, submitted: append([]Rect(nil), submitted...)}
	t.mu.Unlock()
}

// invalidateAll forces the next tick to redraw everything.
func (t *damageTracker) invalidateAll() {
	t.mu.Lock()
	t.invalidate = true
	t.mu.Unlock()
}

// track computes the damage of frame from this tick's records.
func (t *damageTracker) track(frame uint64, records []nodeRecord, viewport Rect) Damage {
	full := t.first || viewport != t.viewport
	t.first = false
	t.viewport = viewport

	t.mu.Lock()
	full = full || t.invalidate
	t.invalidate = false
	full = t.carryOver(full) || full
	carried := t.unacknowledged()
	t.mu.Unlock()

	var rects []Rect
	var out []DamageRecord
	for _, r := range records {
		prev, seen := t.history[r.id]
		t.next[r.id] = damageHistory{rect: r.rect, color: r.color, clip: r.clip, fullRedraw: r.fullRedraw}
		changed := !seen || prev.rect != r.rect || prev.color != r.color || prev.clip != r.clip || r.dirty || r.hasArea
		if !changed {
			continue
		}
		if r.fullRedraw || prev.fullRedraw {
			full = true
		}
		rec := DamageRecord{NodeID: r.id, Current: r.rect, FullRedraw: r.fullRedraw}
		switch {
		case seen && r.hasArea && prev.rect == r.rect && prev.color == r.color && prev.clip == r.clip:
			// Only the renderer's image changed, and only in part.
			rec.Previous = prev.rect
			rects = append(rects, r.area)
		case seen:
			rec.Previous = prev.rect
			rects = append(rects, prev.rect, r.rect)
		default:
			rects = append(rects, r.rect)
		}
		out = append(out, rec)
	}
	for id, prev := range t.history {
		if _, ok := t.next[id]; ok {
			continue
		}
		if prev.fullRedraw {
			full = true
		}
		rects = append(rects, prev.rect)
		out = append(out, DamageRecord{NodeID: id, Previous: prev.rect, FullRedraw: prev.fullRedraw})
	}
	clear(t.history)
	t.history, t.next = t.next, t.history

	rects = append(rects, carried...)

	var d Damage
	d.Records = out
	if full {
		d.FullRedraw = true
		d.Rects = []Rect{viewport}
	} else {
		d.Rects = mergeRects(rects, t.tileSize, viewport, t.maxRects)
	}

	t.mu.Lock()
	t.lastFrame = frame
	t.lastRects = d.Rects
	t.lastFull = d.FullRedraw
	t.mu.Unlock()
	return d
}

// carryOver reports whether the previous frame was a full redraw the
// consumer did not acknowledge. Caller holds t.mu.
func (t *damageTracker) carryOver(full bool) bool {
	if !t.acking || full || t.lastFrame == 0 {
		return false
	}
	return t.lastFull && t.ack.frame != t.lastFrame
}

// unacknowledged returns the previous frame's rectangles the consumer did
// not submit. Caller holds t.mu.
func (t *damageTracker) unacknowledged() []Rect {
	if !t.acking || t.lastFrame == 0 || t.lastFull {
		return nil
	}
	if t.ack.frame != t.lastFrame {
		return append([]Rect(nil), t.lastRects...)
	}
	var missing []Rect
	for _, r := range t.lastRects {
		if !coveredBy(r, t.ack.submitted) {
			missing = append(missing, r)
		}
	}
	return missing
}

func coveredBy(r Rect, set []Rect) bool {
	for _, s := range set {
		if s.X <= r.X && s.Y <= r.Y && s.Right() >= r.Right() && s.Bottom() >= r.Bottom() {
			return true
		}
	}
	return false
}

// mergeRects aligns rectangles to the tile grid, clips them to the viewport
// and merges overlapping or touching ones. More than maxRects results
// collapse into their bounding rectangle.
func mergeRects(in []Rect, tile float32, viewport Rect, maxRects int) []Rect {
	var out []Rect
	for _, r := range in {
		r = r.AlignTo(tile).Intersect(viewport)
		if r.IsEmpty() {
			continue
		}
		out = append(out, r)
	}
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if touches(out[i], out[j]) {
					out[i] = out[i].Union(out[j])
					out = append(out[:j], out[j+1:]...)
					merged = true
					j--
				}
			}
		}
	}
	if len(out) > maxRects {
		var b Rect
		for _, r := range out {
			b = b.Union(r)
		}
		out = []Rect{b}
	}
	return out
}

// touches reports whether a and b overlap or share an edge.
func touches(a, b Rect) bool {
	return a.X <= b.Right() && b.X <= a.Right() && a.Y <= b.Bottom() && b.Y <= a.Bottom()
}
