package stage

import (
	"fmt"
	"sync/atomic"
)

// frameClock owns the single buffer index shared by every property of a
// scene. The update side writes the inactive slot; readers use the active
// slot. swap is the only place the index changes.
type frameClock struct {
	index   atomic.Uint32
	frame   atomic.Uint64
	running atomic.Bool
}

func newFrameClock() *frameClock {
	c := &frameClock{}
	c.running.Store(true)
	return c
}

// current returns the slot readers use.
func (c *frameClock) current() uint32 { return c.index.Load() }

// next returns the slot the update pass writes.
func (c *frameClock) next() uint32 { return 1 - c.index.Load() }

// swap publishes the slot written during this tick.
func (c *frameClock) swap() {
	c.index.Store(1 - c.index.Load())
	c.frame.Add(1)
}

// Property is a double-buffered animatable value. The base (target) value is
// what producers last wrote; the two slots hold the value computed for the
// tick being written and the tick being read.
type Property[T any] struct {
	clock  *frameClock
	values [2]T
	base   T
	dirty  bool  // written during the current tick
	stale  uint8 // slots that still have to catch up with base
}

func newProperty[T any](v T) Property[T] {
	return Property[T]{values: [2]T{v, v}, base: v}
}

// bind attaches the property to a scene clock.
func (p *Property[T]) bind(c *frameClock) { p.clock = c }

// unbind detaches the property; later writes fail with ErrNotRunning.
func (p *Property[T]) unbind() { p.clock = nil }

// Set writes v into the slot being prepared for the next swap and records it
// as the new target. It fails when the property is not attached to a running
// scene.
func (p *Property[T]) Set(v T) error {
	if p.clock == nil || !p.clock.running.Load() {
		return fmt.Errorf("stage: property set: %w", ErrNotRunning)
	}
	p.values[p.clock.next()] = v
	p.base = v
	p.dirty = true
	p.stale = 2
	return nil
}

// Bake writes v to the target and to both slots.
func (p *Property[T]) Bake(v T) {
	p.base = v
	p.values[0] = v
	p.values[1] = v
	p.stale = 0
	p.dirty = true
}

// GetCurrent returns the value published by the last swap.
func (p *Property[T]) GetCurrent() T {
	if p.clock == nil {
		return p.base
	}
	return p.values[p.clock.current()]
}

// GetTarget returns the last written value, which may be one tick ahead of
// GetCurrent.
func (p *Property[T]) GetTarget() T { return p.base }

// updating returns the value being prepared for the next swap.
func (p *Property[T]) updating() T {
	if p.clock == nil {
		return p.base
	}
	return p.values[p.clock.next()]
}

// Dirty reports whether the property was written during the current tick.
func (p *Property[T]) Dirty() bool { return p.dirty }

// resetToBase copies the target into the slot about to be written so that
// both slots converge after a write.
func (p *Property[T]) resetToBase() {
	if p.stale > 0 && p.clock != nil {
		p.values[p.clock.next()] = p.base
	}
}

// endTick clears the per-tick dirty flag. Called right before the swap.
func (p *Property[T]) endTick() {
	p.dirty = false
	if p.stale > 0 {
		p.stale--
	}
}

// doubleBuffered holds a value computed by the update pass, such as a world
// matrix. It has no base value: it is fully rewritten every tick.
type doubleBuffered[T any] struct {
	values [2]T
}

func (d *doubleBuffered[T]) set(c *frameClock, v T) { d.values[c.next()] = v }

// get returns the published value.
func (d *doubleBuffered[T]) get(c *frameClock) T { return d.values[c.current()] }

// updating returns the value written during the current tick.
func (d *doubleBuffered[T]) updating(c *frameClock) T { return d.values[c.next()] }
