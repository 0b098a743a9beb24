package stage

import (
	"errors"
	"testing"
)

func TestPropertySetWithoutSceneFails(t *testing.T) {
	p := newProperty[float32](1)
	err := p.Set(2)
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Set err = %v, want ErrNotRunning", err)
	}
	if p.GetTarget() != 1 {
		t.Errorf("target = %v, want unchanged 1", p.GetTarget())
	}
}

func TestPropertySetOnStoppedClockFails(t *testing.T) {
	c := newFrameClock()
	c.running.Store(false)
	p := newProperty[float32](1)
	p.bind(c)
	if err := p.Set(2); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Set err = %v, want ErrNotRunning", err)
	}
}

func TestPropertyCurrentStableUntilSwap(t *testing.T) {
	c := newFrameClock()
	p := newProperty[float32](1)
	p.bind(c)

	if err := p.Set(5); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if got := p.GetCurrent(); got != 1 {
			t.Fatalf("GetCurrent before swap = %v, want 1", got)
		}
	}
	if p.GetTarget() != 5 {
		t.Errorf("GetTarget = %v, want 5", p.GetTarget())
	}
	if !p.Dirty() {
		t.Error("property should be dirty after Set")
	}

	p.endTick()
	c.swap()
	if got := p.GetCurrent(); got != 5 {
		t.Errorf("GetCurrent after swap = %v, want 5", got)
	}
	if p.Dirty() {
		t.Error("dirty flag should be cleared at the end of the tick")
	}
}

func TestPropertyResetToBaseConverges(t *testing.T) {
	c := newFrameClock()
	p := newProperty[float32](1)
	p.bind(c)

	_ = p.Set(5)
	p.endTick()
	c.swap()

	// Next tick: nothing writes, but the stale slot catches up.
	p.resetToBase()
	p.endTick()
	c.swap()
	if got := p.GetCurrent(); got != 5 {
		t.Errorf("GetCurrent two ticks after Set = %v, want 5", got)
	}
	if p.values[0] != 5 || p.values[1] != 5 {
		t.Errorf("slots = %v, want both 5", p.values)
	}
}

func TestPropertyWithoutResetKeepsOldSlot(t *testing.T) {
	c := newFrameClock()
	p := newProperty[float32](1)
	p.bind(c)

	_ = p.Set(5)
	p.endTick()
	c.swap()
	p.endTick()
	c.swap()
	if got := p.GetCurrent(); got != 1 {
		t.Errorf("GetCurrent = %v, want the untouched slot 1", got)
	}
}

func TestPropertyBakeWritesBothSlots(t *testing.T) {
	c := newFrameClock()
	p := newProperty[float32](1)
	p.bind(c)
	p.Bake(7)
	if p.GetCurrent() != 7 || p.updating() != 7 || p.GetTarget() != 7 {
		t.Errorf("Bake: current=%v updating=%v target=%v, want 7", p.GetCurrent(), p.updating(), p.GetTarget())
	}
}

func TestPropertyUnboundReadsBase(t *testing.T) {
	p := newProperty[float32](3)
	if p.GetCurrent() != 3 || p.updating() != 3 {
		t.Errorf("unbound property reads %v/%v, want 3", p.GetCurrent(), p.updating())
	}
	c := newFrameClock()
	p.bind(c)
	p.unbind()
	if err := p.Set(4); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Set after unbind err = %v, want ErrNotRunning", err)
	}
}

func TestDoubleBufferedPublishesOnSwap(t *testing.T) {
	c := newFrameClock()
	var d doubleBuffered[int]
	d.set(c, 42)
	if d.get(c) != 0 {
		t.Errorf("get before swap = %d, want 0", d.get(c))
	}
	if d.updating(c) != 42 {
		t.Errorf("updating = %d, want 42", d.updating(c))
	}
	c.swap()
	if d.get(c) != 42 {
		t.Errorf("get after swap = %d, want 42", d.get(c))
	}
}

func TestFrameClockSwap(t *testing.T) {
	c := newFrameClock()
	if c.current() == c.next() {
		t.Fatal("current and next slot must differ")
	}
	cur := c.current()
	c.swap()
	if c.current() == cur {
		t.Error("swap did not flip the index")
	}
	if c.frame.Load() != 1 {
		t.Errorf("frame = %d, want 1", c.frame.Load())
	}
}
