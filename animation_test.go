package stage

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/tanema/gween/ease"
)

func TestAnimatePosition(t *testing.T) {
	s := newTestScene(t)
	n := centered("n")
	_ = s.Add(n)

	a, err := s.Animate(n, PropertyPosition, Vector3Value(Vec3(100, 0, 0)), 1, ease.Linear)
	if err != nil {
		t.Fatalf("Animate: %v", err)
	}
	if n.Position() != Vec3(100, 0, 0) {
		t.Errorf("target = %v, want end value immediately", n.Position())
	}

	s.Tick(0.5)
	assertNear(t, "X after 0.5s", n.CurrentPosition().X, 50)
	if a.Finished() {
		t.Error("animation should not be finished halfway")
	}

	s.Tick(0.5)
	assertNear(t, "X after 1s", n.CurrentPosition().X, 100)
	if !a.Finished() {
		t.Error("animation should be finished")
	}
	if len(s.animations) != 0 {
		t.Errorf("finished animations kept: %d", len(s.animations))
	}

	s.Tick(0.5)
	assertNear(t, "X after end", n.CurrentPosition().X, 100)
}

func TestAnimateWorldFollows(t *testing.T) {
	s := newTestScene(t)
	parent := centered("parent")
	child := centered("child")
	child.SetPosition(Vec3(0, 10, 0))
	_ = parent.AddChild(child)
	_ = s.Add(parent)

	_, _ = s.Animate(parent, PropertyPosition, Vector3Value(Vec3(40, 0, 0)), 1, nil)
	s.Tick(0.25)
	assertVec3(t, "child world", child.CurrentWorldPosition(), Vec3(10, 10, 0))
}

func TestAnimateOpacity(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	_ = s.Add(n)
	_, err := s.Animate(n, PropertyOpacity, FloatValue(0), 2, ease.Linear)
	if err != nil {
		t.Fatal(err)
	}
	s.Tick(1)
	assertNear(t, "alpha", n.CurrentColor().A, 0.5)
	assertNear(t, "red untouched", n.CurrentColor().R, 1)
}

func TestAnimateVisibleSwitchesAtEnd(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	_ = s.Add(n)
	_, _ = s.Animate(n, PropertyVisible, BoolValue(false), 1, nil)

	s.Tick(0.5)
	if !n.CurrentVisible() {
		t.Error("visible should switch only at the end")
	}
	s.Tick(0.5)
	if n.CurrentVisible() {
		t.Error("visible should be false at the end")
	}
}

func TestAnimateOrientation(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	_ = s.Add(n)
	to := NewQuaternion(math32.Pi/2, Vector3{0, 0, 1})
	_, _ = s.Animate(n, PropertyOrientation, QuaternionValue(to), 1, ease.InOutQuad)

	s.Tick(0.5)
	q := n.CurrentOrientation()
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	assertNear(t, "halfway quaternion length", l, 1)

	s.Tick(0.5)
	if !n.CurrentOrientation().ApproxEqual(to, epsilon) {
		t.Errorf("orientation = %v, want %v", n.CurrentOrientation(), to)
	}
}

func TestAnimationStop(t *testing.T) {
	s := newTestScene(t)
	n := centered("n")
	_ = s.Add(n)
	a, _ := s.Animate(n, PropertyPosition, Vector3Value(Vec3(100, 0, 0)), 1, ease.Linear)
	s.Tick(0.25)
	a.Stop()
	s.Tick(0.25)
	s.Tick(0.25)
	assertNear(t, "X after stop", n.CurrentPosition().X, 25)
	if a.Finished() {
		t.Error("stopped animation is not finished")
	}
}

func TestAnimateErrors(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	_ = s.Add(n)

	if _, err := s.Animate(nil, PropertyPosition, Vector3Value(One3), 1, nil); !errors.Is(err, ErrNilNode) {
		t.Errorf("nil node: err = %v", err)
	}
	if _, err := s.Animate(n, PropertyName, StringValue("x"), 1, nil); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("name: err = %v", err)
	}
	if _, err := s.Animate(n, PropertyPosition, BoolValue(true), 1, nil); !errors.Is(err, ErrPropertyType) {
		t.Errorf("type mismatch: err = %v", err)
	}
	if n.Position() != Zero3 {
		t.Error("failed Animate must not change the target")
	}
}

func TestAnimateDetachedNodeDropped(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	_ = s.Add(n)
	a, _ := s.Animate(n, PropertyOpacity, FloatValue(0), 1, nil)
	_ = s.Remove(n)
	s.Tick(0.5)
	if len(s.animations) != 0 {
		t.Errorf("animation of a removed node kept: %d", len(s.animations))
	}
	if a.Finished() {
		t.Error("dropped animation is not finished")
	}
}
