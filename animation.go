package stage

import (
	"fmt"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Animation tweens one animatable property of a node. It runs on the update
// side: every tick it writes the property once, before constraints and the
// resolvers. The start value is the property's value on the first tick the
// animation runs.
type Animation struct {
	scene    *Scene
	node     *sceneNode
	prop     PropertyIndex
	to       Value
	duration float32
	easeFn   ease.TweenFunc

	tweens  []*gween.Tween
	from    Value
	elapsed float32
	started bool
	stopped bool

	finished atomic.Bool
}

// Animate starts tweening prop of n to the given value over duration seconds
// using the easing function (ease.Linear when nil). The node's target value
// becomes the end value immediately, as if set directly.
func (s *Scene) Animate(n *Node, prop PropertyIndex, to Value, duration float32, fn ease.TweenFunc) (*Animation, error) {
	if n == nil {
		return nil, fmt.Errorf("stage: animate: %w", ErrNilNode)
	}
	if !prop.Animatable() {
		return nil, fmt.Errorf("stage: animate %s: not animatable: %w", prop, ErrUnknownProperty)
	}
	if !s.clock.running.Load() {
		return nil, fmt.Errorf("stage: animate %s: %w", prop, ErrNotRunning)
	}
	to, err := canonicalValue(prop, to)
	if err != nil {
		return nil, fmt.Errorf("stage: animate %s on %q: %w", prop, n.Name, err)
	}
	if fn == nil {
		fn = ease.Linear
	}
	n.cacheAnimated(prop, to)
	a := &Animation{
		scene:    s,
		node:     n.sn,
		prop:     prop,
		to:       to,
		duration: duration,
		easeFn:   fn,
	}
	s.post(func() { s.animations = append(s.animations, a) })
	return a, nil
}

// Stop ends the animation before its next tick. The property keeps the last
// value written.
func (a *Animation) Stop() {
	a.scene.post(func() { a.stopped = true })
}

// Finished reports whether the animation reached its end value.
func (a *Animation) Finished() bool {
	return a.finished.Load()
}

// step advances the animation by dt and writes the property. It reports
// whether the animation is over.
func (a *Animation) step(dt float32) bool {
	if a.stopped || !a.node.attached {
		return true
	}
	if !a.started {
		from, err := a.node.value(a.prop)
		if err != nil {
			return true
		}
		a.from = from
		a.started = true
		src, dst := from.components(), a.to.components()
		a.tweens = make([]*gween.Tween, len(dst))
		for i := range dst {
			a.tweens[i] = gween.New(src[i], dst[i], a.duration, a.easeFn)
		}
	}

	a.elapsed += dt
	done := a.elapsed >= a.duration
	v := a.from
	switch {
	case len(a.tweens) == 0:
		// Discrete values switch at the end.
		if done {
			v = a.to
		}
	default:
		comps := make([]float32, len(a.tweens))
		done = true
		for i, t := range a.tweens {
			val, finished := t.Update(dt)
			comps[i] = val
			if !finished {
				done = false
			}
		}
		v = a.to.withComponents(comps)
		if v.kind == KindQuaternion {
			v = QuaternionValue(normalizeQuaternion(Quaternion{comps[0], comps[1], comps[2], comps[3]}))
		}
	}
	if done {
		v = a.to
	}
	logSetFailure(a.node, a.node.setValue(a.prop, v))
	if done {
		a.finished.Store(true)
	}
	return done
}

// stepAnimations runs every animation once and drops finished ones.
func (s *Scene) stepAnimations(dt float32) {
	live := s.animations[:0]
	for _, a := range s.animations {
		if !a.step(dt) {
			live = append(live, a)
		}
	}
	clear(s.animations[len(live):])
	s.animations = live
}

func normalizeQuaternion(q Quaternion) Quaternion {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuaternionIdentity
	}
	return Quaternion{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// canonicalValue converts v to the kind prop stores.
func canonicalValue(prop PropertyIndex, v Value) (Value, error) {
	switch prop {
	case PropertyPosition, PropertyScale, PropertySize:
		x, err := v.Vector3()
		return Vector3Value(x), err
	case PropertyOrientation:
		x, err := v.Quaternion()
		return QuaternionValue(x), err
	case PropertyColor:
		x, err := v.Color()
		return ColorValue(x), err
	case PropertyOpacity:
		x, err := v.Float()
		return FloatValue(x), err
	case PropertyVisible:
		x, err := v.Bool()
		return BoolValue(x), err
	}
	return Value{}, fmt.Errorf("%s: %w", prop, ErrUnknownProperty)
}

// cacheAnimated records an animation's end value as the event-side target.
func (n *Node) cacheAnimated(prop PropertyIndex, v Value) {
	switch prop {
	case PropertyPosition:
		n.state.position, _ = v.Vector3()
	case PropertyOrientation:
		n.state.orientation, _ = v.Quaternion()
	case PropertyScale:
		n.state.scale, _ = v.Vector3()
	case PropertySize:
		n.state.size, _ = v.Vector3()
	case PropertyColor:
		n.state.color, _ = v.Color()
	case PropertyOpacity:
		n.state.color.A, _ = v.Float()
	case PropertyVisible:
		n.state.visible, _ = v.Bool()
	}
}
