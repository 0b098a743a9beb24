package stage

import "fmt"

// ConstraintFunc computes a property from its value after animations and the
// values of the constraint's sources.
type ConstraintFunc func(current Value, inputs []Value) Value

// Source names a property a constraint reads. Animatable properties are read
// as computed for the current tick; world properties as published by the
// previous tick.
type Source struct {
	Node     *Node
	Property PropertyIndex
}

type propertyRef struct {
	sn   *sceneNode
	prop PropertyIndex
}

// Constraint sets a node property every tick from other properties.
type Constraint struct {
	scene   *Scene
	target  propertyRef
	sources []propertyRef
	fn      ConstraintFunc
	removed bool
}

// AddConstraint makes fn drive prop of target. Constraints run after
// animations, ordered so that a constraint reading another constraint's
// target runs after it.
func (s *Scene) AddConstraint(target *Node, prop PropertyIndex, sources []Source, fn ConstraintFunc) (*Constraint, error) {
	if target == nil {
		return nil, fmt.Errorf("stage: add constraint: %w", ErrNilNode)
	}
	if !prop.Animatable() {
		return nil, fmt.Errorf("stage: constrain %s: not animatable: %w", prop, ErrUnknownProperty)
	}
	if fn == nil {
		return nil, fmt.Errorf("stage: constrain %s on %q: nil function", prop, target.Name)
	}
	c := &Constraint{
		scene:  s,
		target: propertyRef{target.sn, prop},
		fn:     fn,
	}
	for _, src := range sources {
		if src.Node == nil {
			return nil, fmt.Errorf("stage: constraint source: %w", ErrNilNode)
		}
		if !src.Property.Animatable() && !src.Property.ReadOnly() {
			return nil, fmt.Errorf("stage: constraint source %s: %w", src.Property, ErrUnknownProperty)
		}
		c.sources = append(c.sources, propertyRef{src.Node.sn, src.Property})
	}
	s.post(func() {
		s.constraints = append(s.constraints, c)
		s.constraintsDirty = true
	})
	return c, nil
}

// Remove detaches the constraint before the next tick. The property keeps
// its last constrained value until written again.
func (c *Constraint) Remove() {
	s := c.scene
	s.post(func() {
		c.removed = true
		s.constraintsDirty = true
	})
}

func (c *Constraint) apply(clock *frameClock) {
	sn := c.target.sn
	if !sn.attached {
		return
	}
	current, err := sn.value(c.target.prop)
	if err != nil {
		return
	}
	inputs := make([]Value, len(c.sources))
	for i, src := range c.sources {
		inputs[i] = src.read(clock)
	}
	logSetFailure(sn, sn.setValue(c.target.prop, c.fn(current, inputs)))
}

func (r propertyRef) read(clock *frameClock) Value {
	if r.prop.Animatable() {
		v, _ := r.sn.value(r.prop)
		return v
	}
	world := r.sn.worldMatrix.get(clock)
	switch r.prop {
	case PropertyWorldPosition:
		return Vector3Value(world.Translation())
	case PropertyWorldScale:
		s, _, _ := world.Decompose()
		return Vector3Value(s)
	case PropertyWorldOrientation:
		_, q, _ := world.Decompose()
		return QuaternionValue(q)
	case PropertyWorldColor:
		return ColorValue(r.sn.worldColor.get(clock))
	case PropertyWorldMatrix:
		return MatrixValue(world)
	case PropertyScreenPosition:
		rect := r.sn.screenRect.get(clock)
		return Vector2Value(Vector2{rect.X + rect.Width/2, rect.Y + rect.Height/2})
	}
	return Value{}
}

// orderConstraints sorts constraints topologically (Kahn's algorithm): a
// constraint whose source is another constraint's target runs after it.
// Ties keep registration order. On a cycle the registration order is used
// and a warning is logged.
func orderConstraints(cs []*Constraint) []*Constraint {
	n := len(cs)
	indegree := make([]int, n)
	edges := make([][]int, n)
	for i, a := range cs {
		for j, b := range cs {
			if i == j {
				continue
			}
			for _, src := range b.sources {
				if src == a.target {
					edges[i] = append(edges[i], j)
					indegree[j]++
					break
				}
			}
		}
	}

	order := make([]*Constraint, 0, n)
	done := make([]bool, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			Logger().Warn("stage: constraint cycle, using registration order", "constraints", n)
			return append([]*Constraint(nil), cs...)
		}
		done[next] = true
		order = append(order, cs[next])
		for _, j := range edges[next] {
			indegree[j]--
		}
	}
	return order
}

// applyConstraints runs the registered constraints in dependency order.
func (s *Scene) applyConstraints() {
	if s.constraintsDirty {
		live := s.constraints[:0]
		for _, c := range s.constraints {
			if !c.removed {
				live = append(live, c)
			}
		}
		clear(s.constraints[len(live):])
		s.constraints = live
		s.constraintOrder = orderConstraints(live)
		s.constraintsDirty = false
	}
	for _, c := range s.constraintOrder {
		if !c.removed {
			c.apply(s.clock)
		}
	}
}
