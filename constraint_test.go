package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offsetX returns a constraint that sets X to the first input's X plus dx.
func offsetX(dx float32) ConstraintFunc {
	return func(current Value, inputs []Value) Value {
		v, _ := inputs[0].Vector3()
		return Vector3Value(Vec3(v.X+dx, 0, 0))
	}
}

func TestConstraintDependencyOrder(t *testing.T) {
	s := newTestScene(t)
	a, b, c := centered("a"), centered("b"), centered("c")
	a.SetPosition(Vec3(5, 0, 0))
	for _, n := range []*Node{a, b, c} {
		require.NoError(t, s.Add(n))
	}

	// Registered in reverse: c reads b, b reads a.
	_, err := s.AddConstraint(c, PropertyPosition, []Source{{b, PropertyPosition}}, offsetX(1))
	require.NoError(t, err)
	_, err = s.AddConstraint(b, PropertyPosition, []Source{{a, PropertyPosition}}, offsetX(10))
	require.NoError(t, err)

	s.Tick(0)
	assert.InDelta(t, 15, b.CurrentPosition().X, epsilon)
	assert.InDelta(t, 16, c.CurrentPosition().X, epsilon)
	assert.InDelta(t, 16, c.CurrentWorldPosition().X, epsilon)
}

func TestConstraintAfterAnimation(t *testing.T) {
	s := newTestScene(t)
	a, b := centered("a"), centered("b")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	_, err := s.Animate(a, PropertyPosition, Vector3Value(Vec3(100, 0, 0)), 1, nil)
	require.NoError(t, err)
	_, err = s.AddConstraint(b, PropertyPosition, []Source{{a, PropertyPosition}}, offsetX(0))
	require.NoError(t, err)

	s.Tick(0.5)
	assert.InDelta(t, 50, b.CurrentPosition().X, epsilon)
}

func TestConstraintWorldSourceLagsOneTick(t *testing.T) {
	s := newTestScene(t)
	a, b := centered("a"), centered("b")
	a.SetPosition(Vec3(7, 0, 0))
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	s.Tick(0)

	_, err := s.AddConstraint(b, PropertyPosition, []Source{{a, PropertyWorldPosition}}, offsetX(0))
	require.NoError(t, err)
	a.SetPosition(Vec3(9, 0, 0))
	s.Tick(0)
	assert.InDelta(t, 7, b.CurrentPosition().X, epsilon)
	s.Tick(0)
	assert.InDelta(t, 9, b.CurrentPosition().X, epsilon)
}

func TestConstraintRemove(t *testing.T) {
	s := newTestScene(t)
	a, b := centered("a"), centered("b")
	a.SetPosition(Vec3(3, 0, 0))
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	c, err := s.AddConstraint(b, PropertyPosition, []Source{{a, PropertyPosition}}, offsetX(1))
	require.NoError(t, err)
	s.Tick(0)
	require.InDelta(t, 4, b.CurrentPosition().X, epsilon)

	c.Remove()
	a.SetPosition(Vec3(20, 0, 0))
	s.Tick(0)
	s.Tick(0)
	assert.InDelta(t, 4, b.CurrentPosition().X, epsilon, "keeps the last constrained value")
	assert.Empty(t, s.constraints)
}

func TestConstraintErrors(t *testing.T) {
	s := newTestScene(t)
	n := NewNode("n")
	fn := offsetX(0)

	_, err := s.AddConstraint(nil, PropertyPosition, nil, fn)
	assert.True(t, errors.Is(err, ErrNilNode))
	_, err = s.AddConstraint(n, PropertyWorldPosition, nil, fn)
	assert.True(t, errors.Is(err, ErrUnknownProperty))
	_, err = s.AddConstraint(n, PropertyPosition, nil, nil)
	assert.Error(t, err)
	_, err = s.AddConstraint(n, PropertyPosition, []Source{{nil, PropertyPosition}}, fn)
	assert.True(t, errors.Is(err, ErrNilNode))
	_, err = s.AddConstraint(n, PropertyPosition, []Source{{n, PropertyName}}, fn)
	assert.True(t, errors.Is(err, ErrUnknownProperty))
}

func TestOrderConstraintsCycle(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	ca := &Constraint{
		target:  propertyRef{a.sn, PropertyPosition},
		sources: []propertyRef{{b.sn, PropertyPosition}},
	}
	cb := &Constraint{
		target:  propertyRef{b.sn, PropertyPosition},
		sources: []propertyRef{{a.sn, PropertyPosition}},
	}
	got := orderConstraints([]*Constraint{ca, cb})
	assert.Equal(t, []*Constraint{ca, cb}, got, "a cycle keeps registration order")
}

func TestOrderConstraintsIndependentKeepOrder(t *testing.T) {
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	c1 := &Constraint{target: propertyRef{a.sn, PropertyPosition}}
	c2 := &Constraint{target: propertyRef{b.sn, PropertyScale}}
	c3 := &Constraint{
		target:  propertyRef{c.sn, PropertyColor},
		sources: []propertyRef{{a.sn, PropertyPosition}},
	}
	got := orderConstraints([]*Constraint{c3, c1, c2})
	assert.Equal(t, []*Constraint{c1, c3, c2}, got)
}
