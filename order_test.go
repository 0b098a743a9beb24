package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childNames(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name)
	}
	return out
}

func newFamily(names ...string) (*Node, []*Node) {
	p := NewNode("parent")
	kids := make([]*Node, len(names))
	for i, name := range names {
		kids[i] = NewNode(name)
		_ = p.AddChild(kids[i])
	}
	return p, kids
}

func TestRaiseLower(t *testing.T) {
	p, k := newFamily("a", "b", "c")

	k[0].Raise()
	assert.Equal(t, []string{"b", "a", "c"}, childNames(p))
	k[2].Lower()
	assert.Equal(t, []string{"b", "c", "a"}, childNames(p))
	k[2].Lower()
	assert.Equal(t, []string{"c", "b", "a"}, childNames(p))
	k[2].Lower()
	assert.Equal(t, []string{"c", "b", "a"}, childNames(p), "lowering the bottom node is a no-op")
}

func TestRaiseThenLowerRestores(t *testing.T) {
	p, k := newFamily("a", "b", "c")
	k[1].Raise()
	k[1].Lower()
	assert.Equal(t, []string{"a", "b", "c"}, childNames(p))

	s := newTestScene(t)
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	for _, n := range []*Node{a, b, c} {
		require.NoError(t, s.Add(n))
	}
	s.Tick(0)
	want := []int{a.SortedDepth(), b.SortedDepth(), c.SortedDepth()}

	b.Raise()
	b.Lower()
	assert.Equal(t, []string{"a", "b", "c"}, childNames(s.Root()))
	s.Commit()
	assert.Equal(t, want, []int{a.SortedDepth(), b.SortedDepth(), c.SortedDepth()})
}

func TestRaiseToTopLowerToBottom(t *testing.T) {
	p, k := newFamily("a", "b", "c")
	k[0].RaiseToTop()
	assert.Equal(t, []string{"b", "c", "a"}, childNames(p))
	k[0].LowerToBottom()
	assert.Equal(t, []string{"a", "b", "c"}, childNames(p))
}

func TestRaiseAboveLowerBelow(t *testing.T) {
	p, k := newFamily("a", "b", "c", "d")
	k[0].RaiseAbove(k[2])
	assert.Equal(t, []string{"b", "c", "a", "d"}, childNames(p))
	k[3].LowerBelow(k[1])
	assert.Equal(t, []string{"d", "b", "c", "a"}, childNames(p))

	// Already above the target.
	k[0].RaiseAbove(k[1])
	assert.Equal(t, []string{"d", "b", "c", "a"}, childNames(p))

	other := NewNode("other")
	k[1].RaiseAbove(other)
	assert.Equal(t, []string{"d", "b", "c", "a"}, childNames(p), "target with another parent is ignored")
}

func TestReorderNotifies(t *testing.T) {
	p, k := newFamily("a", "b", "c")
	var changed []string
	p.OnChildOrderChanged = func(child *Node) { changed = append(changed, child.Name) }

	k[0].Raise()
	k[0].RaiseAbove(k[0])
	k[2].RaiseAbove(k[0]) // c is at the top: nothing happens
	assert.Equal(t, []string{"a", "a"}, changed)
	assert.Equal(t, []string{"b", "a", "c"}, childNames(p))
}

func TestReorderWithoutParent(t *testing.T) {
	n := NewNode("orphan")
	n.Raise()
	n.SetSiblingOrder(3)
	assert.Equal(t, 0, n.SiblingOrder())
}

func TestSetSiblingOrder(t *testing.T) {
	p, k := newFamily("a", "b", "c", "d")
	k[0].SetSiblingOrder(2)
	assert.Equal(t, []string{"b", "c", "a", "d"}, childNames(p))
	assert.Equal(t, 2, k[0].SiblingOrder())

	k[0].SetSiblingOrder(0)
	assert.Equal(t, []string{"a", "b", "c", "d"}, childNames(p))

	k[1].SetSiblingOrder(99)
	assert.Equal(t, []string{"a", "c", "d", "b"}, childNames(p))
	assert.Equal(t, 3, k[1].SiblingOrder())
}

func TestDepthTreeIncrease(t *testing.T) {
	s := newTestScene(t)
	a, a1, b := NewNode("a"), NewNode("a1"), NewNode("b")
	require.NoError(t, a.AddChild(a1))
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	s.Tick(0)

	assert.Equal(t, 1000, s.Root().sn.sortedDepth)
	assert.Equal(t, 2000, a.sn.sortedDepth)
	assert.Equal(t, 3000, a1.sn.sortedDepth)
	assert.Equal(t, 4000, b.sn.sortedDepth)
}

func TestDepthTreeEqual(t *testing.T) {
	s := newTestScene(t)
	s.Root().SetChildrenDepthIndexPolicy(DepthIndexEqual)
	a, a1, b := NewNode("a"), NewNode("a1"), NewNode("b")
	require.NoError(t, a.AddChild(a1))
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	s.Tick(0)

	assert.Equal(t, 2000, a.sn.sortedDepth)
	assert.Equal(t, 2000, b.sn.sortedDepth)
	assert.Equal(t, 3000, a1.sn.sortedDepth)
}

func TestDepthTreeFollowsReorder(t *testing.T) {
	s := newTestScene(t)
	a, b := NewNode("a"), NewNode("b")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	s.Tick(0)
	require.Less(t, a.sn.sortedDepth, b.sn.sortedDepth)

	a.RaiseToTop()
	s.Tick(0)
	assert.Greater(t, a.sn.sortedDepth, b.sn.sortedDepth)
}

func TestDepthTreeDetachedReset(t *testing.T) {
	s := newTestScene(t)
	a := NewNode("a")
	require.NoError(t, s.Add(a))
	s.Tick(0)
	require.NoError(t, s.Remove(a))
	s.Tick(0)
	assert.Equal(t, -1, a.sn.sortedDepth)
}
