package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemNames(l RenderList) []string {
	var out []string
	for _, it := range l.Items {
		out = append(out, it.Name)
	}
	return out
}

func drawable(name string, size float32) *Node {
	n := NewNode(name)
	n.SetParentOrigin(Center)
	n.SetSize(Vec3(size, size, 0))
	n.AddRenderer(NewSolidRenderer(ColorWhite))
	return n
}

// --- Merge sort ---

func TestMergeSortStable(t *testing.T) {
	items := []RenderItem{
		{Name: "a", DepthKey: 2, treeOrder: 1},
		{Name: "b", DepthKey: 1, treeOrder: 2},
		{Name: "c", DepthKey: 2, treeOrder: 3},
		{Name: "d", DepthKey: 1, treeOrder: 4},
		{Name: "e", DepthKey: 0, treeOrder: 5},
	}
	mergeSort(items, nil)
	var got []string
	for _, it := range items {
		got = append(got, it.Name)
	}
	assert.Equal(t, []string{"e", "b", "d", "a", "c"}, got)
}

func TestMergeSortOverlayLast(t *testing.T) {
	items := []RenderItem{
		{Name: "overlay", DepthKey: 0, Overlay: true, treeOrder: 1},
		{Name: "normal", DepthKey: 5, treeOrder: 2},
	}
	mergeSort(items, nil)
	assert.Equal(t, "normal", items[0].Name)
	assert.Equal(t, "overlay", items[1].Name)
}

func TestMergeSortReusesBuffer(t *testing.T) {
	items := make([]RenderItem, 16)
	for i := range items {
		items[i] = RenderItem{DepthKey: 16 - i, treeOrder: i}
	}
	buf := mergeSort(items, nil)
	require.Len(t, buf, 16)
	for i := 1; i < len(items); i++ {
		require.LessOrEqual(t, items[i-1].DepthKey, items[i].DepthKey)
	}
	buf2 := mergeSort(items[:8], buf)
	assert.Equal(t, cap(buf), cap(buf2))
}

// --- Collection ---

func TestRenderTreeOrder(t *testing.T) {
	s := newTestScene(t)
	a, b := drawable("a", 10), drawable("b", 10)
	a1 := drawable("a1", 5)
	require.NoError(t, a.AddChild(a1))
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))

	f := s.Tick(0)
	require.Len(t, f.Lists, 1)
	assert.Equal(t, []string{"a", "a1", "b"}, itemNames(f.Lists[0]))
}

func TestRenderDepthIndex(t *testing.T) {
	s := newTestScene(t)
	a, b := drawable("a", 10), drawable("b", 10)
	a.renderers[0].(*SolidRenderer).Depth = 1500
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))

	f := s.Tick(0)
	assert.Equal(t, []string{"b", "a"}, itemNames(f.Lists[0]))
	assert.Equal(t, 3500, f.Lists[0].Items[1].DepthKey)
}

func TestRenderOverlaySubtree(t *testing.T) {
	s := newTestScene(t)
	o := drawable("overlay", 10)
	o.SetDrawMode(DrawOverlay2D)
	child := drawable("child", 5)
	require.NoError(t, o.AddChild(child))
	b := drawable("b", 10)
	require.NoError(t, s.Add(o))
	require.NoError(t, s.Add(b))

	f := s.Tick(0)
	assert.Equal(t, []string{"b", "overlay", "child"}, itemNames(f.Lists[0]))
}

func TestRenderLayers(t *testing.T) {
	s := newTestScene(t)
	layer := NewLayer("hud", LayerUI)
	layer.SetParentOrigin(Center)
	layer.SetSize(Vec3(100, 100, 0))
	require.NoError(t, layer.AddChild(drawable("inner", 10)))
	require.NoError(t, s.Add(drawable("outer", 10)))
	require.NoError(t, s.Add(layer))

	f := s.Tick(0)
	require.Len(t, f.Lists, 2)
	assert.Equal(t, s.Root().ID, f.Lists[0].LayerID)
	assert.Equal(t, []string{"outer"}, itemNames(f.Lists[0]))
	assert.Equal(t, "hud", f.Lists[1].Name)
	assert.Equal(t, []string{"inner"}, itemNames(f.Lists[1]))
	assert.Less(t, f.Lists[0].Depth, f.Lists[1].Depth)
}

func TestRenderCulling(t *testing.T) {
	s := newTestScene(t)
	far := drawable("far", 10)
	far.SetPosition(Vec3(5000, 0, 0))
	require.NoError(t, s.Add(far))
	require.NoError(t, s.Add(drawable("near", 10)))

	f := s.Tick(0)
	assert.Equal(t, []string{"near"}, itemNames(f.Lists[0]))

	s.Queue(func() { s.Camera().CullEnabled = false })
	f = s.Tick(0)
	assert.Equal(t, []string{"far", "near"}, itemNames(f.Lists[0]))
}

func TestRenderSkipsInvisible(t *testing.T) {
	s := newTestScene(t)
	faded := drawable("faded", 10)
	faded.SetOpacity(0)
	hidden := drawable("hidden", 10)
	hidden.SetVisible(false)
	glass := NewNode("glass")
	glass.SetSize(Vec3(10, 10, 0))
	glass.SetParentOrigin(Center)
	glass.AddRenderer(NewSolidRenderer(ColorTransparent))
	for _, n := range []*Node{faded, hidden, glass, drawable("shown", 10)} {
		require.NoError(t, s.Add(n))
	}

	f := s.Tick(0)
	assert.Equal(t, []string{"shown"}, itemNames(f.Lists[0]))
}

func TestRenderItemValues(t *testing.T) {
	s := newTestScene(t)
	n := drawable("n", 20)
	n.SetPosition(Vec3(10, 0, 0))
	n.SetColor(Color{1, 0, 0, 0.5})
	require.NoError(t, s.Add(n))

	f := s.Tick(0)
	require.Equal(t, 1, f.ItemCount())
	it := f.Lists[0].Items[0]
	assert.Equal(t, n.ID, it.NodeID)
	assert.Equal(t, Color{1, 0, 0, 0.5}, it.Color)
	assert.Equal(t, Vec3(20, 20, 0), it.Size)
	assert.True(t, it.ScreenRect.ApproxEqual(Rect{X: 240, Y: 390, Width: 20, Height: 20}, epsilon), "got %v", it.ScreenRect)
	assert.False(t, it.Overlay)
}

func TestRenderedClearsRendererDirty(t *testing.T) {
	s := newTestScene(t)
	n := drawable("n", 10)
	r := n.renderers[0].(*SolidRenderer)
	require.NoError(t, s.Add(n))
	require.True(t, r.Dirty())
	s.Tick(0)
	assert.False(t, r.Dirty())
}
