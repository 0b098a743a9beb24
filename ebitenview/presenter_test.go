package ebitenview

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/stage"
)

func TestGeoMTranslateScale(t *testing.T) {
	m := stage.Matrix{
		2, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 1, 0,
		10, 20, 5, 1,
	}
	g := geoM(m)
	x, y := g.Apply(1, 1)
	assert.InDelta(t, 12, x, 1e-9)
	assert.InDelta(t, 23, y, 1e-9)
}

func TestGeoMRotation(t *testing.T) {
	// 90 degrees about Z: (1, 0) -> (0, 1).
	m := stage.Matrix{
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	g := geoM(m)
	x, y := g.Apply(1, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)
}

func TestImageRectRoundsOutward(t *testing.T) {
	got := imageRect(stage.Rect{X: 1.5, Y: 2.2, Width: 3, Height: 0.5})
	assert.Equal(t, image.Rect(1, 2, 5, 3), got)
}

func TestClipRegion(t *testing.T) {
	region := stage.Rect{Width: 100, Height: 100}
	item := &stage.RenderItem{
		ScreenRect: stage.Rect{X: 10, Y: 10, Width: 20, Height: 20},
		Clip:       stage.ClipInfo{BitPlane: -1, Bounds: stage.Rect{Width: 480, Height: 800}},
	}
	clip, ok := clipRegion(item, region)
	require.True(t, ok)
	assert.Equal(t, region, clip)

	item.Clip.ScissorEnabled = true
	item.Clip.Scissor = stage.Rect{X: 15, Y: 15, Width: 5, Height: 5}
	item.Clip.Bounds = item.Clip.Scissor
	clip, ok = clipRegion(item, region)
	require.True(t, ok)
	assert.Equal(t, item.Clip.Scissor, clip)

	item.Clip.Empty = true
	_, ok = clipRegion(item, region)
	assert.False(t, ok)
}

func TestClipRegionOutsideDamage(t *testing.T) {
	item := &stage.RenderItem{
		ScreenRect: stage.Rect{X: 200, Y: 200, Width: 20, Height: 20},
		Clip:       stage.ClipInfo{BitPlane: -1, Bounds: stage.Rect{Width: 480, Height: 800}},
	}
	_, ok := clipRegion(item, stage.Rect{Width: 64, Height: 64})
	assert.False(t, ok)
}

func TestColorScalePremultiplies(t *testing.T) {
	cs := colorScale(stage.Color{R: 1, G: 0.5, B: 0, A: 0.5})
	assert.InDelta(t, 0.5, cs.R(), 1e-6)
	assert.InDelta(t, 0.25, cs.G(), 1e-6)
	assert.InDelta(t, 0, cs.B(), 1e-6)
	assert.InDelta(t, 0.5, cs.A(), 1e-6)
}

func TestToRGBA(t *testing.T) {
	c := toRGBA(stage.Color{R: 1, G: 1, B: 1, A: 1})
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.A)

	c = toRGBA(stage.Color{R: 2, G: -1, B: 0, A: 1})
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
}

func TestNewPresenterDefaults(t *testing.T) {
	p := NewPresenter(true)
	assert.True(t, p.Partial)
	assert.True(t, p.fresh)
	assert.Equal(t, "screenshots", p.ScreenshotDir)
	assert.Zero(t, p.Stats())
}

func TestImageRendererDirtyLifecycle(t *testing.T) {
	r := NewImageRenderer(nil)
	assert.True(t, r.Dirty())
	assert.True(t, r.IsTransparent())

	r.Rendered()
	assert.False(t, r.Dirty())

	r.MarkAreaUpdated(stage.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	area, ok := r.UpdatedArea()
	assert.True(t, ok)
	assert.Equal(t, stage.Rect{X: 1, Y: 2, Width: 3, Height: 4}, area)

	r.Rendered()
	_, ok = r.UpdatedArea()
	assert.False(t, ok)
}

func TestFPSText(t *testing.T) {
	assert.Equal(t, "FPS: 60.0\nTPS: 59.5", fpsText(60, 59.5))
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-spawn", "after-spawn"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLabel(tt.in), "sanitizeLabel(%q)", tt.in)
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{64, 32, 0, 128, 255, 255, 255, 255}, 2, 1)
	assert.Equal(t, []byte{127, 63, 0, 128, 255, 255, 255, 255}, img.Pix)
}

func TestScreenshotQueue(t *testing.T) {
	p := NewPresenter(false)
	p.Screenshot("a")
	p.Screenshot("b")
	assert.Equal(t, []string{"a", "b"}, p.screenshotQueue)
}
