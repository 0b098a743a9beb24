package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stage"
)

// ImageRenderer draws an ebiten image stretched over its node's size.
type ImageRenderer struct {
	Image *ebiten.Image
	Depth int

	dirty   bool
	area    stage.Rect
	hasArea bool
	op      ebiten.DrawImageOptions
}

var (
	_ stage.Renderer = (*ImageRenderer)(nil)
	_ Drawer         = (*ImageRenderer)(nil)
)

// NewImageRenderer creates a renderer for img.
func NewImageRenderer(img *ebiten.Image) *ImageRenderer {
	return &ImageRenderer{Image: img, dirty: true}
}

func (r *ImageRenderer) DepthIndex() int              { return r.Depth }
func (r *ImageRenderer) RenderMode() stage.RenderMode { return stage.RenderModeAuto }
func (r *ImageRenderer) IsTransparent() bool          { return r.Image == nil }
func (r *ImageRenderer) Dirty() bool                  { return r.dirty }

func (r *ImageRenderer) UpdatedArea() (stage.Rect, bool) { return r.area, r.hasArea }

func (r *ImageRenderer) Rendered() {
	r.dirty = false
	r.hasArea = false
}

// SetImage replaces the image and damages the whole node.
func (r *ImageRenderer) SetImage(img *ebiten.Image) {
	r.Image = img
	r.dirty = true
	r.hasArea = false
}

// MarkAreaUpdated records that only area of the image (in node pixels, origin
// top-left) changed since the last tick.
func (r *ImageRenderer) MarkAreaUpdated(area stage.Rect) {
	r.area = area
	r.hasArea = true
	r.dirty = true
}

// DrawItem implements Drawer.
func (r *ImageRenderer) DrawItem(dst *ebiten.Image, geom ebiten.GeoM, item *stage.RenderItem) {
	if r.Image == nil {
		return
	}
	b := r.Image.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	r.op.GeoM.Reset()
	r.op.GeoM.Translate(-w/2, -h/2)
	r.op.GeoM.Scale(float64(item.Size.X)/w, float64(item.Size.Y)/h)
	r.op.GeoM.Concat(geom)
	r.op.ColorScale = colorScale(item.Color)
	dst.DrawImage(r.Image, &r.op)
}
