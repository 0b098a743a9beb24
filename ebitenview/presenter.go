// Package ebitenview presents stage frames with [Ebitengine].
//
// A [Presenter] draws the render lists of a published [stage.Frame] onto an
// ebiten image. It keeps a persistent canvas and, when partial updates are
// enabled, redraws only the frame's damage rectangles. Stencil clips are
// approximated by their screen rectangle; scissor clips are exact.
//
// [Game] wires a scene and a presenter into an [ebiten.Game]: Update runs the
// event side and one scene tick, Draw presents the latest frame and
// acknowledges its damage.
//
// [Ebitengine]: https://ebitengine.org
package ebitenview

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stage"
)

// Drawer is implemented by renderers that draw themselves. geom maps the
// node's local space (origin at its center) to the screen.
type Drawer interface {
	DrawItem(dst *ebiten.Image, geom ebiten.GeoM, item *stage.RenderItem)
}

// Presenter draws published frames.
type Presenter struct {
	// ClearColor fills redrawn areas before items are drawn.
	ClearColor stage.Color
	// Partial redraws only damaged areas. When false every frame is drawn in
	// full.
	Partial bool
	// ShowFPS overlays the actual FPS and TPS.
	ShowFPS bool
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	canvas    *ebiten.Image
	white     *ebiten.Image
	lastFrame uint64
	fresh     bool
	op        ebiten.DrawImageOptions

	screenshotQueue []string
	stats           Stats
}

// Stats counts what the presenter did.
type Stats struct {
	Frames  uint64
	Full    uint64
	Partial uint64
	Idle    uint64
	Items   int
}

// NewPresenter creates a presenter. partial enables damage-driven redraws.
func NewPresenter(partial bool) *Presenter {
	return &Presenter{
		ClearColor:    stage.Color{R: 0.118, G: 0.118, B: 0.157, A: 1},
		Partial:       partial,
		ScreenshotDir: "screenshots",
		fresh:         true,
	}
}

// Stats returns the presenter counters.
func (p *Presenter) Stats() Stats { return p.stats }

// Present draws f onto screen. It returns the rectangles redrawn for f and
// whether f was new; a frame presented twice is only copied from the canvas.
func (p *Presenter) Present(screen *ebiten.Image, f *stage.Frame) ([]stage.Rect, bool) {
	if f == nil {
		screen.Fill(toRGBA(p.ClearColor))
		return nil, false
	}
	p.ensureCanvas(f.Viewport)

	isNew := f.Number != p.lastFrame
	var drawn []stage.Rect
	if isNew {
		p.stats.Frames++
		p.stats.Items = 0
		switch {
		case p.fresh || !p.Partial || f.Damage.FullRedraw:
			p.redraw(f, f.Viewport)
			drawn = []stage.Rect{f.Viewport}
			p.stats.Full++
		case f.Damage.Idle():
			p.stats.Idle++
		default:
			for _, r := range f.Damage.Rects {
				p.redraw(f, r)
			}
			drawn = f.Damage.Rects
			p.stats.Partial++
		}
		p.fresh = false
		p.lastFrame = f.Number
	}

	var op ebiten.DrawImageOptions
	screen.DrawImage(p.canvas, &op)
	if p.ShowFPS {
		drawFPS(screen)
	}
	p.flushScreenshots(screen)
	return drawn, isNew
}

// ensureCanvas (re)creates the canvas when the viewport size changes. The
// canvas shares the screen's coordinate space.
func (p *Presenter) ensureCanvas(vp stage.Rect) {
	if p.white == nil {
		p.white = ebiten.NewImage(1, 1)
		p.white.Fill(color.White)
	}
	w, h := int(math32.Ceil(vp.Right())), int(math32.Ceil(vp.Bottom()))
	if p.canvas != nil {
		b := p.canvas.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return
		}
		p.canvas.Deallocate()
	}
	p.canvas = ebiten.NewImage(max(w, 1), max(h, 1))
	p.fresh = true
}

// redraw clears region of the canvas and draws every item that reaches it.
func (p *Presenter) redraw(f *stage.Frame, region stage.Rect) {
	region = region.Intersect(f.Viewport)
	if region.IsEmpty() {
		return
	}
	dst := p.canvas.SubImage(imageRect(region)).(*ebiten.Image)
	dst.Fill(toRGBA(p.ClearColor))

	for li := range f.Lists {
		items := f.Lists[li].Items
		for i := range items {
			it := &items[i]
			if it.Renderer == nil {
				continue
			}
			clip, ok := clipRegion(it, region)
			if !ok {
				continue
			}
			target := p.canvas.SubImage(imageRect(clip)).(*ebiten.Image)
			p.drawItem(target, f.View, it)
			p.stats.Items++
		}
	}
}

func (p *Presenter) drawItem(dst *ebiten.Image, view stage.Matrix, it *stage.RenderItem) {
	geom := geoM(view.Mul(it.World))
	switch r := it.Renderer.(type) {
	case Drawer:
		r.DrawItem(dst, geom, it)
	case *stage.SolidRenderer:
		if r.Mode == stage.RenderModeStencil {
			return
		}
		p.op.GeoM.Reset()
		p.op.GeoM.Translate(-0.5, -0.5)
		p.op.GeoM.Scale(float64(it.Size.X), float64(it.Size.Y))
		p.op.GeoM.Concat(geom)
		p.op.ColorScale = colorScale(r.Tint.Mul(it.Color))
		dst.DrawImage(p.white, &p.op)
	}
}

// clipRegion returns the area an item may draw into while region is being
// redrawn. ok is false when the item cannot touch it.
func clipRegion(it *stage.RenderItem, region stage.Rect) (stage.Rect, bool) {
	if it.Clip.Empty {
		return stage.Rect{}, false
	}
	clip := region
	if it.Clip.Clipped() || !it.Clip.Bounds.IsEmpty() {
		clip = clip.Intersect(it.Clip.Bounds)
	}
	if clip.IsEmpty() || !it.ScreenRect.Intersects(clip) {
		return stage.Rect{}, false
	}
	return clip, true
}

// geoM extracts the 2D affine part of m.
func geoM(m stage.Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, float64(m[0]))
	g.SetElement(0, 1, float64(m[4]))
	g.SetElement(0, 2, float64(m[12]))
	g.SetElement(1, 0, float64(m[1]))
	g.SetElement(1, 1, float64(m[5]))
	g.SetElement(1, 2, float64(m[13]))
	return g
}

// imageRect rounds r outward to whole pixels.
func imageRect(r stage.Rect) image.Rectangle {
	return image.Rect(
		int(math32.Floor(r.X)), int(math32.Floor(r.Y)),
		int(math32.Ceil(r.Right())), int(math32.Ceil(r.Bottom())),
	)
}

// colorScale returns c premultiplied by its alpha.
func colorScale(c stage.Color) ebiten.ColorScale {
	var cs ebiten.ColorScale
	a := c.A
	cs.Scale(c.R*a, c.G*a, c.B*a, a)
	return cs
}

func toRGBA(c stage.Color) color.RGBA {
	c = c.Clamped()
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}
