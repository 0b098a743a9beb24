package stage

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps world space onto the viewport. World origin is the center of
// the scene root, so the default camera puts it at the viewport center.
//
// The camera belongs to the update side: change it from the goroutine that
// calls Scene.Update, or through Scene.Queue.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float32
	// Zoom is the scale factor (1 = no zoom).
	Zoom float32
	// Rotation is the camera rotation in radians around the view axis.
	Rotation float32
	// Viewport is the screen rectangle the camera renders into.
	Viewport Rect

	// CullEnabled skips planar nodes whose screen rectangle misses the
	// viewport.
	CullEnabled bool

	followTarget  *sceneNode
	followOffsetX float32
	followOffsetY float32
	followLerp    float32

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to.
	Bounds Rect

	scrollTween *scrollAnim
}

func newCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:        1,
		Viewport:    viewport,
		CullEnabled: true,
	}
}

// Follow makes the camera track node's world position with the given offset
// and lerp factor. A lerp of 1 snaps immediately.
func (c *Camera) Follow(node *Node, offsetX, offsetY, lerp float32) {
	c.followTarget = node.sn
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over duration
// seconds. A nil easeFn is linear.
func (c *Camera) ScrollTo(x, y, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(c.X, x, duration, easeFn),
		tweenY: gween.New(c.Y, y, duration, easeFn),
	}
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// update advances follow, scroll and bounds clamping.
func (c *Camera) update(dt float32, clock *frameClock) {
	if t := c.followTarget; t != nil && t.attached {
		p := t.worldMatrix.get(clock).Translation()
		c.X += (p.X + c.followOffsetX - c.X) * c.followLerp
		c.Y += (p.Y + c.followOffsetY - c.Y) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			c.X, c.scrollTween.doneX = c.scrollTween.tweenX.Update(dt)
		}
		if !c.scrollTween.doneY {
			c.Y, c.scrollTween.doneY = c.scrollTween.tweenY.Update(dt)
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the camera position so the visible area stays
// within Bounds.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	// Bounds smaller than the visible area center the camera.
	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math32.Max(minX, math32.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math32.Max(minY, math32.Min(c.Y, maxY))
	}
}

// ViewMatrix returns the world-to-screen matrix:
//
//	Translate(viewport center) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
func (c *Camera) ViewMatrix() Matrix {
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	rot := NewQuaternion(-c.Rotation, Vector3{0, 0, 1})
	scaleRot := composeMatrix(Vector3{zoom, zoom, 1}, rot, Vector3{cx, cy, 0})
	return multiplyMatrix(scaleRot, composeMatrix(One3, QuaternionIdentity, Vector3{-c.X, -c.Y, 0}))
}

// WorldToScreen converts a world point to screen coordinates.
func (c *Camera) WorldToScreen(p Vector3) Vector2 {
	s := c.ViewMatrix().TransformPoint(p)
	return Vector2{s.X, s.Y}
}

// ScreenToWorld converts screen coordinates to a world point on the z=0
// plane.
func (c *Camera) ScreenToWorld(p Vector2) Vector3 {
	inv, ok := c.ViewMatrix().Invert()
	if !ok {
		return Vector3{p.X, p.Y, 0}
	}
	return inv.TransformPoint(Vector3{p.X, p.Y, 0})
}

// VisibleBounds returns the world-space bounding box of the viewport.
func (c *Camera) VisibleBounds() Rect {
	inv, ok := c.ViewMatrix().Invert()
	if !ok {
		return c.Viewport
	}
	vp := c.Viewport
	return aabb(inv, [4]Vector3{
		{vp.X, vp.Y, 0},
		{vp.Right(), vp.Y, 0},
		{vp.Right(), vp.Bottom(), 0},
		{vp.X, vp.Bottom(), 0},
	})
}

// --- Screen projection ---

// aabb transforms the corners with m and returns their bounding rectangle.
func aabb(m Matrix, corners [4]Vector3) Rect {
	p := m.TransformPoint(corners[0])
	minX, maxX, minY, maxY := p.X, p.X, p.Y, p.Y
	for _, c := range corners[1:] {
		p = m.TransformPoint(c)
		minX = math32.Min(minX, p.X)
		maxX = math32.Max(maxX, p.X)
		minY = math32.Min(minY, p.Y)
		maxY = math32.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// screenAABB returns the screen rectangle covered by a node of the given
// size. mvp is view * world; the node's local box is centered on its origin.
func screenAABB(mvp Matrix, size Vector3) Rect {
	hw, hh := size.X/2, size.Y/2
	return aabb(mvp, [4]Vector3{{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0}})
}

// localAreaAABB projects a local rectangle whose center is offset from the
// node center.
func localAreaAABB(mvp Matrix, cx, cy, w, h float32) Rect {
	x0, y0 := cx-w/2, cy-h/2
	x1, y1 := cx+w/2, cy+h/2
	return aabb(mvp, [4]Vector3{{x0, y0, 0}, {x1, y0, 0}, {x1, y1, 0}, {x0, y1, 0}})
}

// CurrentScreenPosition returns the screen position of the node's anchor
// point from the last published tick.
func (n *Node) CurrentScreenPosition() Vector2 {
	if n.scene == nil {
		return Vector2{}
	}
	world := n.CurrentWorldMatrix()
	size := n.CurrentSize()
	anchor := n.state.anchorPoint
	local := Vector3{(anchor.X - 0.5) * size.X, (anchor.Y - 0.5) * size.Y, 0}
	mvp := multiplyMatrix(n.scene.viewMatrix(), world)
	p := mvp.TransformPoint(local)
	return Vector2{p.X, p.Y}
}

// CalculateScreenExtents returns the screen rectangle covered by the node in
// the last published tick. Detached nodes report an empty rectangle.
func (n *Node) CalculateScreenExtents() Rect {
	if n.scene == nil {
		return Rect{}
	}
	mvp := multiplyMatrix(n.scene.viewMatrix(), n.CurrentWorldMatrix())
	return screenAABB(mvp, n.CurrentSize())
}
