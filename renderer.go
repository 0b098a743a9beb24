package stage

// RenderMode lets a renderer take over stencil and color writes from the
// automatic clipping feature.
type RenderMode uint8

const (
	// RenderModeAuto leaves clipping to the scene graph.
	RenderModeAuto RenderMode = iota
	// RenderModeNone draws nothing.
	RenderModeNone
	// RenderModeColor writes color only.
	RenderModeColor
	// RenderModeStencil writes the stencil only.
	RenderModeStencil
	// RenderModeColorStencil writes color and stencil under renderer control.
	RenderModeColorStencil
)

// Renderer is the opaque drawable attached to a node. The core only asks for
// what it needs to order, clip and track damage; geometry, textures and
// shaders stay with the implementation.
type Renderer interface {
	// DepthIndex is added to the node's sorted depth when ordering.
	DepthIndex() int
	// RenderMode overrides automatic clipping when not RenderModeAuto.
	RenderMode() RenderMode
	// IsTransparent reports that drawing would have no visible effect.
	IsTransparent() bool
	// Dirty reports that uniforms, textures or geometry changed since the
	// previous tick. Implementations clear it in Rendered.
	Dirty() bool
	// UpdatedArea returns the sub-rectangle (in node local pixels, origin at
	// the node's top-left) of an external image that changed, if known.
	UpdatedArea() (Rect, bool)
	// Rendered is called by the update pass after damage was computed.
	Rendered()
}

// SolidRenderer draws its node's area in a solid color. The node's world
// color multiplies Tint.
type SolidRenderer struct {
	Tint  Color
	Depth int
	Mode  RenderMode

	dirty   bool
	area    Rect
	hasArea bool
}

// NewSolidRenderer creates a renderer tinted with c.
func NewSolidRenderer(c Color) *SolidRenderer {
	return &SolidRenderer{Tint: c, dirty: true}
}

func (r *SolidRenderer) DepthIndex() int        { return r.Depth }
func (r *SolidRenderer) RenderMode() RenderMode { return r.Mode }
func (r *SolidRenderer) IsTransparent() bool    { return r.Tint.A <= 0 || r.Mode == RenderModeNone }
func (r *SolidRenderer) Dirty() bool            { return r.dirty }

func (r *SolidRenderer) UpdatedArea() (Rect, bool) { return r.area, r.hasArea }

func (r *SolidRenderer) Rendered() {
	r.dirty = false
	r.hasArea = false
}

// SetTint changes the tint and marks the renderer dirty.
func (r *SolidRenderer) SetTint(c Color) {
	r.Tint = c
	r.dirty = true
}

// MarkAreaUpdated records that only area (node local) changed.
func (r *SolidRenderer) MarkAreaUpdated(area Rect) {
	r.area = area
	r.hasArea = true
	r.dirty = true
}
