package stage

// ClipInfo is the clipping state a node is drawn with.
//
// Stencil clipping gives each nesting level of ClipChildren nodes its own
// bit-plane: a node opening level d writes bit d-1 while testing the d-1
// bits below it, and its descendants test all d bits. Siblings at the same
// level reuse the same plane.
type ClipInfo struct {
	// ClippingID identifies the nearest enclosing (or own) stencil clip. Zero
	// when no stencil clip is open. IDs are unique within a tick.
	ClippingID uint32
	// StencilDepth is the number of open stencil clips including the node's
	// own.
	StencilDepth uint32
	// BitPlane is the plane written by the node itself, or -1.
	BitPlane int
	// StencilMask is the OR of all open bit-planes.
	StencilMask uint32
	// StencilRef, StencilTestMask and StencilWriteMask configure the stencil
	// function for drawing the node.
	StencilRef       uint32
	StencilTestMask  uint32
	StencilWriteMask uint32
	// StencilOverflow is set when the nesting exceeds the stencil capacity.
	StencilOverflow bool

	// ScissorDepth is the number of open scissor clips including the node's
	// own.
	ScissorDepth uint32
	// Scissor is the effective scissor in screen coordinates when
	// ScissorEnabled.
	Scissor        Rect
	ScissorEnabled bool

	// Bounds is the intersection of the viewport with every open clip
	// area, stencil clips approximated by their screen rectangle.
	Bounds Rect

	// Empty is set when the open clip areas do not intersect, so nothing
	// below them can appear.
	Empty bool
}

// Clipped reports whether any clip applies.
func (c ClipInfo) Clipped() bool {
	return c.StencilDepth > 0 || c.ScissorEnabled
}

// clipState is what a clipping node hands down to its descendants. It is
// passed by value through the render traversal, so returning from a subtree
// pops it.
type clipState struct {
	stencilDepth   uint32
	clippingID     uint32
	scissorDepth   uint32
	scissor        Rect
	scissorEnabled bool
	bounds         Rect
	empty          bool
	overflow       bool
}

// clipPlanner hands out clipping IDs during one tick.
type clipPlanner struct {
	capacity   uint32
	viewport   Rect
	nextID     uint32
	used       bool
	overflowed bool
}

func (p *clipPlanner) reset(viewport Rect, capacity uint32) {
	p.viewport = viewport
	p.capacity = capacity
	p.nextID = 0
	p.used = false
	p.overflowed = false
}

// root returns the state at the top of a tree: no clips, bounds = viewport.
func (p *clipPlanner) root() clipState {
	return clipState{bounds: p.viewport}
}

// stencilMask returns the mask with the lowest depth bits set.
func stencilMask(depth uint32) uint32 {
	if depth >= 32 {
		return ^uint32(0)
	}
	return 1<<depth - 1
}

// enter opens the clip of a node with the given mode and screen rectangle.
// It returns the state for the node's descendants and the ClipInfo the node
// itself is drawn with. Nodes whose renderer drives the stencil or color
// writes itself do not open a clip.
func (p *clipPlanner) enter(parent clipState, mode ClippingMode, rect Rect, override bool) (clipState, ClipInfo) {
	st := parent
	bitPlane := -1
	if !override {
		switch mode {
		case ClipChildren:
			p.used = true
			p.nextID++
			st.stencilDepth++
			st.clippingID = p.nextID
			bitPlane = int(st.stencilDepth - 1)
			if st.stencilDepth > p.capacity {
				st.overflow = true
				if !p.overflowed {
					p.overflowed = true
					Logger().Warn("stage: stencil bit-planes exhausted",
						"depth", st.stencilDepth, "capacity", p.capacity)
				}
			}
			st.bounds = st.bounds.Intersect(rect)
		case ClipToBoundingBox:
			p.used = true
			scissor := p.viewport
			if st.scissorEnabled {
				scissor = st.scissor
			}
			st.scissorDepth++
			st.scissor = scissor.Intersect(rect)
			st.scissorEnabled = true
			st.bounds = st.bounds.Intersect(rect)
		}
		if mode != ClippingDisabled && st.bounds.IsEmpty() {
			st.empty = true
		}
	}

	info := ClipInfo{
		ClippingID:      st.clippingID,
		StencilDepth:    st.stencilDepth,
		BitPlane:        bitPlane,
		StencilMask:     stencilMask(st.stencilDepth),
		StencilOverflow: st.overflow,
		ScissorDepth:    st.scissorDepth,
		Scissor:         st.scissor,
		ScissorEnabled:  st.scissorEnabled,
		Bounds:          st.bounds,
		Empty:           st.empty,
	}
	if st.stencilDepth > 0 {
		mask := stencilMask(st.stencilDepth)
		info.StencilRef = mask
		if bitPlane >= 0 {
			info.StencilTestMask = mask >> 1
			info.StencilWriteMask = mask
		} else {
			info.StencilTestMask = mask
		}
	}
	return st, info
}

// rendererOverridesClipping reports whether any renderer of sn takes over
// stencil or color writes.
func rendererOverridesClipping(sn *sceneNode) bool {
	for _, r := range sn.renderers {
		if r.RenderMode() != RenderModeAuto {
			return true
		}
	}
	return false
}
