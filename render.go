package stage

// RenderItem is a single drawable of a published frame.
type RenderItem struct {
	NodeID uint32
	Name   string
	// Renderer is nil for clip-only items: clipping nodes without renderers
	// still need their stencil or scissor set up.
	Renderer Renderer
	World    Matrix
	Color    Color
	Size     Vector3
	// ScreenRect is the node's bounding rectangle on screen.
	ScreenRect Rect
	Clip       ClipInfo
	// DepthKey is the node's sorted depth plus the renderer's depth index.
	DepthKey int
	Overlay  bool

	treeOrder int // assigned during traversal for stable sort
}

// RenderList holds the sorted items of one layer.
type RenderList struct {
	LayerID  uint32
	Name     string
	Behavior LayerBehavior
	Depth    int
	Items    []RenderItem
}

// Frame is everything the update pass publishes for one tick. It is never
// modified after publication.
type Frame struct {
	Number   uint64
	Viewport Rect
	View     Matrix
	Lists    []RenderList
	Damage   Damage

	// ClippingUsed is set when any node opened a stencil or scissor clip.
	ClippingUsed bool
	// StencilOverflow is set when stencil nesting exceeded the capacity.
	StencilOverflow bool
}

// ItemCount returns the number of items across all lists.
func (f *Frame) ItemCount() int {
	n := 0
	for i := range f.Lists {
		n += len(f.Lists[i].Items)
	}
	return n
}

// collector walks the update-side tree after the resolvers ran and emits
// render items and damage records.
type collector struct {
	clock    *frameClock
	view     Matrix
	viewport Rect
	cull     bool
	planner  *clipPlanner

	lists     []*RenderList
	records   []nodeRecord
	treeOrder int
	sortBuf   []RenderItem
}

func (cl *collector) reset(clock *frameClock, view Matrix, viewport Rect, cull bool, capacity uint32) {
	cl.clock = clock
	cl.view = view
	cl.viewport = viewport
	cl.cull = cull
	cl.planner.reset(viewport, capacity)
	cl.lists = cl.lists[:0]
	cl.records = cl.records[:0]
	cl.treeOrder = 0
}

func (cl *collector) newList(sn *sceneNode) *RenderList {
	l := &RenderList{
		LayerID:  sn.id,
		Name:     sn.name,
		Behavior: sn.layerBehavior,
		Depth:    sn.sortedDepth,
	}
	cl.lists = append(cl.lists, l)
	return l
}

// visit processes sn and its subtree. list is the render list of the
// enclosing layer; parent is the clip state handed down by the ancestors.
func (cl *collector) visit(sn *sceneNode, list *RenderList, parent clipState, overlay bool) {
	c := cl.clock
	if sn.layer || list == nil {
		list = cl.newList(sn)
	}
	if !sn.worldVisible.updating(c) {
		hideSubtree(sn, c)
		return
	}
	threeD := list.Behavior == Layer3D

	world := sn.worldMatrix.updating(c)
	size := sn.size.updating()
	mvp := multiplyMatrix(cl.view, world)
	rect := screenAABB(mvp, size)
	sn.screenRect.set(c, rect)

	overlay = overlay || sn.drawMode == DrawOverlay2D
	override := rendererOverridesClipping(sn)
	st, info := cl.planner.enter(parent, sn.clippingMode, rect, override)
	sn.clip.set(c, info)

	culled := cl.cull && !threeD && !rect.Intersects(parent.bounds)
	color := sn.worldColor.updating(c)

	if !culled && !info.Empty {
		emitted := false
		dirty := sn.structureDirty || sn.localDirty || sn.propertiesDirty()
		area, hasArea := Rect{}, false
		if color.A > 0 {
			for _, r := range sn.renderers {
				if r.IsTransparent() {
					continue
				}
				if r.Dirty() {
					dirty = true
					if a, ok := r.UpdatedArea(); ok {
						ar := localAreaAABB(mvp, a.X+a.Width/2-size.X/2, a.Y+a.Height/2-size.Y/2, a.Width, a.Height)
						area = area.Union(ar)
						hasArea = true
					}
				}
				cl.emit(list, sn, r, world, color, size, rect, info, overlay)
				emitted = true
			}
		}
		if len(sn.renderers) == 0 && sn.clippingMode != ClippingDisabled && !override {
			cl.emit(list, sn, nil, world, color, size, rect, info, overlay)
			emitted = true
		}
		if emitted {
			damageRect := rect
			if sn.hasUpdateAreaHint {
				h := sn.updateAreaHint
				damageRect = localAreaAABB(mvp, h.X, h.Y, h.Z, h.W)
			}
			cl.records = append(cl.records, nodeRecord{
				id:         sn.id,
				rect:       damageRect,
				color:      color,
				clip:       info,
				dirty:      dirty && !hasArea,
				fullRedraw: threeD || !mvp.IsPlanar(),
				area:       area,
				hasArea:    hasArea,
			})
		}
	}

	for _, child := range sn.children {
		cl.visit(child, list, st, overlay)
	}
}

func (cl *collector) emit(list *RenderList, sn *sceneNode, r Renderer, world Matrix, color Color, size Vector3, rect Rect, info ClipInfo, overlay bool) {
	key := sn.sortedDepth
	if r != nil {
		key += r.DepthIndex()
	}
	cl.treeOrder++
	list.Items = append(list.Items, RenderItem{
		NodeID:     sn.id,
		Name:       sn.name,
		Renderer:   r,
		World:      world,
		Color:      color,
		Size:       size,
		ScreenRect: rect,
		Clip:       info,
		DepthKey:   key,
		Overlay:    overlay,
		treeOrder:  cl.treeOrder,
	})
}

// hideSubtree clears the per-tick clip and screen values of an invisible
// subtree so that neither buffer keeps stale values.
func hideSubtree(sn *sceneNode, c *frameClock) {
	sn.walk(func(n *sceneNode) {
		n.screenRect.set(c, Rect{})
		n.clip.set(c, ClipInfo{BitPlane: -1})
	})
}

// sortLists orders the items of every list and the lists themselves.
func (cl *collector) sortLists() {
	for _, l := range cl.lists {
		cl.sortBuf = mergeSort(l.Items, cl.sortBuf)
	}
	for i := 1; i < len(cl.lists); i++ {
		key := cl.lists[i]
		j := i - 1
		for j >= 0 && cl.lists[j].Depth > key.Depth {
			cl.lists[j+1] = cl.lists[j]
			j--
		}
		cl.lists[j+1] = key
	}
}

// --- Merge sort ---

// itemLessOrEqual returns true if a should sort before or at the same
// position as b. Using <= for treeOrder keeps the sort stable.
func itemLessOrEqual(a, b *RenderItem) bool {
	if a.Overlay != b.Overlay {
		return !a.Overlay
	}
	if a.DepthKey != b.DepthKey {
		return a.DepthKey < b.DepthKey
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts items in place using buf as scratch space and returns the
// (possibly grown) buffer. Bottom-up merge sort: no allocations once the
// buffer reaches its high-water mark.
func mergeSort(items, buf []RenderItem) []RenderItem {
	n := len(items)
	if n <= 1 {
		return buf
	}
	if cap(buf) < n {
		buf = make([]RenderItem, n)
	}
	buf = buf[:n]

	a := items
	b := buf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(items, buf)
	}
	return buf
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderItem, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if itemLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
