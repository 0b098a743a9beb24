package stage

import "fmt"

// sceneNode is the update-side half of a Node. Only the update pass (message
// closures, animations, constraints and the resolvers) writes it. The event
// side reads published slots through the scene clock.
type sceneNode struct {
	id   uint32
	name string

	parent   *sceneNode
	children []*sceneNode
	attached bool

	layer         bool
	layerBehavior LayerBehavior

	// Animatable properties.
	position    Property[Vector3]
	orientation Property[Quaternion]
	scale       Property[Vector3]
	size        Property[Vector3]
	color       Property[Color]
	visible     Property[bool]

	// Event-thread-only attributes, changed through messages.
	anchorPoint             Vector3
	parentOrigin            Vector3
	inheritPosition         bool
	inheritOrientation      bool
	inheritScale            bool
	positionUsesAnchorPoint bool
	colorMode               ColorMode
	clippingMode            ClippingMode
	drawMode                DrawMode
	updateAreaHint          Vector4
	hasUpdateAreaHint       bool
	sortedDepth             int

	renderers []Renderer

	// Computed each tick.
	worldMatrix  doubleBuffered[Matrix]
	worldColor   doubleBuffered[Color]
	worldVisible doubleBuffered[bool]
	clip         doubleBuffered[ClipInfo]
	screenRect   doubleBuffered[Rect]

	// Set by messages that change hierarchy or renderers; cleared at the end
	// of the tick.
	structureDirty bool
	localDirty     bool
}

func newSceneNode(id uint32, name string, st nodeState) *sceneNode {
	sn := &sceneNode{
		id:          id,
		name:        name,
		position:    newProperty(st.position),
		orientation: newProperty(st.orientation),
		scale:       newProperty(st.scale),
		size:        newProperty(st.size),
		color:       newProperty(st.color),
		visible:     newProperty(st.visible),
		sortedDepth: -1,
	}
	sn.applyStatic(st)
	return sn
}

func (sn *sceneNode) applyStatic(st nodeState) {
	sn.anchorPoint = st.anchorPoint
	sn.parentOrigin = st.parentOrigin
	sn.inheritPosition = st.inheritPosition
	sn.inheritOrientation = st.inheritOrientation
	sn.inheritScale = st.inheritScale
	sn.positionUsesAnchorPoint = st.positionUsesAnchorPoint
	sn.colorMode = st.colorMode
	sn.clippingMode = st.clippingMode
	sn.drawMode = st.drawMode
	sn.updateAreaHint = st.updateAreaHint
	sn.hasUpdateAreaHint = st.hasUpdateAreaHint
}

// attach binds the node to a scene clock and bakes the event-side state into
// both buffers.
func (sn *sceneNode) attach(c *frameClock, st nodeState, renderers []Renderer) {
	sn.attached = true
	sn.bind(c)
	sn.position.Bake(st.position)
	sn.orientation.Bake(st.orientation)
	sn.scale.Bake(st.scale)
	sn.size.Bake(st.size)
	sn.color.Bake(st.color)
	sn.visible.Bake(st.visible)
	sn.applyStatic(st)
	sn.renderers = renderers
	sn.structureDirty = true
}

// detach unbinds the subtree and clears its links. A later attach rebuilds
// them from event-side messages.
func (sn *sceneNode) detach() {
	if sn.parent != nil {
		sn.parent.removeChild(sn)
	}
	sn.detachSubtree()
}

func (sn *sceneNode) detachSubtree() {
	sn.attached = false
	sn.parent = nil
	sn.sortedDepth = -1
	sn.bind(nil)
	for _, c := range sn.children {
		c.detachSubtree()
	}
	sn.children = nil
}

func (sn *sceneNode) bind(c *frameClock) {
	sn.position.bind(c)
	sn.orientation.bind(c)
	sn.scale.bind(c)
	sn.size.bind(c)
	sn.color.bind(c)
	sn.visible.bind(c)
}

// setChildren replaces the child list with the event side's order.
func (sn *sceneNode) setChildren(list []*sceneNode) {
	for _, c := range list {
		if c.parent != sn {
			c.parent = sn
			c.structureDirty = true
		}
	}
	if !sameOrder(sn.children, list) {
		for _, c := range list {
			c.structureDirty = true
		}
	}
	sn.children = list
}

func (sn *sceneNode) removeChild(child *sceneNode) {
	for i, c := range sn.children {
		if c == child {
			list := make([]*sceneNode, 0, len(sn.children)-1)
			list = append(list, sn.children[:i]...)
			list = append(list, sn.children[i+1:]...)
			sn.children = list
			return
		}
	}
}

func sameOrder(a, b []*sceneNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resetToBase prepares every property of the subtree for a new tick.
func (sn *sceneNode) resetToBase() {
	sn.position.resetToBase()
	sn.orientation.resetToBase()
	sn.scale.resetToBase()
	sn.size.resetToBase()
	sn.color.resetToBase()
	sn.visible.resetToBase()
}

// endTick clears per-tick flags.
func (sn *sceneNode) endTick() {
	sn.position.endTick()
	sn.orientation.endTick()
	sn.scale.endTick()
	sn.size.endTick()
	sn.color.endTick()
	sn.visible.endTick()
	sn.structureDirty = false
	sn.localDirty = false
}

// propertiesDirty reports whether an animatable property was written this
// tick.
func (sn *sceneNode) propertiesDirty() bool {
	return sn.position.Dirty() || sn.orientation.Dirty() || sn.scale.Dirty() ||
		sn.size.Dirty() || sn.color.Dirty() || sn.visible.Dirty()
}

// walk visits the subtree in pre-order.
func (sn *sceneNode) walk(fn func(*sceneNode)) {
	fn(sn)
	for _, c := range sn.children {
		c.walk(fn)
	}
}

// value returns an animatable property as prepared for this tick.
func (sn *sceneNode) value(p PropertyIndex) (Value, error) {
	switch p {
	case PropertyPosition:
		return Vector3Value(sn.position.updating()), nil
	case PropertyOrientation:
		return QuaternionValue(sn.orientation.updating()), nil
	case PropertyScale:
		return Vector3Value(sn.scale.updating()), nil
	case PropertySize:
		return Vector3Value(sn.size.updating()), nil
	case PropertyColor:
		return ColorValue(sn.color.updating()), nil
	case PropertyOpacity:
		return FloatValue(sn.color.updating().A), nil
	case PropertyVisible:
		return BoolValue(sn.visible.updating()), nil
	}
	return Value{}, fmt.Errorf("stage: %s is not animatable: %w", p, ErrUnknownProperty)
}

// setValue writes an animatable property for this tick.
func (sn *sceneNode) setValue(p PropertyIndex, v Value) error {
	var err error
	switch p {
	case PropertyPosition:
		err = setFrom(v.Vector3, &sn.position)
	case PropertyOrientation:
		err = setFrom(v.Quaternion, &sn.orientation)
	case PropertyScale:
		err = setFrom(v.Vector3, &sn.scale)
	case PropertySize:
		err = setFrom(v.Vector3, &sn.size)
	case PropertyColor:
		err = setFrom(v.Color, &sn.color)
	case PropertyOpacity:
		var a float32
		if a, err = v.Float(); err == nil {
			c := sn.color.updating()
			c.A = a
			err = sn.color.Set(c)
		}
	case PropertyVisible:
		err = setFrom(v.Bool, &sn.visible)
	default:
		err = fmt.Errorf("stage: %s is not animatable: %w", p, ErrUnknownProperty)
	}
	return err
}

func setFrom[T any](get func() (T, error), p *Property[T]) error {
	x, err := get()
	if err != nil {
		return err
	}
	return p.Set(x)
}
