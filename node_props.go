package stage

import "fmt"

// queue sends fn to the update side when the node is on a scene. Off-stage
// changes are only cached and are baked on connection.
func (n *Node) queue(fn func(sn *sceneNode)) {
	if n.scene == nil {
		return
	}
	sn := n.sn
	n.scene.post(func() { fn(sn) })
}

func logSetFailure(sn *sceneNode, err error) {
	if err != nil {
		Logger().Debug("stage: dropped property write", "node", sn.name, "error", err)
	}
}

// stopped reports whether the node is on a scene that no longer accepts
// writes. The rejected write is logged and must leave the node unchanged.
func (n *Node) stopped(op string) bool {
	if n.scene == nil || n.scene.Running() {
		return false
	}
	Logger().Warn("stage: write on stopped scene ignored", "op", op, "node", n.Name, "error", ErrNotRunning)
	return true
}

// --- Animatable properties ---

// SetPosition sets the position relative to the parent origin. On a stopped
// scene this and the other typed setters change nothing.
func (n *Node) SetPosition(p Vector3) {
	if n.stopped("SetPosition") {
		return
	}
	n.state.position = p
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.position.Set(p)) })
}

// SetOrientation sets the rotation relative to the parent.
func (n *Node) SetOrientation(q Quaternion) {
	if n.stopped("SetOrientation") {
		return
	}
	n.state.orientation = q
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.orientation.Set(q)) })
}

// SetScale sets the scale factor.
func (n *Node) SetScale(s Vector3) {
	if n.stopped("SetScale") {
		return
	}
	n.state.scale = s
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.scale.Set(s)) })
}

// SetSize sets the unscaled size.
func (n *Node) SetSize(s Vector3) {
	if n.stopped("SetSize") {
		return
	}
	n.state.size = s
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.size.Set(s)) })
}

// SetColor sets the node color. Alpha is the node opacity.
func (n *Node) SetColor(c Color) {
	if n.stopped("SetColor") {
		return
	}
	n.state.color = c
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.color.Set(c)) })
}

// SetOpacity sets only the alpha of the node color.
func (n *Node) SetOpacity(a float32) {
	c := n.state.color
	c.A = a
	n.SetColor(c)
}

// SetVisible shows or hides the node and its subtree. A change notifies the
// node and all its descendants.
func (n *Node) SetVisible(visible bool) {
	if n.state.visible == visible || n.stopped("SetVisible") {
		return
	}
	n.state.visible = visible
	n.queue(func(sn *sceneNode) { logSetFailure(sn, sn.visible.Set(visible)) })
	n.emit(func() { emitVisibilityChanged(n, visible) })
}

// Position returns the target position.
func (n *Node) Position() Vector3 { return n.state.position }

// Orientation returns the target orientation.
func (n *Node) Orientation() Quaternion { return n.state.orientation }

// Scale returns the target scale.
func (n *Node) Scale() Vector3 { return n.state.scale }

// Size returns the target size.
func (n *Node) Size() Vector3 { return n.state.size }

// Color returns the target color.
func (n *Node) Color() Color { return n.state.color }

// Visible returns the target visibility.
func (n *Node) Visible() bool { return n.state.visible }

// --- Event-side attributes ---

// SetAnchorPoint sets the point of the node (0..1 of its size) that sits at
// its position.
func (n *Node) SetAnchorPoint(a Vector3) {
	n.state.anchorPoint = a
	n.queue(func(sn *sceneNode) { sn.anchorPoint = a; sn.localDirty = true })
}

// SetParentOrigin sets the point of the parent (0..1 of its size) the
// position is relative to.
func (n *Node) SetParentOrigin(o Vector3) {
	n.state.parentOrigin = o
	n.queue(func(sn *sceneNode) { sn.parentOrigin = o; sn.localDirty = true })
}

// SetInheritPosition controls whether the parent's world transform moves the
// node.
func (n *Node) SetInheritPosition(inherit bool) {
	n.state.inheritPosition = inherit
	n.queue(func(sn *sceneNode) { sn.inheritPosition = inherit; sn.localDirty = true })
}

// SetInheritOrientation controls whether the parent's rotation applies.
func (n *Node) SetInheritOrientation(inherit bool) {
	n.state.inheritOrientation = inherit
	n.queue(func(sn *sceneNode) { sn.inheritOrientation = inherit; sn.localDirty = true })
}

// SetInheritScale controls whether the parent's scale applies.
func (n *Node) SetInheritScale(inherit bool) {
	n.state.inheritScale = inherit
	n.queue(func(sn *sceneNode) { sn.inheritScale = inherit; sn.localDirty = true })
}

// SetPositionUsesAnchorPoint selects whether the position places the anchor
// point (true) or the top-left corner (false).
func (n *Node) SetPositionUsesAnchorPoint(uses bool) {
	n.state.positionUsesAnchorPoint = uses
	n.queue(func(sn *sceneNode) { sn.positionUsesAnchorPoint = uses; sn.localDirty = true })
}

// SetColorMode selects how the world color combines with the parent's.
func (n *Node) SetColorMode(m ColorMode) {
	n.state.colorMode = m
	n.queue(func(sn *sceneNode) { sn.colorMode = m; sn.localDirty = true })
}

// SetClippingMode selects how descendants are clipped.
func (n *Node) SetClippingMode(m ClippingMode) {
	n.state.clippingMode = m
	n.queue(func(sn *sceneNode) { sn.clippingMode = m; sn.localDirty = true })
}

// SetDrawMode selects normal or overlay ordering for the subtree.
func (n *Node) SetDrawMode(m DrawMode) {
	n.state.drawMode = m
	n.queue(func(sn *sceneNode) { sn.drawMode = m; sn.localDirty = true })
}

// SetUpdateAreaHint replaces the damage area of the node. x and y offset the
// area's center from the node center; z and w are its width and height.
func (n *Node) SetUpdateAreaHint(hint Vector4) {
	n.state.updateAreaHint = hint
	n.state.hasUpdateAreaHint = hint.Z > 0 && hint.W > 0
	has := n.state.hasUpdateAreaHint
	n.queue(func(sn *sceneNode) {
		sn.updateAreaHint = hint
		sn.hasUpdateAreaHint = has
		sn.localDirty = true
	})
}

// SetChildrenDepthIndexPolicy selects how depth indices are distributed over
// the node's children.
func (n *Node) SetChildrenDepthIndexPolicy(p DepthIndexPolicy) {
	if n.depthPolicy == p {
		return
	}
	n.depthPolicy = p
	if n.scene != nil {
		n.scene.requestDepthRebuild()
	}
}

// AnchorPoint returns the anchor point.
func (n *Node) AnchorPoint() Vector3 { return n.state.anchorPoint }

// ParentOrigin returns the parent origin.
func (n *Node) ParentOrigin() Vector3 { return n.state.parentOrigin }

// InheritPosition reports whether the parent position is inherited.
func (n *Node) InheritPosition() bool { return n.state.inheritPosition }

// InheritOrientation reports whether the parent orientation is inherited.
func (n *Node) InheritOrientation() bool { return n.state.inheritOrientation }

// InheritScale reports whether the parent scale is inherited.
func (n *Node) InheritScale() bool { return n.state.inheritScale }

// PositionUsesAnchorPoint reports whether the position places the anchor
// point rather than the top-left corner.
func (n *Node) PositionUsesAnchorPoint() bool { return n.state.positionUsesAnchorPoint }

// ColorMode returns how the world color is derived.
func (n *Node) ColorMode() ColorMode { return n.state.colorMode }

// ClippingMode returns how the node clips its descendants.
func (n *Node) ClippingMode() ClippingMode { return n.state.clippingMode }

// DrawMode returns the draw mode.
func (n *Node) DrawMode() DrawMode { return n.state.drawMode }

// UpdateAreaHint returns the damage area hint; zero when unset.
func (n *Node) UpdateAreaHint() Vector4 { return n.state.updateAreaHint }

// ChildrenDepthIndexPolicy returns how depth indices are given to children.
func (n *Node) ChildrenDepthIndexPolicy() DepthIndexPolicy { return n.depthPolicy }

// InheritLayoutDirection reports whether the layout direction follows the
// parent.
func (n *Node) InheritLayoutDirection() bool { return n.inheritLayoutDirection }

// LayoutDirection returns the effective layout direction.
func (n *Node) LayoutDirection() LayoutDirection { return n.layoutDirection }

// --- Layout direction ---

// SetLayoutDirection sets the direction explicitly, stops inheriting it from
// the parent and propagates it to inheriting descendants.
func (n *Node) SetLayoutDirection(dir LayoutDirection) {
	n.inheritLayoutDirection = false
	n.emit(func() { propagateLayoutDirection(n, dir, true) })
}

// SetInheritLayoutDirection controls whether the node follows its parent's
// direction. Turning it on adopts the parent's current direction.
func (n *Node) SetInheritLayoutDirection(inherit bool) {
	if n.inheritLayoutDirection == inherit {
		return
	}
	n.inheritLayoutDirection = inherit
	if inherit && n.parent != nil {
		dir := n.parent.layoutDirection
		n.emit(func() { propagateLayoutDirection(n, dir, false) })
	}
}

func propagateLayoutDirection(n *Node, dir LayoutDirection, set bool) {
	if !set && !n.inheritLayoutDirection {
		return
	}
	if n.layoutDirection != dir {
		n.layoutDirection = dir
		if n.OnLayoutDirectionChanged != nil {
			n.OnLayoutDirectionChanged(n, dir)
		}
	}
	for _, c := range snapshotChildren(n) {
		propagateLayoutDirection(c, dir, false)
	}
}

// --- Current (published) values ---

func readCurrent[T any](n *Node, p *Property[T], fallback T) T {
	if n.scene == nil {
		return fallback
	}
	return p.values[n.scene.clock.current()]
}

func readWorld[T any](n *Node, d *doubleBuffered[T], fallback T) T {
	if n.scene == nil {
		return fallback
	}
	return d.get(n.scene.clock)
}

// CurrentPosition returns the position published by the last tick.
func (n *Node) CurrentPosition() Vector3 {
	return readCurrent(n, &n.sn.position, n.state.position)
}

// CurrentOrientation returns the orientation published by the last tick.
func (n *Node) CurrentOrientation() Quaternion {
	return readCurrent(n, &n.sn.orientation, n.state.orientation)
}

// CurrentScale returns the scale published by the last tick.
func (n *Node) CurrentScale() Vector3 {
	return readCurrent(n, &n.sn.scale, n.state.scale)
}

// CurrentSize returns the size published by the last tick.
func (n *Node) CurrentSize() Vector3 {
	return readCurrent(n, &n.sn.size, n.state.size)
}

// CurrentColor returns the color published by the last tick.
func (n *Node) CurrentColor() Color {
	return readCurrent(n, &n.sn.color, n.state.color)
}

// CurrentVisible returns the own visibility published by the last tick.
func (n *Node) CurrentVisible() bool {
	return readCurrent(n, &n.sn.visible, n.state.visible)
}

// CurrentWorldMatrix returns the world matrix published by the last tick.
// Off-stage nodes report their local transform.
func (n *Node) CurrentWorldMatrix() Matrix {
	if n.scene == nil {
		return localMatrix(&n.state, Vector3{})
	}
	return n.sn.worldMatrix.get(n.scene.clock)
}

// CurrentWorldPosition returns the translation of the world matrix.
func (n *Node) CurrentWorldPosition() Vector3 {
	return n.CurrentWorldMatrix().Translation()
}

// CurrentWorldScale returns the scale of the world matrix.
func (n *Node) CurrentWorldScale() Vector3 {
	s, _, _ := n.CurrentWorldMatrix().Decompose()
	return s
}

// CurrentWorldOrientation returns the rotation of the world matrix.
func (n *Node) CurrentWorldOrientation() Quaternion {
	_, q, _ := n.CurrentWorldMatrix().Decompose()
	return q
}

// CurrentWorldColor returns the world color published by the last tick.
func (n *Node) CurrentWorldColor() Color {
	return readWorld(n, &n.sn.worldColor, n.state.color.Clamped())
}

// IsCurrentlyVisible reports whether the node and all its ancestors were
// visible in the last tick.
func (n *Node) IsCurrentlyVisible() bool {
	return readWorld(n, &n.sn.worldVisible, false)
}

// CurrentClipInfo returns the clipping state assigned in the last tick.
func (n *Node) CurrentClipInfo() ClipInfo {
	return readWorld(n, &n.sn.clip, ClipInfo{BitPlane: -1})
}

// --- Indexed property access ---

// PropertyIndex names a node property for generic access, animation and
// constraints.
type PropertyIndex uint8

const (
	PropertyPosition PropertyIndex = iota
	PropertyOrientation
	PropertyScale
	PropertySize
	PropertyColor
	PropertyOpacity
	PropertyVisible
	PropertyAnchorPoint
	PropertyParentOrigin
	PropertyName
	PropertySiblingOrder
	PropertyColorMode
	PropertyClippingMode
	PropertyDrawMode
	PropertyInheritPosition
	PropertyInheritOrientation
	PropertyInheritScale
	PropertyPositionUsesAnchorPoint
	PropertyInheritLayoutDirection
	PropertyLayoutDirection
	PropertyChildrenDepthIndexPolicy
	PropertyUpdateAreaHint
	PropertyWorldPosition
	PropertyWorldOrientation
	PropertyWorldScale
	PropertyWorldColor
	PropertyWorldMatrix
	PropertyScreenPosition
	propertyCount
)

var propertyNames = [propertyCount]string{
	"position", "orientation", "scale", "size", "color", "opacity", "visible",
	"anchorPoint", "parentOrigin", "name", "siblingOrder", "colorMode",
	"clippingMode", "drawMode", "inheritPosition", "inheritOrientation",
	"inheritScale", "positionUsesAnchorPoint", "inheritLayoutDirection",
	"layoutDirection", "childrenDepthIndexPolicy", "updateAreaHint",
	"worldPosition", "worldOrientation", "worldScale", "worldColor",
	"worldMatrix", "screenPosition",
}

func (p PropertyIndex) String() string {
	if p < propertyCount {
		return propertyNames[p]
	}
	return fmt.Sprintf("PropertyIndex(%d)", uint8(p))
}

// Animatable reports whether the property can be animated or constrained.
func (p PropertyIndex) Animatable() bool {
	return p <= PropertyVisible
}

// ReadOnly reports whether the property is computed by the update pass.
func (p PropertyIndex) ReadOnly() bool {
	return p >= PropertyWorldPosition && p < propertyCount
}

// SetProperty writes a property by index. Type mismatches, unknown indices
// and computed properties are rejected without changing the node.
func (n *Node) SetProperty(p PropertyIndex, v Value) error {
	if p >= propertyCount {
		return fmt.Errorf("stage: set property %d on %q: %w", p, n.Name, ErrUnknownProperty)
	}
	if p.ReadOnly() {
		return fmt.Errorf("stage: set %s on %q: %w", p, n.Name, ErrReadOnlyProperty)
	}
	if n.scene != nil && !n.scene.clock.running.Load() {
		return fmt.Errorf("stage: set %s on %q: %w", p, n.Name, ErrNotRunning)
	}
	var err error
	switch p {
	case PropertyPosition:
		err = withValue(v.Vector3, n.SetPosition)
	case PropertyOrientation:
		err = withValue(v.Quaternion, n.SetOrientation)
	case PropertyScale:
		err = withValue(v.Vector3, n.SetScale)
	case PropertySize:
		err = withValue(v.Vector3, n.SetSize)
	case PropertyColor:
		err = withValue(v.Color, n.SetColor)
	case PropertyOpacity:
		err = withValue(v.Float, n.SetOpacity)
	case PropertyVisible:
		err = withValue(v.Bool, n.SetVisible)
	case PropertyAnchorPoint:
		err = withValue(v.Vector3, n.SetAnchorPoint)
	case PropertyParentOrigin:
		err = withValue(v.Vector3, n.SetParentOrigin)
	case PropertyName:
		err = withValue(v.Str, func(s string) { n.Name = s })
	case PropertySiblingOrder:
		err = withValue(v.Int, n.SetSiblingOrder)
	case PropertyColorMode:
		err = withValue(v.Int, func(i int) { n.SetColorMode(ColorMode(i)) })
	case PropertyClippingMode:
		err = withValue(v.Int, func(i int) { n.SetClippingMode(ClippingMode(i)) })
	case PropertyDrawMode:
		err = withValue(v.Int, func(i int) { n.SetDrawMode(DrawMode(i)) })
	case PropertyInheritPosition:
		err = withValue(v.Bool, n.SetInheritPosition)
	case PropertyInheritOrientation:
		err = withValue(v.Bool, n.SetInheritOrientation)
	case PropertyInheritScale:
		err = withValue(v.Bool, n.SetInheritScale)
	case PropertyPositionUsesAnchorPoint:
		err = withValue(v.Bool, n.SetPositionUsesAnchorPoint)
	case PropertyInheritLayoutDirection:
		err = withValue(v.Bool, n.SetInheritLayoutDirection)
	case PropertyLayoutDirection:
		err = withValue(v.Int, func(i int) { n.SetLayoutDirection(LayoutDirection(i)) })
	case PropertyChildrenDepthIndexPolicy:
		err = withValue(v.Int, func(i int) { n.SetChildrenDepthIndexPolicy(DepthIndexPolicy(i)) })
	case PropertyUpdateAreaHint:
		err = withValue(v.Vector4, n.SetUpdateAreaHint)
	}
	if err != nil {
		return fmt.Errorf("stage: set %s on %q: %w", p, n.Name, err)
	}
	return nil
}

func withValue[T any](get func() (T, error), set func(T)) error {
	x, err := get()
	if err != nil {
		return err
	}
	set(x)
	return nil
}

// Property returns the target value of a property. Computed properties
// return their published value.
func (n *Node) Property(p PropertyIndex) (Value, error) {
	switch p {
	case PropertyPosition:
		return Vector3Value(n.state.position), nil
	case PropertyOrientation:
		return QuaternionValue(n.state.orientation), nil
	case PropertyScale:
		return Vector3Value(n.state.scale), nil
	case PropertySize:
		return Vector3Value(n.state.size), nil
	case PropertyColor:
		return ColorValue(n.state.color), nil
	case PropertyOpacity:
		return FloatValue(n.state.color.A), nil
	case PropertyVisible:
		return BoolValue(n.state.visible), nil
	case PropertyAnchorPoint:
		return Vector3Value(n.state.anchorPoint), nil
	case PropertyParentOrigin:
		return Vector3Value(n.state.parentOrigin), nil
	case PropertyName:
		return StringValue(n.Name), nil
	case PropertySiblingOrder:
		return IntValue(n.SiblingOrder()), nil
	case PropertyColorMode:
		return EnumValue(int(n.state.colorMode)), nil
	case PropertyClippingMode:
		return EnumValue(int(n.state.clippingMode)), nil
	case PropertyDrawMode:
		return EnumValue(int(n.state.drawMode)), nil
	case PropertyInheritPosition:
		return BoolValue(n.state.inheritPosition), nil
	case PropertyInheritOrientation:
		return BoolValue(n.state.inheritOrientation), nil
	case PropertyInheritScale:
		return BoolValue(n.state.inheritScale), nil
	case PropertyPositionUsesAnchorPoint:
		return BoolValue(n.state.positionUsesAnchorPoint), nil
	case PropertyInheritLayoutDirection:
		return BoolValue(n.inheritLayoutDirection), nil
	case PropertyLayoutDirection:
		return EnumValue(int(n.layoutDirection)), nil
	case PropertyChildrenDepthIndexPolicy:
		return EnumValue(int(n.depthPolicy)), nil
	case PropertyUpdateAreaHint:
		return Vector4Value(n.state.updateAreaHint), nil
	}
	return n.CurrentProperty(p)
}

// CurrentProperty returns the value published by the last tick. Properties
// that are not double-buffered return their target value.
func (n *Node) CurrentProperty(p PropertyIndex) (Value, error) {
	switch p {
	case PropertyPosition:
		return Vector3Value(n.CurrentPosition()), nil
	case PropertyOrientation:
		return QuaternionValue(n.CurrentOrientation()), nil
	case PropertyScale:
		return Vector3Value(n.CurrentScale()), nil
	case PropertySize:
		return Vector3Value(n.CurrentSize()), nil
	case PropertyColor:
		return ColorValue(n.CurrentColor()), nil
	case PropertyOpacity:
		return FloatValue(n.CurrentColor().A), nil
	case PropertyVisible:
		return BoolValue(n.CurrentVisible()), nil
	case PropertyWorldPosition:
		return Vector3Value(n.CurrentWorldPosition()), nil
	case PropertyWorldOrientation:
		return QuaternionValue(n.CurrentWorldOrientation()), nil
	case PropertyWorldScale:
		return Vector3Value(n.CurrentWorldScale()), nil
	case PropertyWorldColor:
		return ColorValue(n.CurrentWorldColor()), nil
	case PropertyWorldMatrix:
		return MatrixValue(n.CurrentWorldMatrix()), nil
	case PropertyScreenPosition:
		return Vector2Value(n.CurrentScreenPosition()), nil
	}
	if p < propertyCount {
		return n.Property(p)
	}
	return Value{}, fmt.Errorf("stage: property %d of %q: %w", p, n.Name, ErrUnknownProperty)
}
