package stage

// centerOffset returns the vector from the node's position to its center.
//
//	(0.5 - anchor) * size * scale, rotated by the node's orientation
//
// When the position places the top-left corner instead of the anchor point,
// the anchor's offset from the top-left corner is removed again.
func centerOffset(anchor, size, scale Vector3, orientation Quaternion, usesAnchor bool) Vector3 {
	c := orientation.Rotate(half.Sub(anchor).Mul(size).Mul(scale))
	if !usesAnchor {
		c = c.Sub(TopLeft.Sub(anchor).Mul(size))
	}
	return c
}

// parentOriginOffset returns the offset of the parent-origin point from the
// parent's center.
func parentOriginOffset(origin, parentSize Vector3) Vector3 {
	return origin.Sub(half).Mul(parentSize)
}

// localMatrix composes the node's own transform for an event-side state
// with the given parent size.
func localMatrix(st *nodeState, parentSize Vector3) Matrix {
	t := st.position.
		Add(centerOffset(st.anchorPoint, st.size, st.scale, st.orientation, st.positionUsesAnchorPoint)).
		Add(parentOriginOffset(st.parentOrigin, parentSize))
	return composeMatrix(st.scale, st.orientation, t)
}

// resolveWorld computes the world matrix, color and visibility of sn from
// its parent's values for the tick being written, then recurses. Every node
// is recomputed each tick so both buffers stay consistent.
func resolveWorld(sn *sceneNode, c *frameClock) {
	pos := sn.position.updating()
	rot := sn.orientation.updating()
	scale := sn.scale.updating()
	size := sn.size.updating()
	center := centerOffset(sn.anchorPoint, size, scale, rot, sn.positionUsesAnchorPoint)

	p := sn.parent
	var world Matrix
	if p == nil {
		world = composeMatrix(scale, rot, pos.Add(center))
		sn.worldColor.set(c, sn.color.updating().Clamped())
		sn.worldVisible.set(c, sn.visible.updating())
	} else {
		parentWorld := p.worldMatrix.updating(c)
		local := pos.Add(center).Add(parentOriginOffset(sn.parentOrigin, p.size.updating()))
		world = inheritTransform(parentWorld, scale, rot, local, sn.inheritPosition, sn.inheritOrientation, sn.inheritScale)
		sn.worldColor.set(c, worldColor(sn.colorMode, sn.color.updating(), p.worldColor.updating(c)))
		sn.worldVisible.set(c, p.worldVisible.updating(c) && sn.visible.updating())
	}
	sn.worldMatrix.set(c, world)

	for _, child := range sn.children {
		resolveWorld(child, c)
	}
}

// inheritTransform applies the parent's world matrix to a local transform,
// honoring the partial inheritance flags. With full inheritance the result
// is parent * local. Otherwise the parent is decomposed and the parts that
// are not inherited are cancelled out.
func inheritTransform(parent Matrix, scale Vector3, rot Quaternion, local Vector3, inheritPos, inheritRot, inheritScale bool) Matrix {
	if inheritPos && inheritRot && inheritScale {
		return multiplyMatrix(parent, composeMatrix(scale, rot, local))
	}
	parentScale, parentRot, _ := parent.Decompose()
	if !inheritScale {
		scale = scale.Div(parentScale)
	}
	if !inheritRot {
		rot = parentRot.Inverse().Mul(rot)
	}
	if !inheritPos {
		world := multiplyMatrix(parent, composeMatrix(scale, rot, Vector3{}))
		world.SetTranslation(local)
		return world
	}
	return multiplyMatrix(parent, composeMatrix(scale, rot, local))
}

// worldColor combines a node color with its parent's world color. The
// result is clamped to [0,1].
func worldColor(mode ColorMode, own, parent Color) Color {
	var c Color
	switch mode {
	case UseOwnColor:
		c = own
	case UseParentColor:
		c = parent
	case UseOwnMultiplyParentColor:
		c = own.Mul(parent)
	default:
		c = Color{own.R, own.G, own.B, own.A * parent.A}
	}
	return c.Clamped()
}

// --- Coordinate conversion ---

// LocalToWorld converts a point in the node's local space (origin at its
// center) to world space using the published world matrix.
func (n *Node) LocalToWorld(p Vector3) Vector3 {
	return n.CurrentWorldMatrix().TransformPoint(p)
}

// WorldToLocal converts a world point into the node's local space. It
// returns the point unchanged when the world matrix is singular.
func (n *Node) WorldToLocal(p Vector3) Vector3 {
	inv, ok := n.CurrentWorldMatrix().Invert()
	if !ok {
		return p
	}
	return inv.TransformPoint(p)
}
