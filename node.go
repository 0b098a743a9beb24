package stage

import (
	"fmt"
	"sync/atomic"
)

// ColorMode selects how a node's world color is derived from its parent.
type ColorMode uint8

const (
	// UseOwnColor ignores the parent color.
	UseOwnColor ColorMode = iota
	// UseParentColor copies the parent's world color.
	UseParentColor
	// UseOwnMultiplyParentColor multiplies own and parent color.
	UseOwnMultiplyParentColor
	// UseOwnMultiplyParentAlpha keeps own RGB and multiplies alpha. Default.
	UseOwnMultiplyParentAlpha
)

// ClippingMode selects how a node clips its descendants.
type ClippingMode uint8

const (
	ClippingDisabled ClippingMode = iota
	// ClipChildren clips descendants to the node's area using a stencil
	// bit-plane.
	ClipChildren
	// ClipToBoundingBox clips descendants to the node's screen-space
	// bounding box using a scissor rectangle.
	ClipToBoundingBox
)

// DrawMode selects how a node and its descendants are ordered.
type DrawMode uint8

const (
	DrawNormal DrawMode = iota
	// DrawOverlay2D draws the subtree after all normal nodes of its layer.
	DrawOverlay2D
)

// DepthIndexPolicy selects how a parent distributes depth indices over its
// children.
type DepthIndexPolicy uint8

const (
	// DepthIndexIncrease gives every child a greater depth than its previous
	// sibling's whole subtree. Default.
	DepthIndexIncrease DepthIndexPolicy = iota
	// DepthIndexEqual gives every child the same base depth.
	DepthIndexEqual
)

// LayoutDirection is the horizontal layout direction of a node.
type LayoutDirection uint8

const (
	LeftToRight LayoutDirection = iota
	RightToLeft
)

// LayerBehavior selects how a layer is rendered.
type LayerBehavior uint8

const (
	// LayerUI is a 2D layer ordered by depth index. Default.
	LayerUI LayerBehavior = iota
	// Layer3D is a 3D layer. Changes inside it force a full redraw.
	Layer3D
)

// nodeIDCounter hands out unique IDs. Nodes may be created from any
// goroutine, so it is atomic.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// nodeState is the event-side copy of every settable attribute. Setters write
// it immediately; the update side receives it through messages.
type nodeState struct {
	position     Vector3
	orientation  Quaternion
	scale        Vector3
	size         Vector3
	color        Color
	visible      bool
	anchorPoint  Vector3
	parentOrigin Vector3

	inheritPosition         bool
	inheritOrientation      bool
	inheritScale            bool
	positionUsesAnchorPoint bool
	colorMode               ColorMode
	clippingMode            ClippingMode
	drawMode                DrawMode
	updateAreaHint          Vector4
	hasUpdateAreaHint       bool
}

func defaultNodeState() nodeState {
	return nodeState{
		orientation:             QuaternionIdentity,
		scale:                   One3,
		color:                   ColorWhite,
		visible:                 true,
		anchorPoint:             Center,
		parentOrigin:            TopLeft,
		inheritPosition:         true,
		inheritOrientation:      true,
		inheritScale:            true,
		positionUsesAnchorPoint: true,
		colorMode:               UseOwnMultiplyParentAlpha,
	}
}

// Node is an element of the scene graph. Its methods belong to the event
// side: call them from one goroutine (the producer). Mutations of a node that
// is on a running scene are queued and take effect on the next update tick;
// Current* getters return the values published by the last tick.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	parent   *Node
	children []*Node
	scene    *Scene
	isRoot   bool

	isLayer       bool
	layerBehavior LayerBehavior

	state     nodeState
	renderers []Renderer

	depthPolicy            DepthIndexPolicy
	inheritLayoutDirection bool
	layoutDirection        LayoutDirection

	sortedDepth int

	sn *sceneNode

	// Metadata
	UserData any

	// Signals (nil by default). Handlers may read the tree; tree mutations
	// they request are deferred to the next Scene.Commit.
	OnStage                  func(n *Node)
	OffStage                 func(n *Node)
	OnVisibilityChanged      func(change VisibilityChange)
	OnChildAdded             func(child *Node)
	OnChildRemoved           func(child *Node)
	OnChildOrderChanged      func(child *Node)
	OnLayoutDirectionChanged func(n *Node, dir LayoutDirection)
}

// NewNode creates a detached node with default properties: anchor point
// CENTER, parent origin TOP_LEFT, unit scale, white color, visible, full
// inheritance.
func NewNode(name string) *Node {
	n := &Node{
		ID:                     nextNodeID(),
		Name:                   name,
		state:                  defaultNodeState(),
		inheritLayoutDirection: true,
		sortedDepth:            -1,
	}
	n.sn = newSceneNode(n.ID, name, n.state)
	return n
}

// NewLayer creates a detached layer node. Nodes below a layer (up to the next
// nested layer) are rendered in that layer's render list.
func NewLayer(name string, behavior LayerBehavior) *Node {
	n := NewNode(name)
	n.isLayer = true
	n.layerBehavior = behavior
	n.sn.layer = true
	n.sn.layerBehavior = behavior
	return n
}

// IsLayer reports whether the node is a layer.
func (n *Node) IsLayer() bool { return n.isLayer }

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Scene returns the scene the node is on, or nil when it is off stage.
func (n *Node) Scene() *Scene { return n.scene }

// OnScene reports whether the node is connected to a scene.
func (n *Node) OnScene() bool { return n.scene != nil }

// --- Tree manipulation ---

// AddChild appends child to this node's children. A child that already has
// a different parent is removed from it first. Adding a child to its current
// parent is a no-op.
func (n *Node) AddChild(child *Node) error {
	return n.AddChildAt(child, len(n.children))
}

// AddChildAt inserts child at index among the children. The index is clamped
// to the valid range.
func (n *Node) AddChildAt(child *Node, index int) error {
	if child == nil {
		return fmt.Errorf("stage: add child to %q: %w", n.Name, ErrNilNode)
	}
	if child == n {
		return fmt.Errorf("stage: add %q: %w", n.Name, ErrAddSelf)
	}
	if child.isRoot {
		return fmt.Errorf("stage: add %q: %w", child.Name, ErrRootReparent)
	}
	if isAncestor(child, n) {
		return fmt.Errorf("stage: add %q to %q: %w", child.Name, n.Name, ErrCycle)
	}
	if n.scene.deferMutation(func() { _ = n.AddChildAt(child, index) }) {
		return nil
	}
	if child.parent == n {
		return nil
	}
	if child.parent != nil {
		child.parent.detachChild(child)
	}

	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child

	if n.scene != nil {
		child.connect(n.scene)
		n.syncChildren()
		n.scene.requestDepthRebuild()
	}
	debugCheckTreeDepth(child)
	debugCheckChildCount(n)
	n.emit(func() {
		propagateLayoutDirection(child, n.layoutDirection, false)
		if n.OnChildAdded != nil {
			n.OnChildAdded(child)
		}
		if child.scene != nil {
			emitOnStage(child)
		}
	})
	return nil
}

// RemoveChild detaches child from this node. Removing a node that is not a
// child is a no-op.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil {
		return fmt.Errorf("stage: remove child from %q: %w", n.Name, ErrNilNode)
	}
	if child.parent != n {
		return nil
	}
	if n.scene.deferMutation(func() { _ = n.RemoveChild(child) }) {
		return nil
	}
	n.detachChild(child)
	return nil
}

// Unparent detaches this node from its parent. No-op when the node has no
// parent.
func (n *Node) Unparent() {
	if n.parent == nil {
		return
	}
	_ = n.parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
func (n *Node) RemoveChildren() {
	if n.scene.deferMutation(n.RemoveChildren) {
		return
	}
	for len(n.children) > 0 {
		n.detachChild(n.children[len(n.children)-1])
	}
}

// detachChild removes child, disconnects it from the scene and emits the
// removal signals.
func (n *Node) detachChild(child *Node) {
	n.removeChildByPtr(child)
	child.parent = nil
	onScene := n.scene != nil
	if onScene {
		child.disconnect()
		n.syncChildren()
		n.scene.requestDepthRebuild()
	}
	n.emit(func() {
		if n.OnChildRemoved != nil {
			n.OnChildRemoved(child)
		}
		if onScene {
			emitOffStage(child)
		}
	})
}

// Children returns the child list in sibling order. The returned slice MUST
// NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at index, or nil when out of range.
func (n *Node) ChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// FindChildByName searches the subtree (including n) depth-first.
func (n *Node) FindChildByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindChildByName(name); found != nil {
			return found
		}
	}
	return nil
}

// FindChildByID searches the subtree (including n) depth-first.
func (n *Node) FindChildByID(id uint32) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.children {
		if found := c.FindChildByID(id); found != nil {
			return found
		}
	}
	return nil
}

// HierarchyDepth returns the number of ancestors between n and its scene's
// root (the root itself is 0), or -1 when the node is off stage.
func (n *Node) HierarchyDepth() int {
	if n.scene == nil {
		return -1
	}
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// SortedDepth returns the flattened draw-order key computed at the last
// commit, or -1 when the node is off stage or no commit happened yet.
func (n *Node) SortedDepth() int {
	if n.scene == nil {
		return -1
	}
	return n.sortedDepth
}

// --- Scene connection ---

// connect attaches the subtree rooted at n to s, parents first.
func (n *Node) connect(s *Scene) {
	n.scene = s
	sn := n.sn
	snapshot := n.state
	renderers := append([]Renderer(nil), n.renderers...)
	s.post(func() {
		sn.attach(s.clock, snapshot, renderers)
	})
	for _, c := range n.children {
		c.connect(s)
	}
	if len(n.children) > 0 {
		n.syncChildren()
	}
}

// disconnect detaches the subtree rooted at n from its scene.
func (n *Node) disconnect() {
	s := n.scene
	sn := n.sn
	s.post(func() {
		sn.detach()
	})
	n.clearScene()
}

func (n *Node) clearScene() {
	n.scene = nil
	n.sortedDepth = -1
	for _, c := range n.children {
		c.clearScene()
	}
}

// syncChildren sends the current child order to the update side.
func (n *Node) syncChildren() {
	if n.scene == nil {
		return
	}
	parent := n.sn
	list := make([]*sceneNode, len(n.children))
	for i, c := range n.children {
		list[i] = c.sn
	}
	n.scene.post(func() {
		parent.setChildren(list)
	})
}

// --- Renderers ---

// AddRenderer attaches r and returns its index.
func (n *Node) AddRenderer(r Renderer) (int, error) {
	if r == nil {
		return -1, fmt.Errorf("stage: add renderer to %q: nil renderer", n.Name)
	}
	n.renderers = append(n.renderers, r)
	n.syncRenderers()
	return len(n.renderers) - 1, nil
}

// RemoveRenderer detaches r. No-op when r is not attached.
func (n *Node) RemoveRenderer(r Renderer) {
	for i, cur := range n.renderers {
		if cur == r {
			copy(n.renderers[i:], n.renderers[i+1:])
			n.renderers[len(n.renderers)-1] = nil
			n.renderers = n.renderers[:len(n.renderers)-1]
			n.syncRenderers()
			return
		}
	}
}

// RendererAt returns the renderer at index.
func (n *Node) RendererAt(index int) (Renderer, error) {
	if index < 0 || index >= len(n.renderers) {
		return nil, fmt.Errorf("stage: renderer %d of %q (count %d): %w", index, n.Name, len(n.renderers), ErrRendererIndex)
	}
	return n.renderers[index], nil
}

// RendererCount returns the number of attached renderers.
func (n *Node) RendererCount() int { return len(n.renderers) }

func (n *Node) syncRenderers() {
	if n.scene == nil {
		return
	}
	sn := n.sn
	list := append([]Renderer(nil), n.renderers...)
	n.scene.post(func() {
		sn.renderers = list
		sn.structureDirty = true
	})
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// indexOf returns the position of child among n's children, or -1.
func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
