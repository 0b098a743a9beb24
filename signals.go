package stage

// VisibilityChangeType tells whether a visibility change was made on the
// receiving node itself or on one of its ancestors.
type VisibilityChangeType uint8

const (
	VisibilitySelf VisibilityChangeType = iota
	VisibilityParent
)

// VisibilityChange is passed to OnVisibilityChanged.
type VisibilityChange struct {
	// Node receives the notification.
	Node *Node
	// Changed is the node whose visible property was written.
	Changed *Node
	Visible bool
	Type    VisibilityChangeType
}

// emit runs fn as a notification. While it runs, tree mutations on the
// node's scene are deferred to the next commit.
func (n *Node) emit(fn func()) {
	s := n.scene
	if s == nil {
		fn()
		return
	}
	s.notifying++
	defer func() { s.notifying-- }()
	fn()
}

// emitOnStage notifies the subtree, parents first.
func emitOnStage(n *Node) {
	if n.OnStage != nil {
		n.OnStage(n)
	}
	for _, c := range snapshotChildren(n) {
		emitOnStage(c)
	}
}

// emitOffStage notifies the subtree, children first.
func emitOffStage(n *Node) {
	for _, c := range snapshotChildren(n) {
		emitOffStage(c)
	}
	if n.OffStage != nil {
		n.OffStage(n)
	}
}

// emitVisibilityChanged notifies changed with VisibilitySelf and every
// descendant with VisibilityParent.
func emitVisibilityChanged(changed *Node, visible bool) {
	var walk func(n *Node, typ VisibilityChangeType)
	walk = func(n *Node, typ VisibilityChangeType) {
		if n.OnVisibilityChanged != nil {
			n.OnVisibilityChanged(VisibilityChange{Node: n, Changed: changed, Visible: visible, Type: typ})
		}
		for _, c := range snapshotChildren(n) {
			walk(c, VisibilityParent)
		}
	}
	walk(changed, VisibilitySelf)
}

// snapshotChildren copies the child list so handlers on off-stage trees can
// mutate it safely.
func snapshotChildren(n *Node) []*Node {
	if len(n.children) == 0 {
		return nil
	}
	return append([]*Node(nil), n.children...)
}
