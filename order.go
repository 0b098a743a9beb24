package stage

// SiblingOrderMultiplier spaces the sorted depths of consecutive nodes so
// that renderer depth indices can order drawables within one node.
const SiblingOrderMultiplier = 1000

// SiblingOrder returns the node's index among its siblings, or 0 when it has
// no parent.
func (n *Node) SiblingOrder() int {
	if n.parent == nil {
		return 0
	}
	return n.parent.indexOf(n)
}

// SetSiblingOrder moves the node to position order among its siblings.
// Orders past the end move it to the top.
func (n *Node) SetSiblingOrder(order int) {
	if n.parent == nil {
		return
	}
	if order < 0 {
		order = 0
	}
	siblings := n.parent.children
	current := n.SiblingOrder()
	if order == current {
		return
	}
	switch {
	case order == 0:
		n.LowerToBottom()
	case order < len(siblings)-1:
		if order > current {
			n.RaiseAbove(siblings[order])
		} else {
			n.LowerBelow(siblings[order])
		}
	default:
		n.RaiseToTop()
	}
}

// reorder runs fn on the parent's child list and notifies the parent. Nodes
// without a parent log a warning and do nothing.
func (n *Node) reorder(op string, fn func(siblings []*Node) bool) {
	p := n.parent
	if p == nil {
		Logger().Warn("stage: node must have a parent, sibling order not changed", "op", op, "node", n.Name)
		return
	}
	if p.scene.deferMutation(func() { n.reorder(op, fn) }) {
		return
	}
	if !fn(p.children) {
		return
	}
	if p.scene != nil {
		p.syncChildren()
		p.scene.requestDepthRebuild()
	}
	p.emit(func() {
		if p.OnChildOrderChanged != nil {
			p.OnChildOrderChanged(n)
		}
	})
}

// Raise moves the node one position up among its siblings.
func (n *Node) Raise() {
	n.reorder("Raise", func(s []*Node) bool {
		if i := indexIn(s, n); i >= 0 && i < len(s)-1 {
			s[i], s[i+1] = s[i+1], s[i]
		}
		return true
	})
}

// Lower moves the node one position down among its siblings.
func (n *Node) Lower() {
	n.reorder("Lower", func(s []*Node) bool {
		if i := indexIn(s, n); i > 0 {
			s[i], s[i-1] = s[i-1], s[i]
		}
		return true
	})
}

// RaiseToTop moves the node above all its siblings.
func (n *Node) RaiseToTop() {
	n.reorder("RaiseToTop", func(s []*Node) bool {
		if i := indexIn(s, n); i >= 0 {
			moveTo(s, i, len(s)-1)
		}
		return true
	})
}

// LowerToBottom moves the node below all its siblings.
func (n *Node) LowerToBottom() {
	n.reorder("LowerToBottom", func(s []*Node) bool {
		if i := indexIn(s, n); i >= 0 {
			moveTo(s, i, 0)
		}
		return true
	})
}

// RaiseAbove moves the node directly above target. Nothing happens when the
// node is already at the top or target has a different parent. Raising a
// node above itself keeps the order but still notifies.
func (n *Node) RaiseAbove(target *Node) {
	n.reorder("RaiseAbove", func(s []*Node) bool {
		if target == nil || target.parent != n.parent || s[len(s)-1] == n {
			return false
		}
		i, t := indexIn(s, n), indexIn(s, target)
		if i < t {
			moveTo(s, i, t)
		}
		return true
	})
}

// LowerBelow moves the node directly below target. Nothing happens when the
// node is already at the bottom or target has a different parent. Lowering a
// node below itself keeps the order but still notifies.
func (n *Node) LowerBelow(target *Node) {
	n.reorder("LowerBelow", func(s []*Node) bool {
		if target == nil || target.parent != n.parent || s[0] == n {
			return false
		}
		i, t := indexIn(s, n), indexIn(s, target)
		if i > t {
			moveTo(s, i, t)
		}
		return true
	})
}

func indexIn(s []*Node, n *Node) int {
	for i, c := range s {
		if c == n {
			return i
		}
	}
	return -1
}

// moveTo moves s[from] to index to, shifting the elements in between.
func moveTo(s []*Node, from, to int) {
	n := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = n
}

// --- Depth tree ---

type depthAssignment struct {
	sn    *sceneNode
	depth int
}

// buildDepthTree assigns sorted depths to the subtree rooted at n in
// pre-order. counter is the depth index of n; on return it holds the last
// index used by the subtree.
func buildDepthTree(n *Node, counter *int, out []depthAssignment) []depthAssignment {
	n.sortedDepth = *counter * SiblingOrderMultiplier
	out = append(out, depthAssignment{n.sn, n.sortedDepth})
	switch n.depthPolicy {
	case DepthIndexEqual:
		base := *counter + 1
		last := *counter
		for _, c := range n.children {
			k := base
			out = buildDepthTree(c, &k, out)
			if k > last {
				last = k
			}
		}
		*counter = last
	default:
		for _, c := range n.children {
			*counter++
			out = buildDepthTree(c, counter, out)
		}
	}
	return out
}
