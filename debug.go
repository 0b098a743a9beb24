package stage

import (
	"time"
)

// debugStats holds per-tick timings and counts.
// Only populated in debug mode.
type debugStats struct {
	prepareTime  time.Duration
	resolveTime  time.Duration
	collectTime  time.Duration
	damageTime   time.Duration
	messageCount int
	itemCount    int
	listCount    int
	damageRects  int
}

// debugLog logs timing and count stats at debug level.
func (s *Scene) debugLog(frame uint64, stats debugStats) {
	total := stats.prepareTime + stats.resolveTime + stats.collectTime + stats.damageTime
	Logger().Debug("stage: tick",
		"frame", frame,
		"prepare", stats.prepareTime,
		"resolve", stats.resolveTime,
		"collect", stats.collectTime,
		"damage", stats.damageTime,
		"total", total,
		"messages", stats.messageCount,
		"items", stats.itemCount,
		"lists", stats.listCount,
		"damageRects", stats.damageRects,
	)
}

// debugMaxTreeDepth is the tree depth above which a warning is logged.
const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if n is deeper than debugMaxTreeDepth.
func debugCheckTreeDepth(n *Node) {
	if !globalDebug.Load() {
		return
	}
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("stage: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugMaxChildCount is the child count above which a warning is logged.
const debugMaxChildCount = 1000

// debugCheckChildCount warns if n has more than debugMaxChildCount children.
func debugCheckChildCount(n *Node) {
	if !globalDebug.Load() {
		return
	}
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("stage: node has many children",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
