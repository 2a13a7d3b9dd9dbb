package canopy

import (
	"fmt"
	"time"
)

// debugStats holds per-pass timing. Only populated when Store.debug is true.
type debugStats struct {
	drainTime     time.Duration
	callbackTime  time.Duration
	callbackCount int
	instanceCount int
	interactive   int
}

// debugLog reports pass stats at Debug level.
func (s *Store) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	Logger().Debug("canopy: frame",
		"input", stats.drainTime,
		"callbacks", stats.callbackTime,
		"total", stats.drainTime+stats.callbackTime,
		"callbackCount", stats.callbackCount,
		"instances", stats.instanceCount,
		"interactive", stats.interactive)
}

// debugCheckDisposed panics with a descriptive message when a disposed
// instance is used in a tree operation. Callers skip it outside debug mode.
func debugCheckDisposed(inst *Instance, op string) {
	if inst.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed instance %q (ID was %d)", op, inst.Type, inst.ID))
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if attaching child under parent makes the tree
// deeper than debugMaxTreeDepth. Subtrees are mounted before they are
// attached, so the child's own height counts too.
func debugCheckTreeDepth(parent, child *Instance) {
	depth := subtreeHeight(child)
	for p := parent; p != nil; p = p.Parent() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("canopy: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "type", child.Type, "key", child.Key)
	}
}

func subtreeHeight(inst *Instance) int {
	h := 0
	for _, c := range inst.Children() {
		h = max(h, subtreeHeight(c))
	}
	return h + 1
}

const debugMaxChildCount = 1000

// debugCheckChildCount warns if inst has more than debugMaxChildCount children.
func debugCheckChildCount(inst *Instance) {
	if len(inst.children) > debugMaxChildCount {
		Logger().Warn("canopy: child count exceeds threshold",
			"type", inst.Type, "children", len(inst.children), "threshold", debugMaxChildCount)
	}
}
