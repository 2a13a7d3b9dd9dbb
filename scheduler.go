package canopy

import "sort"

// RenderCallbackID is the reserved frame-callback key. The callback under it
// always runs last in a pass.
const RenderCallbackID = "render"

// FrameCallback is invoked once per frame pass. timestamp is in
// milliseconds; frame is whatever the driver passes (an AR frame, the ebiten
// screen, or nil).
type FrameCallback func(timestamp float64, frame any)

type pendingOp struct {
	id    string
	cb    FrameCallback // nil means deregister
	clear bool
}

// FrameScheduler holds keyed per-frame callbacks. Keys run in ascending
// order with RenderCallbackID last. Registration changes made during a pass
// are queued in call order and take effect before the next pass.
type FrameScheduler struct {
	callbacks map[string]FrameCallback
	order     []string
	dirty     bool

	running bool
	pending []pendingOp
}

// NewFrameScheduler returns an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{callbacks: make(map[string]FrameCallback)}
}

// Register adds or replaces the callback for id. A nil cb deregisters.
func (f *FrameScheduler) Register(id string, cb FrameCallback) {
	if f.running {
		f.pending = append(f.pending, pendingOp{id: id, cb: cb})
		return
	}
	f.set(id, cb)
}

// Deregister removes the callback for id. No-op if absent.
func (f *FrameScheduler) Deregister(id string) {
	if f.running {
		f.pending = append(f.pending, pendingOp{id: id})
		return
	}
	f.set(id, nil)
}

func (f *FrameScheduler) set(id string, cb FrameCallback) {
	_, had := f.callbacks[id]
	if cb == nil {
		if had {
			delete(f.callbacks, id)
			f.dirty = true
		}
		return
	}
	f.callbacks[id] = cb
	if !had {
		f.dirty = true
	}
}

// Has reports whether a callback is registered for id, including queued
// changes not yet applied.
func (f *FrameScheduler) Has(id string) bool {
	_, ok := f.callbacks[id]
	for _, op := range f.pending {
		switch {
		case op.clear:
			ok = false
		case op.id == id:
			ok = op.cb != nil
		}
	}
	return ok
}

// Len returns the number of registered callbacks.
func (f *FrameScheduler) Len() int {
	return len(f.callbacks)
}

// Keys returns the callback keys in execution order.
func (f *FrameScheduler) Keys() []string {
	f.sortKeys()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *FrameScheduler) sortKeys() {
	if !f.dirty {
		return
	}
	f.order = f.order[:0]
	for id := range f.callbacks {
		f.order = append(f.order, id)
	}
	sort.Slice(f.order, func(i, j int) bool {
		a, b := f.order[i], f.order[j]
		if a == RenderCallbackID {
			return false
		}
		if b == RenderCallbackID {
			return true
		}
		return a < b
	})
	f.dirty = false
}

// flush applies queued registration changes.
func (f *FrameScheduler) flush() {
	ops := f.pending
	f.pending = nil
	for _, op := range ops {
		if op.clear {
			f.reset()
			continue
		}
		f.set(op.id, op.cb)
	}
}

// Run invokes every callback once, in order, and returns how many ran.
// A callback that panics aborts the pass; queued changes are still applied.
func (f *FrameScheduler) Run(timestamp float64, frame any) int {
	if f.running {
		panic("canopy: frame pass already running")
	}
	f.flush()
	f.sortKeys()

	// Iterate a snapshot; callbacks removed mid-pass still run this pass.
	snapshot := make([]FrameCallback, len(f.order))
	for i, id := range f.order {
		snapshot[i] = f.callbacks[id]
	}

	f.running = true
	defer func() {
		f.running = false
		f.flush()
	}()
	for _, cb := range snapshot {
		cb(timestamp, frame)
	}
	return len(snapshot)
}

// Clear removes every callback. During a pass the removal is queued like a
// deregistration; registrations queued after it still apply.
func (f *FrameScheduler) Clear() {
	if f.running {
		f.pending = append(f.pending, pendingOp{clear: true})
		return
	}
	f.pending = nil
	f.reset()
}

func (f *FrameScheduler) reset() {
	f.callbacks = make(map[string]FrameCallback)
	f.order = f.order[:0]
	f.dirty = false
}
