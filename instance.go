package canopy

// InstanceID identifies an instance within its Store's arena. IDs are never
// reused, so a stale ID resolves to nil instead of to a different instance.
type InstanceID uint32

const slotCount = 3 // SlotNone, SlotGeometry, SlotMaterial

// Instance is the retained unit kept in sync with a Description. Structural
// parents and slot occupants are stored as IDs into the Store's arena rather
// than as pointers, which keeps ownership one-directional.
type Instance struct {
	// Identity
	ID   InstanceID
	Type string
	Key  string

	args   Args
	entry  RegistryEntry
	object Object
	store  *Store

	// Hierarchy
	parent   InstanceID
	slot     Slot // slot occupied in parent; SlotNone for structural children
	children []InstanceID
	slots    [slotCount]InstanceID

	// Interaction
	handlers map[string]*Handler
	ref      *Ref

	// Reconciliation bookkeeping
	desc     *Description
	rendered []InstanceID // description-order children, structural and slot

	disposed bool
}

// Object returns the host object.
func (inst *Instance) Object() Object { return inst.object }

// Args returns the constructor arguments the instance was built with.
func (inst *Instance) Args() Args { return inst.args }

// Store returns the owning store.
func (inst *Instance) Store() *Store { return inst.store }

// Category returns the registry category of the instance's type.
func (inst *Instance) Category() Category { return inst.entry.Category }

// IsSlotHost reports whether geometry/material children go into slots.
func (inst *Instance) IsSlotHost() bool { return inst.entry.SlotHost }

// Description returns the last applied description, or nil for the root.
func (inst *Instance) Description() *Description { return inst.desc }

// Prop reads a field from the host object.
func (inst *Instance) Prop(key string) (Value, bool) {
	if inst.object == nil {
		return nil, false
	}
	return inst.object.Prop(key)
}

// Parent returns the structural parent or slot host, or nil.
func (inst *Instance) Parent() *Instance {
	if inst.parent == 0 || inst.store == nil {
		return nil
	}
	return inst.store.instances[inst.parent]
}

// AttachedSlot returns the slot this instance occupies in its parent.
func (inst *Instance) AttachedSlot() Slot { return inst.slot }

// Children returns the structural children in order.
func (inst *Instance) Children() []*Instance {
	out := make([]*Instance, 0, len(inst.children))
	for _, id := range inst.children {
		if c := inst.store.instances[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of structural children.
func (inst *Instance) NumChildren() int {
	return len(inst.children)
}

// ChildAt returns the structural child at index.
func (inst *Instance) ChildAt(index int) *Instance {
	return inst.store.instances[inst.children[index]]
}

// SlotChild returns the occupant of slot s, or nil.
func (inst *Instance) SlotChild(s Slot) *Instance {
	if s == SlotNone || int(s) >= slotCount || inst.slots[s] == 0 {
		return nil
	}
	return inst.store.instances[inst.slots[s]]
}

// HasHandler reports whether an event-handler property is attached for key.
func (inst *Instance) HasHandler(key string) bool {
	_, ok := inst.handlers[key]
	return ok
}

// NumHandlers returns the number of attached event handlers.
func (inst *Instance) NumHandlers() int {
	return len(inst.handlers)
}

// IsDisposed reports whether the instance has been destroyed. A disposed
// instance is a stale reference: it is no longer reachable from the store.
func (inst *Instance) IsDisposed() bool {
	return inst.disposed
}

// --- Tree manipulation ---

// indexOf returns the position of child among the structural children, or -1.
func (inst *Instance) indexOf(child *Instance) int {
	for i, id := range inst.children {
		if id == child.ID {
			return i
		}
	}
	return -1
}

// insertChild places child at index in the structural children, detaching it
// from any previous parent first. Panics if child is nil, foreign, or an
// ancestor of inst.
func (inst *Instance) insertChild(child *Instance, index int) {
	inst.checkAttach(child)
	if child.parent != 0 {
		if p := child.Parent(); p != nil {
			// Moving within the same parent shifts the target index.
			if p == inst && child.slot == SlotNone {
				if old := inst.indexOf(child); old >= 0 && old < index {
					index--
				}
			}
			p.detachChild(child)
		}
	}
	if index < 0 || index > len(inst.children) {
		index = len(inst.children)
	}
	inst.children = append(inst.children, 0)
	copy(inst.children[index+1:], inst.children[index:])
	inst.children[index] = child.ID
	child.parent = inst.ID
	child.slot = SlotNone
	if inst.store.debug {
		debugCheckTreeDepth(inst, child)
		debugCheckChildCount(inst)
	}
}

// setSlot stores child in slot s and returns the previous occupant, which is
// detached but not destroyed.
func (inst *Instance) setSlot(s Slot, child *Instance) *Instance {
	inst.checkAttach(child)
	prev := inst.SlotChild(s)
	if prev == child {
		return nil
	}
	if child.parent != 0 {
		if p := child.Parent(); p != nil {
			p.detachChild(child)
		}
	}
	if prev != nil {
		inst.detachChild(prev)
	}
	inst.slots[s] = child.ID
	child.parent = inst.ID
	child.slot = s
	return prev
}

// detachChild removes child from the structural children or its slot
// without destroying it.
func (inst *Instance) detachChild(child *Instance) {
	if child.parent != inst.ID {
		panic("canopy: child's parent is not this instance")
	}
	if child.slot != SlotNone {
		if inst.slots[child.slot] == child.ID {
			inst.slots[child.slot] = 0
		}
	} else {
		for i, id := range inst.children {
			if id == child.ID {
				copy(inst.children[i:], inst.children[i+1:])
				inst.children = inst.children[:len(inst.children)-1]
				break
			}
		}
	}
	child.parent = 0
	child.slot = SlotNone
}

// detach removes inst from its parent. No-op without a parent.
func (inst *Instance) detach() {
	if p := inst.Parent(); p != nil {
		p.detachChild(inst)
	}
}

func (inst *Instance) checkAttach(child *Instance) {
	if child == nil {
		panic("canopy: cannot attach nil child")
	}
	if child.store != inst.store {
		panic("canopy: child belongs to a different store")
	}
	if inst.store.debug {
		debugCheckDisposed(inst, "attach (parent)")
		debugCheckDisposed(child, "attach (child)")
	}
	if isAncestor(child, inst) {
		panic("canopy: attaching child would create a cycle")
	}
}

// --- Disposal ---

// destroy releases inst and every structural and slot descendant: handlers
// are dropped from the interaction manager, refs receive nil, host objects
// are disposed and IDs leave the arena. The caller detaches inst first.
func (inst *Instance) destroy() {
	if inst.disposed {
		return
	}
	for _, id := range inst.children {
		if c := inst.store.instances[id]; c != nil {
			c.parent = 0
			c.destroy()
		}
	}
	for s := range inst.slots {
		if id := inst.slots[s]; id != 0 {
			if c := inst.store.instances[id]; c != nil {
				c.parent = 0
				c.destroy()
			}
		}
	}
	inst.release()
}

// release disposes inst alone; its children must already have been moved or
// destroyed.
func (inst *Instance) release() {
	if inst.disposed {
		return
	}
	inst.store.interaction.remove(inst)
	inst.handlers = nil
	if inst.ref != nil {
		ref := inst.ref
		inst.ref = nil
		ref.call(nil)
	}
	if inst.object != nil {
		inst.object.Dispose()
	}
	inst.store.forget(inst)
	inst.disposed = true
	inst.children = nil
	inst.slots = [slotCount]InstanceID{}
	inst.rendered = nil
	inst.parent = 0
}

// isAncestor reports whether candidate is inst or one of its ancestors.
func isAncestor(candidate, inst *Instance) bool {
	for p := inst; p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}

// walk visits inst and its structural and slot descendants depth-first.
func (inst *Instance) walk(fn func(*Instance)) {
	fn(inst)
	for s := range inst.slots {
		if c := inst.SlotChild(Slot(s)); c != nil {
			c.walk(fn)
		}
	}
	for _, c := range inst.Children() {
		c.walk(fn)
	}
}
