package canopy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// reconcileStats counts work done by one Render call. Only reported in
// debug mode.
type reconcileStats struct {
	mounts   int
	patches  int
	rebuilds int
	removals int
}

// Reconciler keeps a Store's instance graph in sync with descriptions. It
// exposes the structural host operations (AppendChild, InsertBefore,
// RemoveChild and their container variants) and the diff operations
// (PrepareUpdate, CommitUpdate); Render drives all of them from a tree.
type Reconciler struct {
	store *Store
	stats reconcileStats
}

// Reconciler returns the store's reconciler.
func (s *Store) Reconciler() *Reconciler {
	return s.reconciler
}

// --- Structural operations ---

// AppendChild mounts child as the last child of parent, or into the matching
// slot when parent is a slot host.
func (r *Reconciler) AppendChild(parent, child *Instance) error {
	return r.attach(parent, child, nil)
}

// InsertBefore mounts child immediately before the structural sibling before.
// A nil before appends. Slot children ignore before.
// Panics if before is not a structural child of parent.
func (r *Reconciler) InsertBefore(parent, child, before *Instance) error {
	return r.attach(parent, child, before)
}

// AppendChildToContainer mounts child under the store's root.
func (r *Reconciler) AppendChildToContainer(child *Instance) error {
	if err := r.checkStore(); err != nil {
		return err
	}
	return r.attach(r.store.root, child, nil)
}

// InsertInContainerBefore mounts child under the root before before.
func (r *Reconciler) InsertInContainerBefore(child, before *Instance) error {
	if err := r.checkStore(); err != nil {
		return err
	}
	return r.attach(r.store.root, child, before)
}

// checkStore fails once the store has been disposed.
func (r *Reconciler) checkStore() error {
	if r.store.disposed {
		return fmt.Errorf("disposed store: %w", ErrStaleInstance)
	}
	return nil
}

// RemoveChild unmounts child from parent and destroys it with its subtree.
// Panics if child's parent is not parent.
func (r *Reconciler) RemoveChild(parent, child *Instance) {
	if child.parent != parent.ID {
		panic("canopy: child's parent is not this instance")
	}
	parent.detachChild(child)
	child.destroy()
	r.store.Invalidate()
	r.stats.removals++
}

// RemoveChildFromContainer unmounts a direct child of the root.
func (r *Reconciler) RemoveChildFromContainer(child *Instance) {
	r.RemoveChild(r.store.root, child)
}

// attachesToSlot reports which slot child takes under parent, or SlotNone.
func attachesToSlot(parent, child *Instance) Slot {
	if !parent.IsSlotHost() {
		return SlotNone
	}
	return slotFor(child.Category())
}

func (r *Reconciler) attach(parent, child *Instance, before *Instance) error {
	if s := attachesToSlot(parent, child); s != SlotNone {
		if prev := parent.setSlot(s, child); prev != nil {
			prev.destroy()
			r.stats.removals++
		}
		r.store.Invalidate()
		return nil
	}
	if slotFor(child.Category()) != SlotNone {
		if r.store.strictSlots {
			return &InvalidSlotChildError{Parent: parent.Type, Child: child.Type}
		}
		Logger().Warn("canopy: invalid slot child, appending structurally",
			"parent", parent.Type, "child", child.Type, "err", ErrInvalidSlotChild)
	}
	index := len(parent.children)
	if before != nil {
		index = parent.indexOf(before)
		if index < 0 {
			panic("canopy: reference sibling is not a child of this instance")
		}
	}
	parent.insertChild(child, index)
	r.store.Invalidate()
	return nil
}

// --- Tree reconciliation ---

// Render makes the root's content match desc. A nil desc unmounts
// everything previously rendered. Failures abort only the affected
// subtree; they are joined and returned after the rest of the tree has been
// reconciled.
func (r *Reconciler) Render(desc *Description) error {
	if desc == nil {
		return r.RenderChildren(nil)
	}
	return r.RenderChildren([]*Description{desc})
}

// RenderChildren reconciles a list of top-level descriptions under the root.
func (r *Reconciler) RenderChildren(descs []*Description) error {
	if err := r.checkStore(); err != nil {
		return err
	}
	var t0 time.Time
	if r.store.debug {
		t0 = time.Now()
		r.stats = reconcileStats{}
	}
	err := r.reconcileChildren(r.store.root, descs)
	if r.store.debug {
		Logger().Debug("canopy: render",
			"duration", time.Since(t0),
			"mounts", r.stats.mounts,
			"patches", r.stats.patches,
			"rebuilds", r.stats.rebuilds,
			"removals", r.stats.removals,
			"instances", len(r.store.instances))
	}
	return err
}

// reconcileChildren matches descs against parent's previously rendered
// children, removes what is gone, updates what matched, mounts what is new
// and finally fixes sibling order.
func (r *Reconciler) reconcileChildren(parent *Instance, descs []*Description) error {
	var errs []error
	if parent.IsSlotHost() {
		descs = r.slotWinners(descs)
	}

	// Index the previous children: keyed by key, unkeyed by type in order.
	keyed := make(map[string]*Instance)
	unkeyed := make(map[string][]*Instance)
	for _, id := range parent.rendered {
		c := r.store.instances[id]
		if c == nil || c.disposed {
			continue
		}
		if c.Key != "" {
			keyed[c.Key] = c
		} else {
			t := strings.ToLower(c.Type)
			unkeyed[t] = append(unkeyed[t], c)
		}
	}

	matches := make([]*Instance, len(descs))
	used := make(map[InstanceID]bool, len(parent.rendered))
	for i, d := range descs {
		if d == nil {
			continue
		}
		if d.Key != "" {
			if c := keyed[d.Key]; c != nil && !used[c.ID] && strings.EqualFold(c.Type, d.Type) {
				matches[i] = c
				used[c.ID] = true
			}
			continue
		}
		t := strings.ToLower(d.Type)
		if q := unkeyed[t]; len(q) > 0 {
			matches[i] = q[0]
			unkeyed[t] = q[1:]
			used[q[0].ID] = true
		}
	}

	// Deletions first, so a replacement never competes with its predecessor
	// for a slot.
	for _, id := range parent.rendered {
		c := r.store.instances[id]
		if c == nil || c.disposed || used[id] {
			continue
		}
		if c.parent == parent.ID {
			r.RemoveChild(parent, c)
		} else {
			c.detach()
			c.destroy()
			r.stats.removals++
		}
	}

	next := make([]*Instance, 0, len(descs))
	for i, d := range descs {
		if d == nil {
			continue
		}
		var inst *Instance
		var err error
		if m := matches[i]; m != nil && !m.disposed {
			inst, err = r.update(m, d)
		} else {
			inst, err = r.mount(d)
		}
		if err != nil {
			errs = append(errs, err)
		}
		if inst != nil {
			next = append(next, inst)
		}
	}

	errs = append(errs, r.place(parent, next)...)

	parent.rendered = parent.rendered[:0]
	for _, c := range next {
		if !c.disposed {
			parent.rendered = append(parent.rendered, c.ID)
		}
	}
	return errors.Join(errs...)
}

// slotWinners drops every description that a later sibling would evict from
// the same slot, so only the last geometry and the last material are ever
// mounted under a slot host.
func (r *Reconciler) slotWinners(descs []*Description) []*Description {
	var last [slotCount]int
	slots := make([]Slot, len(descs))
	shadowed := false
	for i, d := range descs {
		if d == nil {
			continue
		}
		e, ok := r.store.registry.Lookup(d.Type)
		if !ok {
			continue
		}
		s := slotFor(e.Category)
		if s == SlotNone {
			continue
		}
		if last[s] != 0 {
			shadowed = true
		}
		slots[i] = s
		last[s] = i + 1
	}
	if !shadowed {
		return descs
	}
	out := make([]*Description, 0, len(descs))
	for i, d := range descs {
		if s := slots[i]; s != SlotNone && last[s] != i+1 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// mount builds the subtree for d. Children are attached before the new
// instance itself is placed.
func (r *Reconciler) mount(d *Description) (*Instance, error) {
	inst, err := r.store.CreateInstance(d.Type, d.Args)
	if err != nil {
		return nil, &ReconcileError{Op: "mount", Type: d.Type, Key: d.Key, Err: err}
	}
	inst.Key = d.Key
	inst.desc = d
	r.stats.mounts++
	cerr := r.reconcileChildren(inst, d.Children)
	applyProps(inst, d.Props)
	return inst, cerr
}

// update diffs a matched instance against d, commits the change and
// recurses into the children of the resulting instance.
func (r *Reconciler) update(inst *Instance, d *Description) (*Instance, error) {
	ch := r.PrepareUpdate(inst, d.Type, inst.desc, d)
	out, err := r.CommitUpdate(inst, ch, d)
	if err != nil {
		op := "update"
		if ch.Kind == Rebuild {
			op = "rebuild"
		}
		// The previous instance stays in place untouched.
		return inst, &ReconcileError{Op: op, Type: d.Type, Key: d.Key, Err: err}
	}
	out.Key = d.Key
	return out, r.reconcileChildren(out, d.Children)
}

// place attaches next under parent and reorders structural children to
// follow description order. It walks right to left so each child only moves
// when its following sibling is wrong.
func (r *Reconciler) place(parent *Instance, next []*Instance) []error {
	var errs []error

	structural := make([]*Instance, 0, len(next))
	for _, c := range next {
		if c.disposed {
			continue
		}
		if s := attachesToSlot(parent, c); s != SlotNone {
			if c.parent != parent.ID || c.slot != s {
				if err := r.attach(parent, c, nil); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}
		structural = append(structural, c)
	}

	var before *Instance
	for i := len(structural) - 1; i >= 0; i-- {
		c := structural[i]
		if c.disposed {
			continue
		}
		if c.parent != parent.ID || c.slot != SlotNone || nextSibling(parent, c) != before {
			if err := r.attach(parent, c, before); err != nil {
				errs = append(errs, &ReconcileError{Op: "attach", Type: c.Type, Key: c.Key, Err: err})
				c.detach()
				c.destroy()
				continue
			}
		}
		before = c
	}
	return errs
}

// nextSibling returns the structural sibling following c in parent, or nil.
func nextSibling(parent, c *Instance) *Instance {
	i := parent.indexOf(c)
	if i < 0 || i+1 >= len(parent.children) {
		return nil
	}
	return parent.store.instances[parent.children[i+1]]
}
