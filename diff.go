package canopy

import (
	"fmt"
	"strings"
)

// ChangeKind classifies an update.
type ChangeKind uint8

const (
	NoChange ChangeKind = iota // nothing to do
	Patch                      // apply a subset of props in place
	Rebuild                    // constructor arguments changed; destroy and recreate
)

func (k ChangeKind) String() string {
	switch k {
	case Patch:
		return "patch"
	case Rebuild:
		return "rebuild"
	default:
		return "nochange"
	}
}

// Change is the result of PrepareUpdate. It is consumed by CommitUpdate and
// never stored.
type Change struct {
	Kind ChangeKind
	// Removed lists keys present in the old props and absent in the new ones.
	Removed []string
	// Props holds the new props whose values differ from the old ones.
	Props Props
}

// PrepareUpdate compares the last applied description of inst with next.
// A change in type tag or constructor arguments yields Rebuild. Otherwise removed keys
// and changed values yield Patch, and identical props yield NoChange.
func (r *Reconciler) PrepareUpdate(inst *Instance, typeTag string, prev, next *Description) Change {
	var prevArgs, nextArgs Args
	var prevProps, nextProps Props
	if prev != nil {
		prevArgs, prevProps = prev.Args, prev.Props
	}
	if next != nil {
		nextArgs, nextProps = next.Args, next.Props
	}
	if !strings.EqualFold(typeTag, inst.Type) || !Equal(prevArgs, nextArgs) {
		return Change{Kind: Rebuild}
	}

	var removed []string
	for _, k := range prevProps.Keys() {
		if !nextProps.Has(k) {
			removed = append(removed, k)
		}
	}
	var applied Props
	for _, k := range nextProps.Keys() {
		nv, _ := nextProps.Get(k)
		pv, had := prevProps.Get(k)
		if !had || !Equal(pv, nv) {
			applied = append(applied, Prop{Key: k, Value: nv})
		}
	}
	if len(removed) == 0 && len(applied) == 0 {
		return Change{Kind: NoChange}
	}
	return Change{Kind: Patch, Removed: removed, Props: applied}
}

// CommitUpdate applies a Change to inst and returns the live instance, which
// differs from inst after a rebuild.
func (r *Reconciler) CommitUpdate(inst *Instance, ch Change, next *Description) (*Instance, error) {
	if inst.disposed {
		return nil, fmt.Errorf("commit %s: %w", inst.Type, ErrStaleInstance)
	}
	switch ch.Kind {
	case Rebuild:
		return r.switchInstance(inst, next)
	case Patch:
		resetProps(inst, ch.Removed)
		applyProps(inst, ch.Props)
		inst.desc = next
		r.store.Invalidate()
		r.stats.patches++
	default:
		inst.desc = next
	}
	return inst, nil
}

// switchInstance replaces old with a new instance built from next. Children,
// slot occupants and the parent position carry over; old is released.
func (r *Reconciler) switchInstance(old *Instance, next *Description) (*Instance, error) {
	inst, err := r.store.CreateInstance(next.Type, next.Args)
	if err != nil {
		return old, err
	}
	inst.Key = next.Key
	inst.desc = next

	// Move structural children and slot occupants.
	inst.children, old.children = old.children, nil
	for _, id := range inst.children {
		if c := r.store.instances[id]; c != nil {
			c.parent = inst.ID
		}
	}
	slots := old.slots
	old.slots = [slotCount]InstanceID{}
	for s, id := range slots {
		c := r.store.instances[id]
		if id == 0 || c == nil {
			continue
		}
		if inst.IsSlotHost() {
			inst.slots[s] = id
			c.parent = inst.ID
			continue
		}
		// The replacement type has no slots; occupants go with the old instance.
		c.parent = 0
		c.destroy()
	}
	inst.rendered, old.rendered = old.rendered, nil

	// Take old's place in its parent.
	if p := old.Parent(); p != nil {
		if old.slot != SlotNone {
			p.slots[old.slot] = inst.ID
		} else if i := p.indexOf(old); i >= 0 {
			p.children[i] = inst.ID
		}
		for i, id := range p.rendered {
			if id == old.ID {
				p.rendered[i] = inst.ID
			}
		}
		inst.parent = p.ID
		inst.slot = old.slot
		old.parent = 0
		old.slot = SlotNone
	}

	old.release()
	applyProps(inst, next.Props)
	r.store.Invalidate()
	r.stats.rebuilds++
	Logger().Debug("canopy: rebuilt instance", "type", inst.Type, "old", old.ID, "new", inst.ID)
	return inst, nil
}
