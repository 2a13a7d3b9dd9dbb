package canopy

// applyProps writes props onto inst in list order and returns inst. Fields
// not named in props are left untouched.
func applyProps(inst *Instance, props Props) *Instance {
	for _, p := range props {
		applyProp(inst, p.Key, p.Value)
	}
	return inst
}

func applyProp(inst *Instance, key string, v Value) {
	switch {
	case isHandlerKey(key):
		h, ok := v.(*Handler)
		if v != nil && !ok {
			Logger().Warn("canopy: handler property holds a non-handler value",
				"type", inst.Type, "key", key, "value", describeValue(v))
		}
		setHandler(inst, key, h)
	case key == RefKey:
		r, _ := v.(*Ref)
		if inst.ref != nil && inst.ref != r {
			inst.ref.call(nil)
		}
		inst.ref = r
		r.call(inst)
	default:
		if inst.object == nil {
			return
		}
		if patch, ok := v.(Record); ok {
			if cur, ok := inst.object.Prop(key); ok {
				if base, ok := cur.(Record); ok {
					inst.object.SetProp(key, base.merge(patch))
					return
				}
			}
		}
		if v == nil {
			inst.object.ClearProp(key)
			return
		}
		inst.object.SetProp(key, v)
	}
}

// setHandler replaces the handler stored under key. A nil handler only
// detaches. The instance joins the interaction set with its first handler
// and leaves it with its last.
func setHandler(inst *Instance, key string, h *Handler) {
	if _, ok := inst.handlers[key]; ok {
		if h != nil {
			// Swapping one handler for another keeps the entry in place.
			inst.handlers[key] = h
			return
		}
		delete(inst.handlers, key)
		if len(inst.handlers) == 0 {
			inst.store.interaction.remove(inst)
		}
	}
	if h == nil {
		return
	}
	if inst.handlers == nil {
		inst.handlers = make(map[string]*Handler, 1)
	}
	inst.handlers[key] = h
	if len(inst.handlers) == 1 {
		inst.store.interaction.add(inst)
	}
}

// resetProps reverts removed keys to the value a freshly constructed object
// of the same type reports, or clears them when it reports none.
func resetProps(inst *Instance, removed []string) {
	var fresh Object
	for _, key := range removed {
		switch {
		case isHandlerKey(key):
			setHandler(inst, key, nil)
		case key == RefKey:
			if inst.ref != nil {
				ref := inst.ref
				inst.ref = nil
				ref.call(nil)
			}
		default:
			if inst.object == nil {
				continue
			}
			if fresh == nil {
				_, obj, err := inst.store.registry.construct(inst.Type, inst.args)
				if err != nil {
					// The same args built inst, so this only fails for a
					// non-deterministic constructor; clear instead.
					Logger().Warn("canopy: cannot build reference object for reset",
						"type", inst.Type, "err", err)
					fresh = newBaseObject(inst.Type, nil)
				} else {
					fresh = obj
					defer fresh.Dispose()
				}
			}
			if def, ok := fresh.Prop(key); ok {
				inst.object.SetProp(key, def)
			} else {
				inst.object.ClearProp(key)
			}
		}
	}
}
