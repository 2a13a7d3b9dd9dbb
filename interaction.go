package canopy

import (
	"math"
	"sort"
)

// PointerEvent is a raw pointer event in canvas pixel coordinates, origin
// top-left.
type PointerEvent struct {
	Type             EventType
	OffsetX, OffsetY float64
}

// Event is delivered to an event-handler property.
type Event struct {
	Type EventType
	// Target is the interactive instance whose handler was invoked.
	Target *Instance
	// Object is the instance whose geometry was intersected. It is Target or
	// one of its descendants.
	Object *Instance
	// Coords are the pointer's normalized device coordinates.
	Coords Vec2
	// Distance is the world-space distance from the camera to the hit.
	Distance float64
	// Point is the world-space intersection point.
	Point Vec3
}

// EventSink is the interface for optional ECS integration. When set on a
// Store, every dispatched event is forwarded to it.
type EventSink interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries dispatched event data for the ECS bridge. It holds
// IDs instead of instance pointers so it can outlive the instances.
type InteractionEvent struct {
	Type     EventType
	Target   InstanceID
	Key      string
	Coords   Vec2
	Distance float64
	Point    Vec3
}

// Hit is one entry of a ray cast, nearest first.
type Hit struct {
	Instance *Instance
	Object   *Instance
	Distance float64
	Point    Vec3
}

// interactiveEntry is the hit-testing record for one instance that has at
// least one event handler.
type interactiveEntry struct {
	inst     *Instance
	object   *Instance
	distance float64
	point    Vec3
	hit      bool
}

// InteractionManager ray-casts pointer events against the instances that
// carry event handlers and invokes at most one handler per event.
type InteractionManager struct {
	store   *Store
	entries []*interactiveEntry
	sorted  []*interactiveEntry
	sink    EventSink

	injectQueue []PointerEvent
}

func newInteractionManager(s *Store) *InteractionManager {
	return &InteractionManager{store: s}
}

// add registers inst. Adding the same instance twice is a no-op.
func (m *InteractionManager) add(inst *Instance) {
	for _, e := range m.entries {
		if e.inst == inst {
			return
		}
	}
	m.entries = append(m.entries, &interactiveEntry{inst: inst, distance: math.Inf(1)})
}

// remove unregisters inst. No-op if it is not registered.
func (m *InteractionManager) remove(inst *Instance) {
	for i, e := range m.entries {
		if e.inst == inst {
			copy(m.entries[i:], m.entries[i+1:])
			m.entries[len(m.entries)-1] = nil
			m.entries = m.entries[:len(m.entries)-1]
			return
		}
	}
}

// Len returns the number of interactive instances.
func (m *InteractionManager) Len() int {
	return len(m.entries)
}

// Contains reports whether inst is registered.
func (m *InteractionManager) Contains(inst *Instance) bool {
	for _, e := range m.entries {
		if e.inst == inst {
			return true
		}
	}
	return false
}

// SetEventSink sets the optional ECS bridge.
func (m *InteractionManager) SetEventSink(sink EventSink) {
	m.sink = sink
}

// ToNDC converts canvas pixel coordinates to normalized device coordinates.
// It returns the origin while the viewport has no size.
func (m *InteractionManager) ToNDC(x, y float64) Vec2 {
	w, h := m.store.Size()
	if w <= 0 || h <= 0 {
		return Vec2{}
	}
	return Vec2{X: x/w*2 - 1, Y: -(y/h)*2 + 1}
}

// Dispatch ray-casts evt and invokes the handler of the nearest hit entry
// that has one for evt.Type. It reports whether a handler was invoked.
func (m *InteractionManager) Dispatch(evt PointerEvent) (bool, error) {
	cam := m.store.camera
	if cam == nil {
		return false, ErrNoCamera
	}
	if w, h := m.store.Size(); w <= 0 || h <= 0 {
		return false, ErrNoViewport
	}
	ndc := m.ToNDC(evt.OffsetX, evt.OffsetY)
	m.cast(cam.Ray(ndc))

	key := evt.Type.HandlerKey()
	for _, e := range m.sorted {
		if !e.hit {
			break // sorted: every following entry missed too
		}
		h := e.inst.handlers[key]
		if h == nil {
			continue
		}
		ev := Event{
			Type:     evt.Type,
			Target:   e.inst,
			Object:   e.object,
			Coords:   ndc,
			Distance: e.distance,
			Point:    e.point,
		}
		if m.sink != nil {
			m.sink.EmitEvent(InteractionEvent{
				Type:     evt.Type,
				Target:   e.inst.ID,
				Key:      e.inst.Key,
				Coords:   ndc,
				Distance: e.distance,
				Point:    e.point,
			})
		}
		h.Call(ev)
		return true, nil
	}
	return false, nil
}

// Hits returns every interactive instance the ray through ndc intersects,
// nearest first.
func (m *InteractionManager) Hits(ndc Vec2) ([]Hit, error) {
	cam := m.store.camera
	if cam == nil {
		return nil, ErrNoCamera
	}
	m.cast(cam.Ray(ndc))
	var out []Hit
	for _, e := range m.sorted {
		if !e.hit {
			break
		}
		out = append(out, Hit{Instance: e.inst, Object: e.object, Distance: e.distance, Point: e.point})
	}
	return out, nil
}

// cast intersects ray with every entry and leaves m.sorted ordered by
// ascending distance. Ties keep registration order.
func (m *InteractionManager) cast(ray Ray) {
	m.sorted = append(m.sorted[:0], m.entries...)
	for _, e := range m.sorted {
		e.distance, e.point, e.object, e.hit = math.Inf(1), Vec3{}, nil, false
		parent := identityTransform
		if p := e.inst.Parent(); p != nil {
			parent = p.worldTransform()
		}
		if t, obj, ok := raycastSubtree(e.inst, parent, ray); ok {
			e.distance, e.point, e.object, e.hit = t, ray.At(t), obj, true
		}
	}
	sort.SliceStable(m.sorted, func(i, j int) bool {
		return m.sorted[i].distance < m.sorted[j].distance
	})
}

// raycastSubtree intersects ray with the geometry slot of inst and,
// recursively, of its visible structural descendants. Returns the nearest
// distance and the instance that owns the hit geometry.
func raycastSubtree(inst *Instance, parentWorld affine, ray Ray) (float64, *Instance, bool) {
	if !isVisible(inst.object) {
		return 0, nil, false
	}
	world := multiplyAffine(parentWorld, inst.localTransform())
	best, bestObj, found := math.Inf(1), (*Instance)(nil), false

	if geo := inst.SlotChild(SlotGeometry); geo != nil {
		if shape, ok := geo.object.(Shape); ok {
			inv := invertAffine(world)
			local := Ray{Origin: transformPoint(inv, ray.Origin), Dir: transformDir(inv, ray.Dir)}
			if t, ok := shape.Raycast(local); ok && t < best {
				best, bestObj, found = t, inst, true
			}
		}
	}
	for _, c := range inst.Children() {
		if t, obj, ok := raycastSubtree(c, world, ray); ok && t < best {
			best, bestObj, found = t, obj, true
		}
	}
	return best, bestObj, found
}
