package canopy

import "math"

// Vec2 is a 2D vector. Pointer coordinates are carried as normalized device
// coordinates in [-1, 1] with Y up.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector used for positions, directions, scales and Euler
// rotations (radians, XYZ order).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return v
	}
	return v.Scale(1 / l)
}

// Category classifies a registered node type for slot attachment.
type Category uint8

const (
	CategoryObject   Category = iota // regular scene object (group, mesh, light, camera)
	CategoryGeometry                 // occupies the geometry slot of a slot host
	CategoryMaterial                 // occupies the material slot of a slot host
)

func (c Category) String() string {
	switch c {
	case CategoryGeometry:
		return "geometry"
	case CategoryMaterial:
		return "material"
	default:
		return "object"
	}
}

// Slot names a single-valued child attachment point on a slot host.
type Slot uint8

const (
	SlotNone Slot = iota
	SlotGeometry
	SlotMaterial
)

func (s Slot) String() string {
	switch s {
	case SlotGeometry:
		return "geometry"
	case SlotMaterial:
		return "material"
	default:
		return "none"
	}
}

// slotFor returns the slot a child of category c occupies, or SlotNone.
func slotFor(c Category) Slot {
	switch c {
	case CategoryGeometry:
		return SlotGeometry
	case CategoryMaterial:
		return SlotMaterial
	default:
		return SlotNone
	}
}

// EventType identifies a kind of pointer event.
type EventType uint8

const (
	EventClick        EventType = iota // primary button press and release
	EventDoubleClick                   // two clicks within the double-click window
	EventContextMenu                   // secondary button release
	EventPointerDown                   // any button pressed
	EventPointerUp                     // any button released
	EventPointerMove                   // pointer moved
)

var eventNames = [...]string{
	EventClick:       "click",
	EventDoubleClick: "doubleclick",
	EventContextMenu: "contextmenu",
	EventPointerDown: "pointerdown",
	EventPointerUp:   "pointerup",
	EventPointerMove: "pointermove",
}

var eventHandlerKeys = [...]string{
	EventClick:       "onClick",
	EventDoubleClick: "onDoubleClick",
	EventContextMenu: "onContextMenu",
	EventPointerDown: "onPointerDown",
	EventPointerUp:   "onPointerUp",
	EventPointerMove: "onPointerMove",
}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// HandlerKey returns the property name that carries the handler for e.
func (e EventType) HandlerKey() string {
	if int(e) < len(eventHandlerKeys) {
		return eventHandlerKeys[e]
	}
	return ""
}

// ParseEventType resolves a DOM-style event name ("click", "pointerdown").
func ParseEventType(name string) (EventType, bool) {
	for i, n := range eventNames {
		if n == name {
			return EventType(i), true
		}
	}
	return 0, false
}

// FrameLoop selects when Store.RunFrame performs a pass.
type FrameLoop uint8

const (
	FrameLoopAlways FrameLoop = iota // every tick
	FrameLoopDemand                  // only after an invalidation
	FrameLoopNever                   // only when forced
)

func (f FrameLoop) String() string {
	switch f {
	case FrameLoopDemand:
		return "demand"
	case FrameLoopNever:
		return "never"
	default:
		return "always"
	}
}

// ParseFrameLoop resolves "always", "demand" or "never".
func ParseFrameLoop(s string) (FrameLoop, bool) {
	switch s {
	case "", "always":
		return FrameLoopAlways, true
	case "demand":
		return FrameLoopDemand, true
	case "never":
		return FrameLoopNever, true
	}
	return 0, false
}
