package canopy

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultFOV  = 75.0 // vertical, degrees
	defaultNear = 0.1
	defaultFar  = 1000.0
)

// moveAnim holds an active MoveTo tween, one gween.Tween per axis.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is the active perspective camera used for ray casting and drawing.
type Camera struct {
	// Position is the eye point in world space.
	Position Vec3
	// Target is the point the camera looks at.
	Target Vec3
	// Up is the approximate up direction. Defaults to +Y.
	Up Vec3
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Near and Far bound the visible depth range.
	Near, Far float64
	// Aspect is width/height. Store.SetSize keeps it in sync with the viewport.
	Aspect float64

	move *moveAnim
}

// NewCamera returns a camera at (0, 0, 5) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: Vec3{0, 0, 5},
		Up:       Vec3{0, 1, 0},
		FOV:      defaultFOV,
		Near:     defaultNear,
		Far:      defaultFar,
		Aspect:   1,
	}
}

// basis returns the camera's forward, right and up unit vectors.
func (c *Camera) basis() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	worldUp := c.Up
	if worldUp == (Vec3{}) {
		worldUp = Vec3{0, 1, 0}
	}
	right = forward.Cross(worldUp).Normalize()
	if right.Len() < 1e-9 {
		// Looking along Up; pick any perpendicular.
		right = forward.Cross(Vec3{0, 0, 1}).Normalize()
	}
	up = right.Cross(forward)
	return forward, right, up
}

func (c *Camera) tanHalfFOV() float64 {
	fov := c.FOV
	if fov <= 0 {
		fov = defaultFOV
	}
	return math.Tan(fov * math.Pi / 360)
}

func (c *Camera) aspect() float64 {
	if c.Aspect <= 0 {
		return 1
	}
	return c.Aspect
}

// Ray returns the world-space ray through the normalized device coordinates
// ndc. The direction is unit length.
func (c *Camera) Ray(ndc Vec2) Ray {
	forward, right, up := c.basis()
	t := c.tanHalfFOV()
	dir := forward.
		Add(right.Scale(ndc.X * t * c.aspect())).
		Add(up.Scale(ndc.Y * t))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Project maps a world point to normalized device coordinates. ok is false
// when the point lies outside the near/far depth range.
func (c *Camera) Project(world Vec3) (ndc Vec2, depth float64, ok bool) {
	forward, right, up := c.basis()
	d := world.Sub(c.Position)
	depth = d.Dot(forward)
	near, far := c.Near, c.Far
	if near <= 0 {
		near = defaultNear
	}
	if far <= near {
		far = defaultFar
	}
	if depth < near || depth > far {
		return Vec2{}, depth, false
	}
	t := c.tanHalfFOV()
	ndc = Vec2{
		X: d.Dot(right) / (depth * t * c.aspect()),
		Y: d.Dot(up) / (depth * t),
	}
	return ndc, depth, true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target Vec3) {
	c.Target = target
}

// MoveTo animates Position to pos over duration seconds. The tween advances
// through Update; Store.MoveCameraTo drives it from a frame callback.
func (c *Camera) MoveTo(pos Vec3, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	c.move = &moveAnim{tweens: [3]*gween.Tween{
		gween.New(float32(c.Position.X), float32(pos.X), duration, fn),
		gween.New(float32(c.Position.Y), float32(pos.Y), duration, fn),
		gween.New(float32(c.Position.Z), float32(pos.Z), duration, fn),
	}}
}

// Moving reports whether a MoveTo tween is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// Update advances an active MoveTo tween by dt seconds and reports whether
// the camera is still moving.
func (c *Camera) Update(dt float32) bool {
	m := c.move
	if m == nil {
		return false
	}
	axes := [3]*float64{&c.Position.X, &c.Position.Y, &c.Position.Z}
	for i, tw := range m.tweens {
		if m.done[i] {
			continue
		}
		val, done := tw.Update(dt)
		*axes[i] = float64(val)
		m.done[i] = done
	}
	if m.done[0] && m.done[1] && m.done[2] {
		c.move = nil
		return false
	}
	return true
}
