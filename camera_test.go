package canopy

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraRayCenter(t *testing.T) {
	c := NewCamera()
	r := c.Ray(Vec2{})
	assertVecNear(t, "Origin", r.Origin, Vec3{0, 0, 5})
	assertVecNear(t, "Dir", r.Dir, Vec3{0, 0, -1})
}

func TestCameraRayEdge(t *testing.T) {
	c := NewCamera()
	c.FOV = 90
	c.Aspect = 2
	r := c.Ray(Vec2{1, 1})
	// tan(45°) = 1; the corner direction before normalizing is (2, 1, -1).
	want := Vec3{2, 1, -1}.Normalize()
	assertVecNear(t, "Dir", r.Dir, want)
}

func TestCameraProjectInvertsRay(t *testing.T) {
	c := NewCamera()
	c.Position = Vec3{3, 2, 6}
	c.Target = Vec3{0, 0.5, -1}
	c.Aspect = 1.5

	for _, ndc := range []Vec2{{0, 0}, {0.5, -0.25}, {-0.9, 0.9}} {
		r := c.Ray(ndc)
		p := r.At(7)
		got, _, ok := c.Project(p)
		if !ok {
			t.Fatalf("Project(%v) not ok", p)
		}
		assertNear(t, "x", got.X, ndc.X)
		assertNear(t, "y", got.Y, ndc.Y)
	}
}

func TestCameraProjectClipsDepth(t *testing.T) {
	c := NewCamera()
	if _, _, ok := c.Project(Vec3{0, 0, 6}); ok {
		t.Error("point behind the camera should not project")
	}
	if _, _, ok := c.Project(Vec3{0, 0, 5 - 2000}); ok {
		t.Error("point past far should not project")
	}
	_, depth, ok := c.Project(Vec3{0, 0, 0})
	if !ok {
		t.Fatal("origin should project")
	}
	assertNear(t, "depth", depth, 5)
}

func TestCameraLookingAlongUp(t *testing.T) {
	c := NewCamera()
	c.Position = Vec3{0, 5, 0}
	c.Target = Vec3{}
	r := c.Ray(Vec2{})
	assertVecNear(t, "Dir", r.Dir, Vec3{0, -1, 0})
	if math.IsNaN(c.Ray(Vec2{0.5, 0.5}).Dir.X) {
		t.Error("degenerate basis produced NaN")
	}
}

func TestCameraMoveTo(t *testing.T) {
	c := NewCamera()
	c.MoveTo(Vec3{0, 0, 1}, 1, ease.Linear)
	if !c.Moving() {
		t.Fatal("Moving should be true after MoveTo")
	}
	c.Update(0.5)
	assertNear(t, "z at half", c.Position.Z, 3)
	if c.Update(0.5) {
		t.Error("tween should be finished")
	}
	assertNear(t, "z at end", c.Position.Z, 1)
	if c.Moving() {
		t.Error("Moving should be false after finish")
	}
}

func TestStoreMoveCameraTo(t *testing.T) {
	s := newTestStore(t)
	s.MoveCameraTo(Vec3{2, 0, 5}, 1, nil)
	for _, ts := range []float64{0, 500, 1000} {
		s.RunFrameForced(ts, nil)
	}
	assertVecNear(t, "Position", s.Camera().Position, Vec3{2, 0, 5})
	s.RunFrameForced(1100, nil)
	if s.Frames().Has("camera") {
		t.Error("camera callback should deregister when done")
	}
}

func TestSetSizeUpdatesAspect(t *testing.T) {
	s := newTestStore(t)
	s.SetSize(300, 150)
	assertNear(t, "Aspect", s.Camera().Aspect, 2)
}
