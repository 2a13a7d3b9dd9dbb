package canopy

import (
	"math"
	"testing"
)

func TestComposeTransformIdentity(t *testing.T) {
	m := composeTransform(Vec3{}, Vec3{}, Vec3{1, 1, 1})
	if m != identityTransform {
		t.Errorf("compose(identity) = %v", m)
	}
}

func TestComposeTransformOrder(t *testing.T) {
	// Scale, then rotate 90° about Z, then translate.
	m := composeTransform(Vec3{10, 0, 0}, Vec3{0, 0, math.Pi / 2}, Vec3{2, 2, 2})
	got := transformPoint(m, Vec3{1, 0, 0})
	assertVecNear(t, "point", got, Vec3{10, 2, 0})

	dir := transformDir(m, Vec3{1, 0, 0})
	assertVecNear(t, "dir", dir, Vec3{0, 2, 0})
}

func TestRotationAxes(t *testing.T) {
	tests := []struct {
		name string
		rot  Vec3
		in   Vec3
		want Vec3
	}{
		{"x", Vec3{math.Pi / 2, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"y", Vec3{0, math.Pi / 2, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{"z", Vec3{0, 0, math.Pi / 2}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := composeTransform(Vec3{}, tt.rot, Vec3{1, 1, 1})
			assertVecNear(t, "rotated", transformPoint(m, tt.in), tt.want)
		})
	}
}

func TestInvertAffine(t *testing.T) {
	m := composeTransform(Vec3{1, -2, 3}, Vec3{0.3, -0.7, 1.1}, Vec3{2, 0.5, 3})
	inv := invertAffine(m)
	p := Vec3{4, 5, -6}
	assertVecNear(t, "roundtrip", transformPoint(inv, transformPoint(m, p)), p)

	id := multiplyAffine(m, inv)
	for i := range id {
		if math.Abs(id[i]-identityTransform[i]) > 1e-9 {
			t.Fatalf("m * inv(m) = %v, want identity", id)
		}
	}
}

func TestInvertSingular(t *testing.T) {
	m := composeTransform(Vec3{1, 2, 3}, Vec3{}, Vec3{0, 1, 1})
	if invertAffine(m) != identityTransform {
		t.Error("singular matrix should invert to identity")
	}
}

func TestWorldPosition(t *testing.T) {
	s := newTestStore(t)
	mustRender(t, s, El("group", P("position", Vec(1, 0, 0), "rotation", Vec(0, 0, math.Pi/2)),
		El("group", P("position", Vec(2, 0, 0))).WithKey("child"),
	))
	child := findKey(s, "child")
	// Parent rotation turns the child's +X offset into +Y.
	assertVecNear(t, "WorldPosition", child.WorldPosition(), Vec3{1, 2, 0})

	local := child.WorldToLocal(Vec3{1, 2, 1})
	assertVecNear(t, "WorldToLocal", local, Vec3{0, 0, 1})
	assertVecNear(t, "LocalToWorld", child.LocalToWorld(local), Vec3{1, 2, 1})
}
