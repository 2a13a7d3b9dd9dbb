package canopy

import "testing"

func TestBoxRaycast(t *testing.T) {
	b := &BoxGeometry{Width: 2, Height: 2, Depth: 2}
	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float64
	}{
		{"front", Ray{Vec3{0, 0, 5}, Vec3{0, 0, -1}}, true, 4},
		{"unnormalized", Ray{Vec3{0, 0, 5}, Vec3{0, 0, -2}}, true, 2},
		{"miss beside", Ray{Vec3{3, 0, 5}, Vec3{0, 0, -1}}, false, 0},
		{"pointing away", Ray{Vec3{0, 0, 5}, Vec3{0, 0, 1}}, false, 0},
		{"inside", Ray{Vec3{0, 0, 0}, Vec3{1, 0, 0}}, true, 1},
		{"diagonal", Ray{Vec3{-5, -5, 0}, Vec3{1, 1, 0}}, true, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Raycast(tt.ray)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok {
				assertNear(t, "t", got, tt.t)
			}
		})
	}
}

func TestSphereRaycast(t *testing.T) {
	s := &SphereGeometry{Radius: 1}
	got, ok := s.Raycast(Ray{Vec3{0, 0, 5}, Vec3{0, 0, -1}})
	if !ok {
		t.Fatal("expected hit")
	}
	assertNear(t, "t", got, 4)

	if _, ok := s.Raycast(Ray{Vec3{0, 2, 5}, Vec3{0, 0, -1}}); ok {
		t.Error("expected miss")
	}
	got, ok = s.Raycast(Ray{Vec3{}, Vec3{0, 1, 0}})
	if !ok {
		t.Fatal("ray from center should exit")
	}
	assertNear(t, "t inside", got, 1)
}

func TestPlaneRaycast(t *testing.T) {
	p := &PlaneGeometry{Width: 2, Height: 1}
	got, ok := p.Raycast(Ray{Vec3{0.5, 0.25, 3}, Vec3{0, 0, -1}})
	if !ok {
		t.Fatal("expected hit")
	}
	assertNear(t, "t", got, 3)

	if _, ok := p.Raycast(Ray{Vec3{0, 0.75, 3}, Vec3{0, 0, -1}}); ok {
		t.Error("expected miss outside height")
	}
	if _, ok := p.Raycast(Ray{Vec3{0, 0, 3}, Vec3{1, 0, 0}}); ok {
		t.Error("parallel ray should miss")
	}
	if _, ok := p.Raycast(Ray{Vec3{0, 0, -3}, Vec3{0, 0, 1}}); !ok {
		t.Error("back face should hit")
	}
}

func TestGeometryConstructors(t *testing.T) {
	obj, err := newBoxGeometry(Args{Float(1), Float(2), Float(3)})
	if err != nil {
		t.Fatal(err)
	}
	b := obj.(*BoxGeometry)
	if b.Width != 1 || b.Height != 2 || b.Depth != 3 {
		t.Errorf("box = %vx%vx%v", b.Width, b.Height, b.Depth)
	}
	if len(b.Edges()) != 12 {
		t.Errorf("box edges = %d, want 12", len(b.Edges()))
	}

	if _, err := newBoxGeometry(Args{Float(-1)}); err == nil {
		t.Error("negative size should fail")
	}
	if _, err := newBoxGeometry(Args{String("big")}); err == nil {
		t.Error("non-number arg should fail")
	}

	obj, err = newSphereGeometry(Args{Float(2), Float(8)})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(obj.(*SphereGeometry).Edges()); got != 24 {
		t.Errorf("sphere edges = %d, want 24", got)
	}

	obj, err = newPlaneGeometry(nil)
	if err != nil {
		t.Fatal(err)
	}
	if p := obj.(*PlaneGeometry); p.Width != 1 || p.Height != 1 {
		t.Errorf("plane defaults = %vx%v", p.Width, p.Height)
	}
}
