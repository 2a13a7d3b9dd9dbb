package canopy

import (
	"fmt"
	"math"
)

// Ray is a half-line from Origin along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Shape is implemented by geometry objects. Raycast works in the geometry's
// local space; Dir need not be normalized and the returned t is in units of
// Dir.
type Shape interface {
	Raycast(r Ray) (t float64, ok bool)
	// Edges returns line segments for wireframe rendering.
	Edges() [][2]Vec3
}

// --- Box ---

// BoxGeometry is an axis-aligned box centered on the origin.
type BoxGeometry struct {
	*BaseObject
	Width, Height, Depth float64
}

func newBoxGeometry(args Args) (Object, error) {
	w, err := args.FloatArg(0, 1)
	if err != nil {
		return nil, err
	}
	h, err := args.FloatArg(1, 1)
	if err != nil {
		return nil, err
	}
	d, err := args.FloatArg(2, 1)
	if err != nil {
		return nil, err
	}
	if w < 0 || h < 0 || d < 0 {
		return nil, fmt.Errorf("negative box size %gx%gx%g", w, h, d)
	}
	return &BoxGeometry{BaseObject: newBaseObject("boxGeometry", nil), Width: w, Height: h, Depth: d}, nil
}

// Raycast uses the slab method.
func (b *BoxGeometry) Raycast(r Ray) (float64, bool) {
	half := Vec3{b.Width / 2, b.Height / 2, b.Depth / 2}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	h := [3]float64{half.X, half.Y, half.Z}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -h[i] || o[i] > h[i] {
				return 0, false
			}
			continue
		}
		t1 := (-h[i] - o[i]) / d[i]
		t2 := (h[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		// Origin inside the box: report the exit point.
		return tmax, true
	}
	return tmin, true
}

func (b *BoxGeometry) Edges() [][2]Vec3 {
	x, y, z := b.Width/2, b.Height/2, b.Depth/2
	c := [8]Vec3{
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
	}
	return [][2]Vec3{
		{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]},
		{c[4], c[5]}, {c[5], c[6]}, {c[6], c[7]}, {c[7], c[4]},
		{c[0], c[4]}, {c[1], c[5]}, {c[2], c[6]}, {c[3], c[7]},
	}
}

// --- Sphere ---

// SphereGeometry is a sphere centered on the origin.
type SphereGeometry struct {
	*BaseObject
	Radius   float64
	segments int
}

func newSphereGeometry(args Args) (Object, error) {
	r, err := args.FloatArg(0, 1)
	if err != nil {
		return nil, err
	}
	seg, err := args.FloatArg(1, 16)
	if err != nil {
		return nil, err
	}
	if r < 0 {
		return nil, fmt.Errorf("negative sphere radius %g", r)
	}
	return &SphereGeometry{BaseObject: newBaseObject("sphereGeometry", nil), Radius: r, segments: max(int(seg), 3)}, nil
}

func (s *SphereGeometry) Raycast(r Ray) (float64, bool) {
	a := r.Dir.Dot(r.Dir)
	if a < 1e-24 {
		return 0, false
	}
	b := 2 * r.Origin.Dot(r.Dir)
	c := r.Origin.Dot(r.Origin) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Edges returns three great circles.
func (s *SphereGeometry) Edges() [][2]Vec3 {
	n := s.segments
	out := make([][2]Vec3, 0, 3*n)
	point := func(axis, i int) Vec3 {
		a := 2 * math.Pi * float64(i) / float64(n)
		u, v := math.Cos(a)*s.Radius, math.Sin(a)*s.Radius
		switch axis {
		case 0:
			return Vec3{u, v, 0}
		case 1:
			return Vec3{u, 0, v}
		default:
			return Vec3{0, u, v}
		}
	}
	for axis := 0; axis < 3; axis++ {
		for i := 0; i < n; i++ {
			out = append(out, [2]Vec3{point(axis, i), point(axis, i+1)})
		}
	}
	return out
}

// --- Plane ---

// PlaneGeometry is a rectangle in the XY plane facing +Z.
type PlaneGeometry struct {
	*BaseObject
	Width, Height float64
}

func newPlaneGeometry(args Args) (Object, error) {
	w, err := args.FloatArg(0, 1)
	if err != nil {
		return nil, err
	}
	h, err := args.FloatArg(1, 1)
	if err != nil {
		return nil, err
	}
	return &PlaneGeometry{BaseObject: newBaseObject("planeGeometry", nil), Width: w, Height: h}, nil
}

// Raycast hits either face.
func (p *PlaneGeometry) Raycast(r Ray) (float64, bool) {
	if math.Abs(r.Dir.Z) < 1e-12 {
		return 0, false
	}
	t := -r.Origin.Z / r.Dir.Z
	if t < 0 {
		return 0, false
	}
	hit := r.At(t)
	if math.Abs(hit.X) > p.Width/2 || math.Abs(hit.Y) > p.Height/2 {
		return 0, false
	}
	return t, true
}

func (p *PlaneGeometry) Edges() [][2]Vec3 {
	x, y := p.Width/2, p.Height/2
	c := [4]Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}}
	return [][2]Vec3{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
}
