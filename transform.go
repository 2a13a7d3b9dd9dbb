package canopy

import "math"

// affine is a 3D affine matrix stored row-major as three rows of four:
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| 0   0   0   1   |
type affine [12]float64

// identityTransform is the identity affine matrix.
var identityTransform = affine{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}

// composeTransform builds Translate(pos) * Rotate(rot) * Scale(scale).
// Rotation is Euler XYZ in radians: X is applied first, then Y, then Z.
func composeTransform(pos, rot, scale Vec3) affine {
	sx, cx := math.Sincos(rot.X)
	sy, cy := math.Sincos(rot.Y)
	sz, cz := math.Sincos(rot.Z)

	// R = Rz * Ry * Rx
	r00 := cz * cy
	r01 := cz*sy*sx - sz*cx
	r02 := cz*sy*cx + sz*sx
	r10 := sz * cy
	r11 := sz*sy*sx + cz*cx
	r12 := sz*sy*cx - cz*sx
	r20 := -sy
	r21 := cy * sx
	r22 := cy * cx

	// Scale is applied before rotation, so it multiplies columns.
	return affine{
		r00 * scale.X, r01 * scale.Y, r02 * scale.Z, pos.X,
		r10 * scale.X, r11 * scale.Y, r12 * scale.Z, pos.Y,
		r20 * scale.X, r21 * scale.Y, r22 * scale.Z, pos.Z,
	}
}

// multiplyAffine returns parent * child.
func multiplyAffine(p, c affine) affine {
	var out affine
	for row := 0; row < 3; row++ {
		a0, a1, a2, a3 := p[row*4], p[row*4+1], p[row*4+2], p[row*4+3]
		out[row*4] = a0*c[0] + a1*c[4] + a2*c[8]
		out[row*4+1] = a0*c[1] + a1*c[5] + a2*c[9]
		out[row*4+2] = a0*c[2] + a1*c[6] + a2*c[10]
		out[row*4+3] = a0*c[3] + a1*c[7] + a2*c[11] + a3
	}
	return out
}

// invertAffine computes the inverse of m.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m affine) affine {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	co00 := e*i - f*h
	co01 := -(d*i - f*g)
	co02 := d*h - e*g
	det := a*co00 + b*co01 + c*co02
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	inv := 1 / det

	r00 := co00 * inv
	r01 := -(b*i - c*h) * inv
	r02 := (b*f - c*e) * inv
	r10 := co01 * inv
	r11 := (a*i - c*g) * inv
	r12 := -(a*f - c*d) * inv
	r20 := co02 * inv
	r21 := -(a*h - b*g) * inv
	r22 := (a*e - b*d) * inv

	tx, ty, tz := m[3], m[7], m[11]
	return affine{
		r00, r01, r02, -(r00*tx + r01*ty + r02*tz),
		r10, r11, r12, -(r10*tx + r11*ty + r12*tz),
		r20, r21, r22, -(r20*tx + r21*ty + r22*tz),
	}
}

// transformPoint applies m to a point.
func transformPoint(m affine, v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// transformDir applies m to a direction (no translation).
func transformDir(m affine, v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// --- Instance transforms ---

var (
	defaultScale = Vec3{1, 1, 1}
	zeroVec3     Vec3
)

// localTransform reads position/rotation/scale from the instance's object.
func (inst *Instance) localTransform() affine {
	if inst.object == nil {
		return identityTransform
	}
	pos, _ := inst.object.Prop("position")
	rot, _ := inst.object.Prop("rotation")
	scl, _ := inst.object.Prop("scale")
	return composeTransform(vec3Of(pos, zeroVec3), vec3Of(rot, zeroVec3), vec3Of(scl, defaultScale))
}

// worldTransform composes local transforms from the root down to inst.
func (inst *Instance) worldTransform() affine {
	m := inst.localTransform()
	for p := inst.Parent(); p != nil; p = p.Parent() {
		m = multiplyAffine(p.localTransform(), m)
	}
	return m
}

// WorldPosition returns the instance's origin in world space.
func (inst *Instance) WorldPosition() Vec3 {
	return transformPoint(inst.worldTransform(), Vec3{})
}

// LocalToWorld converts a point in the instance's local space to world space.
func (inst *Instance) LocalToWorld(v Vec3) Vec3 {
	return transformPoint(inst.worldTransform(), v)
}

// WorldToLocal converts a world-space point to the instance's local space.
func (inst *Instance) WorldToLocal(v Vec3) Vec3 {
	return transformPoint(invertAffine(inst.worldTransform()), v)
}
