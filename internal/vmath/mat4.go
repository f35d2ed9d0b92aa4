package vmath

import "math"

// Mat4 is a 4x4 matrix stored column-major (m[col*4+row]), matching OpenGL
// conventions: right-handed view space, camera looking down -Z, NDC in [-1,1].
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective builds a projection matrix. fovY is in radians.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovY/2)
	nf := 1.0 / (near - far)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// LookAt builds a view matrix for a camera at eye looking at target.
// If the view direction is parallel to up, the Z axis is used as a fallback up.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up)
	if s.LenSq() < 1e-12 {
		s = f.Cross(Vec3{0, 0, 1})
	}
	s = s.Normalize()
	u := s.Cross(f)

	var m Mat4
	m[0], m[4], m[8] = s.X, s.Y, s.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = -f.X, -f.Y, -f.Z
	m[12] = -s.Dot(eye)
	m[13] = -u.Dot(eye)
	m[14] = f.Dot(eye)
	m[15] = 1
	return m
}

// Mul returns a*b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Transform multiplies the homogeneous point (p, 1) and returns clip coordinates.
func (m Mat4) Transform(p Vec3) (x, y, z, w float64) {
	x = m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y = m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z = m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w = m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	return
}

// Project maps a world point to normalized device coordinates.
// w is the clip-space w; w <= 0 means the point is behind the camera.
func (m Mat4) Project(p Vec3) (ndc Vec3, w float64) {
	x, y, z, w := m.Transform(p)
	if w == 0 {
		return Vec3{}, 0
	}
	inv := 1.0 / w
	return Vec3{x * inv, y * inv, z * inv}, w
}
