package stage

import "github.com/chewxy/math32"

// Quaternion is a rotation. The identity rotation is {0, 0, 0, 1}.
type Quaternion struct {
	X, Y, Z, W float32
}

// QuaternionIdentity is the identity rotation.
var QuaternionIdentity = Quaternion{0, 0, 0, 1}

// NewQuaternion creates a rotation of angle radians around axis.
func NewQuaternion(angle float32, axis Vector3) Quaternion {
	axis = axis.Normalized()
	s, c := math32.Sincos(angle / 2)
	return Quaternion{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// Mul returns q * r: the rotation r followed by q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Inverse returns the inverse rotation. A zero quaternion stays zero.
func (q Quaternion) Inverse() Quaternion {
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if n == 0 {
		return q
	}
	inv := 1 / n
	return Quaternion{-q.X * inv, -q.Y * inv, -q.Z * inv, q.W * inv}
}

// Rotate applies the rotation to v.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	u := Vector3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// IsIdentity reports whether q is (within a small tolerance) the identity.
func (q Quaternion) IsIdentity() bool {
	const eps = 1e-6
	return math32.Abs(q.X) < eps && math32.Abs(q.Y) < eps && math32.Abs(q.Z) < eps &&
		math32.Abs(math32.Abs(q.W)-1) < eps
}

// IsPlanar reports whether the rotation only turns around the Z axis, which
// keeps screen-space bounding boxes meaningful.
func (q Quaternion) IsPlanar() bool {
	const eps = 1e-6
	return math32.Abs(q.X) < eps && math32.Abs(q.Y) < eps
}

// ApproxEqual compares two rotations, treating q and -q as equal.
func (q Quaternion) ApproxEqual(o Quaternion, eps float32) bool {
	same := math32.Abs(q.X-o.X) <= eps && math32.Abs(q.Y-o.Y) <= eps &&
		math32.Abs(q.Z-o.Z) <= eps && math32.Abs(q.W-o.W) <= eps
	neg := math32.Abs(q.X+o.X) <= eps && math32.Abs(q.Y+o.Y) <= eps &&
		math32.Abs(q.Z+o.Z) <= eps && math32.Abs(q.W+o.W) <= eps
	return same || neg
}

// Matrix is a 4x4 column-major transform. Element (row r, column c) is stored
// at index c*4+r. Points are column vectors: p' = M * p.
type Matrix [16]float32

// MatrixIdentity is the identity matrix.
var MatrixIdentity = Matrix{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// multiplyMatrix returns parent * local, i.e. local applied first.
func multiplyMatrix(parent, local Matrix) Matrix {
	var r Matrix
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[c*4+row] = parent[0*4+row]*local[c*4+0] +
				parent[1*4+row]*local[c*4+1] +
				parent[2*4+row]*local[c*4+2] +
				parent[3*4+row]*local[c*4+3]
		}
	}
	return r
}

// Mul returns m * local, i.e. local applied first.
func (m Matrix) Mul(local Matrix) Matrix {
	return multiplyMatrix(m, local)
}

// composeMatrix builds T * R * S.
func composeMatrix(scale Vector3, rotation Quaternion, translation Vector3) Matrix {
	x, y, z, w := rotation.X, rotation.Y, rotation.Z, rotation.W
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return Matrix{
		(1 - 2*(yy+zz)) * scale.X, 2 * (xy + wz) * scale.X, 2 * (xz - wy) * scale.X, 0,
		2 * (xy - wz) * scale.Y, (1 - 2*(xx+zz)) * scale.Y, 2 * (yz + wx) * scale.Y, 0,
		2 * (xz + wy) * scale.Z, 2 * (yz - wx) * scale.Z, (1 - 2*(xx+yy)) * scale.Z, 0,
		translation.X, translation.Y, translation.Z, 1,
	}
}

// Translation returns the translation column.
func (m Matrix) Translation() Vector3 {
	return Vector3{m[12], m[13], m[14]}
}

// SetTranslation replaces the translation column.
func (m *Matrix) SetTranslation(t Vector3) {
	m[12], m[13], m[14] = t.X, t.Y, t.Z
}

// TransformPoint applies m to the point p.
func (m Matrix) TransformPoint(p Vector3) Vector3 {
	return Vector3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// Decompose splits m into scale, rotation and translation. Shear is
// discarded and negative scales are reported as positive.
func (m Matrix) Decompose() (scale Vector3, rotation Quaternion, translation Vector3) {
	translation = m.Translation()
	c0 := Vector3{m[0], m[1], m[2]}
	c1 := Vector3{m[4], m[5], m[6]}
	c2 := Vector3{m[8], m[9], m[10]}
	scale = Vector3{c0.Length(), c1.Length(), c2.Length()}
	if scale.X != 0 {
		c0 = c0.Scale(1 / scale.X)
	}
	if scale.Y != 0 {
		c1 = c1.Scale(1 / scale.Y)
	}
	if scale.Z != 0 {
		c2 = c2.Scale(1 / scale.Z)
	}
	rotation = quaternionFromBasis(c0, c1, c2)
	return scale, rotation, translation
}

// quaternionFromBasis converts an orthonormal basis (matrix columns) to a
// rotation.
func quaternionFromBasis(c0, c1, c2 Vector3) Quaternion {
	m00, m10, m20 := c0.X, c0.Y, c0.Z
	m01, m11, m21 := c1.X, c1.Y, c1.Z
	m02, m12, m22 := c2.X, c2.Y, c2.Z
	trace := m00 + m11 + m22
	var q Quaternion
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q = Quaternion{(m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s, s / 4}
	case m00 > m11 && m00 > m22:
		s := math32.Sqrt(1+m00-m11-m22) * 2
		q = Quaternion{s / 4, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := math32.Sqrt(1+m11-m00-m22) * 2
		q = Quaternion{(m01 + m10) / s, s / 4, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := math32.Sqrt(1+m22-m00-m11) * 2
		q = Quaternion{(m02 + m20) / s, (m12 + m21) / s, s / 4, (m10 - m01) / s}
	}
	return q
}

// IsPlanar reports whether m maps the XY plane onto a plane parallel to the
// screen, so that an axis-aligned screen rectangle bounds it exactly.
func (m Matrix) IsPlanar() bool {
	const eps = 1e-5
	return math32.Abs(m[2]) < eps && math32.Abs(m[6]) < eps &&
		math32.Abs(m[8]) < eps && math32.Abs(m[9]) < eps
}

// ApproxEqual reports whether every element of m is within eps of o.
func (m Matrix) ApproxEqual(o Matrix, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// Invert returns the inverse of an affine matrix. ok is false when the
// upper 3x3 block is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	a, b, c := m[0], m[4], m[8]
	d, e, f := m[1], m[5], m[9]
	g, h, i := m[2], m[6], m[10]
	co00 := e*i - f*h
	co01 := f*g - d*i
	co02 := d*h - e*g
	det := a*co00 + b*co01 + c*co02
	if math32.Abs(det) < 1e-12 {
		return MatrixIdentity, false
	}
	id := 1 / det
	// Rows of the 3x3 inverse, stored column-major.
	inv[0] = co00 * id
	inv[1] = co01 * id
	inv[2] = co02 * id
	inv[4] = (c*h - b*i) * id
	inv[5] = (a*i - c*g) * id
	inv[6] = (b*g - a*h) * id
	inv[8] = (b*f - c*e) * id
	inv[9] = (c*d - a*f) * id
	inv[10] = (a*e - b*d) * id
	t := m.Translation()
	inv[12] = -(inv[0]*t.X + inv[4]*t.Y + inv[8]*t.Z)
	inv[13] = -(inv[1]*t.X + inv[5]*t.Y + inv[9]*t.Z)
	inv[14] = -(inv[2]*t.X + inv[6]*t.Y + inv[10]*t.Z)
	inv[15] = 1
	return inv, true
}
