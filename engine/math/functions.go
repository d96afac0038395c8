package math

import (
	gomath "math"
)

func ksin(x float32) float32 {
	return float32(gomath.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(gomath.Cos(float64(x)))
}

func ktan(x float32) float32 {
	return float32(gomath.Tan(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

/*------------------------------------------------*/
/*                    Vec3                        */
/*------------------------------------------------*/

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{X: 1.0, Y: 1.0, Z: 1.0}
}

func NewVec3Up() Vec3 {
	return Vec3{Y: 1.0}
}

func NewVec3Right() Vec3 {
	return Vec3{X: 1.0}
}

func NewVec3Forward() Vec3 {
	return Vec3{Z: -1.0}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) Length() float32 {
	return ksqrt(v.Dot(v))
}

func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1.0 / l)
}

// ApplyQuaternion rotates the vector by the given unit quaternion.
func (v Vec3) ApplyQuaternion(q Quaternion) Vec3 {
	ix := q.W*v.X + q.Y*v.Z - q.Z*v.Y
	iy := q.W*v.Y + q.Z*v.X - q.X*v.Z
	iz := q.W*v.Z + q.X*v.Y - q.Y*v.X
	iw := -q.X*v.X - q.Y*v.Y - q.Z*v.Z

	return Vec3{
		X: ix*q.W + iw*-q.X + iy*-q.Z - iz*-q.Y,
		Y: iy*q.W + iw*-q.Y + iz*-q.X - ix*-q.Z,
		Z: iz*q.W + iw*-q.Z + ix*-q.Y - iy*-q.X,
	}
}

// TransformPoint applies the full transform, translation included.
func (v Vec3) TransformPoint(m Mat4) Vec3 {
	d := &m.Data
	return Vec3{
		X: d[0]*v.X + d[1]*v.Y + d[2]*v.Z + d[3],
		Y: d[4]*v.X + d[5]*v.Y + d[6]*v.Z + d[7],
		Z: d[8]*v.X + d[9]*v.Y + d[10]*v.Z + d[11],
	}
}

func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	if float32(gomath.Abs(float64(v.X-other.X))) > tolerance {
		return false
	}
	if float32(gomath.Abs(float64(v.Y-other.Y))) > tolerance {
		return false
	}
	if float32(gomath.Abs(float64(v.Z-other.Z))) > tolerance {
		return false
	}
	return true
}

/*------------------------------------------------*/
/*                  Quaternion                    */
/*------------------------------------------------*/

func NewQuatIdentity() Quaternion {
	return Quaternion{W: 1.0}
}

func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	halfAngle := 0.5 * angle
	s := ksin(halfAngle)

	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: kcos(halfAngle),
	}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.X*other.W + q.W*other.X + q.Y*other.Z - q.Z*other.Y,
		Y: q.Y*other.W + q.W*other.Y + q.Z*other.X - q.X*other.Z,
		Z: q.Z*other.W + q.W*other.Z + q.X*other.Y - q.Y*other.X,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

/*------------------------------------------------*/
/*                     Mat3                       */
/*------------------------------------------------*/

func NewMat3Identity() Mat3 {
	return Mat3{Elements: [3][3]float32{
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 0.0},
		{0.0, 0.0, 1.0},
	}}
}

func NewMat3From(elements [3][3]float32) Mat3 {
	return Mat3{Elements: elements}
}

// NewMat3UIProjection maps framebuffer pixel coordinates to normalized
// device coordinates, origin at the top-left corner.
func NewMat3UIProjection(width, height float32) Mat3 {
	return Mat3{Elements: [3][3]float32{
		{2.0 / width, 0.0, -1.0},
		{0.0, 2.0 / height, -1.0},
		{0.0, 0.0, 1.0},
	}}
}

func (m Mat3) Mul(other Mat3) Mat3 {
	a := &m.Elements
	b := &other.Elements
	var c [3][3]float32

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return Mat3{Elements: c}
}

// ToPaddedArray lays the rows out as three vec4s, the padding required
// by std140 uniform rules.
func (m Mat3) ToPaddedArray() [12]float32 {
	e := &m.Elements
	return [12]float32{
		e[0][0], e[0][1], e[0][2], 0.0,
		e[1][0], e[1][1], e[1][2], 0.0,
		e[2][0], e[2][1], e[2][2], 0.0,
	}
}

func (m Mat3) Compare(other Mat3, tolerance float32) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if float32(gomath.Abs(float64(m.Elements[i][j]-other.Elements[i][j]))) > tolerance {
				return false
			}
		}
	}
	return true
}

/*------------------------------------------------*/
/*                     Mat4                       */
/*------------------------------------------------*/

func NewMat4Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1.0, 0.0, 0.0, 0.0,
		0.0, 1.0, 0.0, 0.0,
		0.0, 0.0, 1.0, 0.0,
		0.0, 0.0, 0.0, 1.0,
	}}
}

func (mt Mat4) Mul(other Mat4) Mat4 {
	a := &mt.Data
	b := &other.Data
	var out Mat4

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[r*4+c] = a[r*4]*b[c] + a[r*4+1]*b[4+c] + a[r*4+2]*b[8+c] + a[r*4+3]*b[12+c]
		}
	}
	return out
}

// Compose builds the world matrix from position, rotation and scale.
func (mt *Mat4) Compose(position Vec3, rotation Quaternion, scale Vec3) {
	x, y, z, w := rotation.X, rotation.Y, rotation.Z, rotation.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	mt.Data = [16]float32{
		(1.0 - (yy + zz)) * scale.X, (xy - wz) * scale.Y, (xz + wy) * scale.Z, position.X,
		(xy + wz) * scale.X, (1.0 - (xx + zz)) * scale.Y, (yz - wx) * scale.Z, position.Y,
		(xz - wy) * scale.X, (yz + wx) * scale.Y, (1.0 - (xx + yy)) * scale.Z, position.Z,
		0.0, 0.0, 0.0, 1.0,
	}
}

// Inverse returns the inverse of the matrix. The matrix is assumed to be
// invertible; transforms composed from position/rotation/scale always are.
func (mt Mat4) Inverse() Mat4 {
	m := &mt.Data

	t0 := m[10] * m[15]
	t1 := m[14] * m[11]
	t2 := m[6] * m[15]
	t3 := m[14] * m[7]
	t4 := m[6] * m[11]
	t5 := m[10] * m[7]
	t6 := m[2] * m[15]
	t7 := m[14] * m[3]
	t8 := m[2] * m[11]
	t9 := m[10] * m[3]
	t10 := m[2] * m[7]
	t11 := m[6] * m[3]
	t12 := m[8] * m[13]
	t13 := m[12] * m[9]
	t14 := m[4] * m[13]
	t15 := m[12] * m[5]
	t16 := m[4] * m[9]
	t17 := m[8] * m[5]
	t18 := m[0] * m[13]
	t19 := m[12] * m[1]
	t20 := m[0] * m[9]
	t21 := m[8] * m[1]
	t22 := m[0] * m[5]
	t23 := m[4] * m[1]

	var o Mat4

	o.Data[0] = (t0*m[5] + t3*m[9] + t4*m[13]) - (t1*m[5] + t2*m[9] + t5*m[13])
	o.Data[1] = (t1*m[1] + t6*m[9] + t9*m[13]) - (t0*m[1] + t7*m[9] + t8*m[13])
	o.Data[2] = (t2*m[1] + t7*m[5] + t10*m[13]) - (t3*m[1] + t6*m[5] + t11*m[13])
	o.Data[3] = (t5*m[1] + t8*m[5] + t11*m[9]) - (t4*m[1] + t9*m[5] + t10*m[9])

	d := 1.0 / (m[0]*o.Data[0] + m[4]*o.Data[1] + m[8]*o.Data[2] + m[12]*o.Data[3])

	o.Data[0] = d * o.Data[0]
	o.Data[1] = d * o.Data[1]
	o.Data[2] = d * o.Data[2]
	o.Data[3] = d * o.Data[3]
	o.Data[4] = d * ((t1*m[4] + t2*m[8] + t5*m[12]) - (t0*m[4] + t3*m[8] + t4*m[12]))
	o.Data[5] = d * ((t0*m[0] + t7*m[8] + t8*m[12]) - (t1*m[0] + t6*m[8] + t9*m[12]))
	o.Data[6] = d * ((t3*m[0] + t6*m[4] + t11*m[12]) - (t2*m[0] + t7*m[4] + t10*m[12]))
	o.Data[7] = d * ((t4*m[0] + t9*m[4] + t10*m[8]) - (t5*m[0] + t8*m[4] + t11*m[8]))
	o.Data[8] = d * ((t12*m[7] + t15*m[11] + t16*m[15]) - (t13*m[7] + t14*m[11] + t17*m[15]))
	o.Data[9] = d * ((t13*m[3] + t18*m[11] + t21*m[15]) - (t12*m[3] + t19*m[11] + t20*m[15]))
	o.Data[10] = d * ((t14*m[3] + t19*m[7] + t22*m[15]) - (t15*m[3] + t18*m[7] + t23*m[15]))
	o.Data[11] = d * ((t17*m[3] + t20*m[7] + t23*m[11]) - (t16*m[3] + t21*m[7] + t22*m[11]))
	o.Data[12] = d * ((t14*m[10] + t17*m[14] + t13*m[6]) - (t16*m[14] + t12*m[6] + t15*m[10]))
	o.Data[13] = d * ((t20*m[14] + t12*m[2] + t19*m[10]) - (t18*m[10] + t21*m[14] + t13*m[2]))
	o.Data[14] = d * ((t18*m[6] + t23*m[14] + t15*m[2]) - (t22*m[14] + t14*m[2] + t19*m[6]))
	o.Data[15] = d * ((t22*m[10] + t16*m[2] + t21*m[6]) - (t20*m[6] + t23*m[10] + t17*m[2]))

	return o
}

func NewMat4Translation(position Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[3] = position.X
	m.Data[7] = position.Y
	m.Data[11] = position.Z
	return m
}

func NewMat4Scale(scale Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = scale.X
	m.Data[5] = scale.Y
	m.Data[10] = scale.Z
	return m
}

// NewMat4Perspective builds a right-handed perspective projection with a
// Vulkan-style [0, 1] depth range.
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	f := 1.0 / ktan(fovRadians*0.5)

	var m Mat4
	m.Data[0] = f / aspectRatio
	m.Data[5] = -f
	m.Data[10] = farClip / (nearClip - farClip)
	m.Data[11] = (nearClip * farClip) / (nearClip - farClip)
	m.Data[14] = -1.0
	return m
}

// AffineMat3 drops the z row and column, keeping the 2D affine part of
// the transform. Used to place screen-space objects with a Mat3.
func (mt Mat4) AffineMat3() Mat3 {
	d := &mt.Data
	return Mat3{Elements: [3][3]float32{
		{d[0], d[1], d[3]},
		{d[4], d[5], d[7]},
		{0.0, 0.0, 1.0},
	}}
}

func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := 0; i < 16; i++ {
		if float32(gomath.Abs(float64(mt.Data[i]-other.Data[i]))) > tolerance {
			return false
		}
	}
	return true
}
