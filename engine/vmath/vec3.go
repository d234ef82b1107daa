package vmath

import "github.com/chewxy/math32"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

// Vec3 is a 3-dimensional float32 vector. Y is up; grid rows run along Z.
type Vec3 struct {
	X, Y, Z float32
}

// Zero is the zero vector
var Zero = Vec3{}

func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Add returns v + b
func (v Vec3) Add(b Vec3) Vec3 {
	v.X += b.X
	v.Y += b.Y
	v.Z += b.Z
	return v
}

// Sub returns v - b
func (v Vec3) Sub(b Vec3) Vec3 {
	v.X -= b.X
	v.Y -= b.Y
	v.Z -= b.Z
	return v
}

// Scale multiplies every component by s
func (v Vec3) Scale(s float32) Vec3 {
	v.X *= s
	v.Y *= s
	v.Z *= s
	return v
}

// Neg returns -v
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(b Vec3) float32 {
	return v.X*b.X + v.Y*b.Y + v.Z*b.Z
}

func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when
// v is too short (or not finite) to have a meaningful direction.
func (v Vec3) NormalizeOrZero() Vec3 {
	l := v.Length()
	if !(l > Epsilon) || math32.IsInf(l, 0) {
		return Zero
	}
	return v.Scale(1 / l)
}

// IsZero reports whether every component is exactly zero
func (v Vec3) IsZero() bool {
	return v == Zero
}

// Lerp interpolates between v and b by t
func (v Vec3) Lerp(b Vec3, t float32) Vec3 {
	return v.Add(b.Sub(v).Scale(t))
}

// HorizontalDistance is the distance between v and b projected on the XZ ground plane
func (v Vec3) HorizontalDistance(b Vec3) float32 {
	dx, dz := v.X-b.X, v.Z-b.Z
	return math32.Sqrt(dx*dx + dz*dz)
}

// ApproxEqual compares component-wise within eps
func (v Vec3) ApproxEqual(b Vec3, eps float32) bool {
	return math32.Abs(v.X-b.X) <= eps && math32.Abs(v.Y-b.Y) <= eps && math32.Abs(v.Z-b.Z) <= eps
}
