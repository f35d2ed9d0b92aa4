// Package vmath holds the float64 vector and matrix helpers used by the scene.
package vmath

import "math"

// Vec3 is a float64 3D vector. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for building a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 { return a.X*a.X + a.Y*a.Y + a.Z*a.Z }

func (a Vec3) Len() float64 { return math.Sqrt(a.LenSq()) }

// Dist returns the Euclidean distance between a and b.
func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Len() }

// Normalize returns the unit vector of a, or the zero vector if a has no length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	inv := 1.0 / l
	return Vec3{a.X * inv, a.Y * inv, a.Z * inv}
}

// Lerp interpolates between a and b; t is not clamped.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// ClampLen limits the magnitude of a to max.
func (a Vec3) ClampLen(max float64) Vec3 {
	l := a.Len()
	if l <= max || l == 0 {
		return a
	}
	return a.Scale(max / l)
}

// HorizontalLen returns the length of the XZ projection.
func (a Vec3) HorizontalLen() float64 { return math.Hypot(a.X, a.Z) }

// Up is the world up axis.
var Up = Vec3{0, 1, 0}
