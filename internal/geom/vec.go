// Package geom holds the small vector type shared by the modulation,
// binding and rendering packages.
package geom

import "math"

const TwoPi = 2 * math.Pi

type Vec3 struct {
	X, Y, Z float64
}

// Lerp interpolates component-wise from v to o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*t,
		v.Y + (o.Y-v.Y)*t,
		v.Z + (o.Z-v.Z)*t,
	}
}

// Splat returns a vector with all three components set to s.
func Splat(s float64) Vec3 { return Vec3{s, s, s} }

// WrapAngle maps a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// Fract returns x mod 1 in [0, 1), also for negative x.
func Fract(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}
