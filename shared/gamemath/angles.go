package gamemath

import "math"

// WrapAngle normalizes an angle into (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the shortest signed delta from a to b, in (-π, π].
func AngleDiff(a, b float64) float64 {
	return WrapAngle(b - a)
}

// LerpAngle interpolates from a toward b along the shorter arc. The result
// never travels more than π radians regardless of how the inputs wrap.
func LerpAngle(a, b, t float64) float64 {
	return WrapAngle(a + AngleDiff(a, b)*Clamp01(t))
}
