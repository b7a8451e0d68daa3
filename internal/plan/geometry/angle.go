package geometry

import "math"

// FullCircleSpanDeg is the span above which a coverage arc is treated
// as a closed circle.
const FullCircleSpanDeg = 359.9

// NormalizeAngle brings an angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// AngleDiff returns the clockwise angular span from start to end in
// degrees, in (0, 360].
// Formula: ((end - start + 360) mod 360), with 0 reinterpreted as 360:
// a camera cannot have a zero span, so identical angles mean a full
// circle, not an empty one.
func AngleDiff(start, end float64) float64 {
	diff := math.Mod(end-start+360.0, 360.0)
	if diff < 0 {
		diff += 360.0
	}
	if diff == 0 {
		return 360.0
	}
	return diff
}

// AngleDelta returns the signed smallest difference a-b in degrees,
// in [-180, 180).
func AngleDelta(a, b float64) float64 {
	d := NormalizeAngle(a - b)
	if d >= 180 {
		d -= 360
	}
	return d
}

// MidAngle returns the bisector of an arc that starts at start and
// spans span degrees, normalized into [0, 360).
func MidAngle(start, span float64) float64 {
	return NormalizeAngle(start + span/2.0)
}

// IsFullCircle reports whether a span covers the whole circle.
func IsFullCircle(span float64) bool {
	return span >= FullCircleSpanDeg
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// ToDegrees converts radians to degrees.
func ToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
