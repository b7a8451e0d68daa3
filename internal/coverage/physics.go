package coverage

import (
	"math"

	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// InfiniteRangeM is the sentinel distance (meters) reported when a
// view ray runs parallel to or above the horizon. Kept finite so it
// never turns into Inf/NaN further down the render path.
const InfiniteRangeM = 10000.0

// nearZeroTan bounds the tangent below which the dead-zone solve would
// blow up.
const nearZeroTan = 1e-9

// MountPhysics is the result of solving a camera's mounting geometry.
type MountPhysics struct {
	// MinRangeM is the ground distance where the lowest view ray
	// lands: the near edge of the visible floor. Negative means the
	// ray crosses behind the camera footprint (steep tilt); the
	// coverage polygon then has no dead zone, but the signed value is
	// still reported for the mounting diagram.
	MinRangeM float64 `json:"min_range_m"`
	// MaxDistM is the ground distance where the uppermost view ray
	// lands, or InfiniteRangeM when that ray clears the horizon.
	MaxDistM float64 `json:"max_dist_m"`
	// Infinite is set when the top ray is parallel to or above the
	// horizon and MaxDistM holds the sentinel.
	Infinite bool `json:"infinite"`
}

// SolveMountPhysics derives the visible ground band for a camera
// mounted at heightM meters, pitched tiltDeg below horizontal, with a
// vertical FOV of 2×halfFovDeg.
//
// Top ray:    topAngle = tilt - halfFov, maxDist = height / tan(topAngle)
// Bottom ray: bottomAngle = tilt + halfFov, minRange = height / tan(bottomAngle)
func SolveMountPhysics(heightM, tiltDeg, halfFovDeg float64) MountPhysics {
	var p MountPhysics

	topAngle := tiltDeg - halfFovDeg
	if topAngle > 0 {
		p.MaxDistM = heightM / math.Tan(geometry.ToRadians(topAngle))
		if p.MaxDistM > InfiniteRangeM {
			p.MaxDistM = InfiniteRangeM
			p.Infinite = true
		}
	} else {
		// Top ray parallel to or above the horizon.
		p.MaxDistM = InfiniteRangeM
		p.Infinite = true
	}

	bottomAngle := tiltDeg + halfFovDeg
	t := math.Tan(geometry.ToRadians(bottomAngle))
	switch {
	case math.Abs(t) < nearZeroTan:
		p.MinRangeM = InfiniteRangeM
	case t > 0:
		p.MinRangeM = math.Min(heightM/t, InfiniteRangeM)
	default:
		// Bottom ray already past vertical: lands behind the footprint.
		p.MinRangeM = math.Max(heightM/t, -InfiniteRangeM)
	}

	return p
}

// EffectiveRadiusPx converts a physics solve into the coverage draw
// radius: the physics max distance capped by the user range, scaled to
// plan pixels.
func EffectiveRadiusPx(p MountPhysics, maxRangeM, pixelsPerMeter float64) float64 {
	return math.Min(p.MaxDistM, maxRangeM) * pixelsPerMeter
}

// SolveTiltForRange returns the minimum tilt (degrees) whose top view
// ray lands at the desired ground distance, so a user can dial a draw
// distance directly while the mounting tilt auto-adjusts.
// Inverse of the forward solve: tilt = halfFov + atan(height / D),
// clamped to [0, 90].
func SolveTiltForRange(heightM, halfFovDeg, desiredRangeM float64) float64 {
	if desiredRangeM <= 0 {
		return 90
	}
	tilt := halfFovDeg + geometry.ToDegrees(math.Atan(heightM/desiredRangeM))
	if tilt < 0 {
		return 0
	}
	if tilt > 90 {
		return 90
	}
	return tilt
}
