package coverage

import (
	"errors"
	"math"

	"github.com/cjeanneret/PlanCam/internal/config"
	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// ErrDegenerateCoverage is returned when the dead zone swallows the
// whole coverage area (minRange >= radius). The caller must skip
// drawing instead of rendering a malformed polygon.
var ErrDegenerateCoverage = errors.New("coverage: min range reaches or exceeds radius")

// Polygon is an ordered point list forming a simple polygon, ready for
// the rendering client.
type Polygon []geometry.Point

// Engine computes coverage polygons, DORI zones and mounting physics
// for cameras on a plan.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates an engine using the tuning constants from cfg.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// rayCount returns the number of ray steps for a span. Full circles
// use a fixed count; arcs use one ray per two degrees, floored so
// narrow wedges still get a smooth edge.
func (e *Engine) rayCount(span float64, isFullCircle bool) int {
	n := e.cfg.Raycast.FullCircleRays
	if !isFullCircle {
		n = int(math.Ceil(span / 2.0))
	}
	if n < e.cfg.Raycast.MinRays {
		n = e.cfg.Raycast.MinRays
	}
	return n
}

// effectiveRadius applies the rectangular-projection correction to a
// base radius for the ray at angleDeg. The flat image plane is
// perpendicular to the mid-angle, so each ray stretches by 1/cos of
// its offset from mid. The window and cosine floor guard the
// asymptote as the offset approaches 90°.
func (e *Engine) effectiveRadius(base, angleDeg, midDeg float64) float64 {
	delta := geometry.ToRadians(geometry.AngleDelta(angleDeg, midDeg))
	if math.Abs(delta) < e.cfg.Raycast.RectWindowRad {
		c := math.Cos(delta)
		if math.Abs(c) > e.cfg.Raycast.RectCosFloor {
			return base / c
		}
	}
	return base
}

// castRay resolves one ray from center: the endpoint is the closest
// wall intersection within the ray length, or the full-length ray end.
// Returns the endpoint and its distance from center.
func castRay(center geometry.Point, angleDeg, length float64, walls []geometry.WallSegment) (geometry.Point, float64) {
	rayEnd := geometry.PointOnRay(center, angleDeg, length)
	closest := rayEnd
	dist := math.Abs(length)

	for _, w := range walls {
		ip := geometry.RayWallIntersection(center, rayEnd, w)
		if ip == nil {
			continue
		}
		d := center.Distance(*ip)
		if d < dist {
			dist = d
			closest = *ip
		}
	}
	return closest, dist
}

// BuildCoverage builds the wall-clipped coverage polygon for a camera.
//
// The outer arc walks numRays+1 rays from startAngle to endAngle (or
// around the full circle), each clipped against every wall. Arcs then
// close with an inner dead-zone arc walked in reverse, clamped per ray
// to the outer resolved distance so the dead zone never pokes through
// a wall; a camera without a dead zone closes directly at its center.
// Full circles need no closing arc.
func (e *Engine) BuildCoverage(center geometry.Point, s *plan.CoverageSettings, walls []geometry.WallSegment) (Polygon, error) {
	if s.MinRange >= s.Radius {
		return nil, ErrDegenerateCoverage
	}

	span := s.Span()
	isFullCircle := geometry.IsFullCircle(span)
	numRays := e.rayCount(span, isFullCircle)

	sweep := span
	baseAngle := s.StartAngle
	if isFullCircle {
		sweep = 360.0
		baseAngle = 0
	}
	step := sweep / float64(numRays)
	mid := geometry.MidAngle(s.StartAngle, span)

	useRect := s.ProjectionMode == plan.ProjectionRectangular &&
		!isFullCircle && span < e.cfg.Raycast.RectMaxSpanDeg

	debug.Verbose("coverage: span=%.2f° rays=%d step=%.3f° rect=%v", span, numRays, step, useRect)

	rayDistances := make([]float64, numRays+1)
	points := make(Polygon, 0, 2*(numRays+1)+1)

	// Outer arc.
	for i := 0; i <= numRays; i++ {
		angle := baseAngle + float64(i)*step
		radius := s.Radius
		if useRect {
			radius = e.effectiveRadius(s.Radius, angle, mid)
		}
		pt, dist := castRay(center, angle, radius, walls)
		debug.Ray(i, angle, dist, dist < math.Abs(radius))
		rayDistances[i] = dist
		points = append(points, pt)
	}

	if isFullCircle {
		// Closed by the 360° outer ring, no inner arc.
		return points, nil
	}

	// Inner arc (dead zone), walked end to start.
	if s.MinRange <= 0 || math.Abs(s.MinRange) < e.cfg.Raycast.DeadZoneEpsilonPx {
		points = append(points, center)
		return points, nil
	}

	for i := numRays; i >= 0; i-- {
		angle := baseAngle + float64(i)*step
		inner := s.MinRange
		if useRect {
			inner = e.effectiveRadius(s.MinRange, angle, mid)
		}
		// The dead zone must never extend past a wall the outer ray
		// stopped at.
		if inner > rayDistances[i] {
			inner = rayDistances[i]
		}
		points = append(points, geometry.PointOnRay(center, angle, inner))
	}

	return points, nil
}
