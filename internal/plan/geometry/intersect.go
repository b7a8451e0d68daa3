package geometry

import "math"

// parallelEpsilon bounds the determinant below which two segments are
// treated as parallel or degenerate.
const parallelEpsilon = 1e-10

// SegmentIntersection returns the intersection point of segments
// (p1,p2) and (p3,p4), or nil when the segments do not cross.
// Parallel, collinear and zero-length inputs all resolve to nil;
// degeneracy is never an error here.
//
// Parametric solve:
//
//	denom = (y4-y3)(x2-x1) - (x4-x3)(y2-y1)
//	uA    = ((x4-x3)(y1-y3) - (y4-y3)(x1-x3)) / denom
//	uB    = ((x2-x1)(y1-y3) - (y2-y1)(x1-x3)) / denom
//
// An intersection exists only when both uA and uB lie in [0, 1].
func SegmentIntersection(p1, p2, p3, p4 Point) *Point {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if math.Abs(denom) < parallelEpsilon {
		return nil
	}

	uA := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	uB := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / denom

	if uA < 0 || uA > 1 || uB < 0 || uB > 1 {
		return nil
	}

	return &Point{
		X: p1.X + uA*(p2.X-p1.X),
		Y: p1.Y + uA*(p2.Y-p1.Y),
	}
}

// RayWallIntersection tests a ray (as a finite segment from origin to
// rayEnd) against a wall and returns the intersection point, or nil.
func RayWallIntersection(origin, rayEnd Point, wall WallSegment) *Point {
	return SegmentIntersection(origin, rayEnd, wall.P1, wall.P2)
}
