package geometry

import (
	"math"
	"testing"
)

func TestSegmentIntersection_Crossing(t *testing.T) {
	// X crossing at (5, 5)
	ip := SegmentIntersection(
		Point{0, 0}, Point{10, 10},
		Point{0, 10}, Point{10, 0},
	)
	if ip == nil {
		t.Fatal("expected intersection, got nil")
	}
	if math.Abs(ip.X-5) > epsilon || math.Abs(ip.Y-5) > epsilon {
		t.Errorf("intersection = (%v, %v), want (5, 5)", ip.X, ip.Y)
	}
}

func TestSegmentIntersection_Parallel(t *testing.T) {
	ip := SegmentIntersection(
		Point{0, 0}, Point{10, 0},
		Point{0, 1}, Point{10, 1},
	)
	if ip != nil {
		t.Errorf("parallel segments should not intersect, got %v", ip)
	}
}

func TestSegmentIntersection_Collinear(t *testing.T) {
	ip := SegmentIntersection(
		Point{0, 0}, Point{10, 0},
		Point{5, 0}, Point{15, 0},
	)
	if ip != nil {
		t.Errorf("collinear segments resolve to no intersection, got %v", ip)
	}
}

func TestSegmentIntersection_ZeroLength(t *testing.T) {
	ip := SegmentIntersection(
		Point{5, 5}, Point{5, 5},
		Point{0, 0}, Point{10, 10},
	)
	if ip != nil {
		t.Errorf("zero-length segment should not intersect, got %v", ip)
	}
}

func TestSegmentIntersection_LinesCrossOutsideSegments(t *testing.T) {
	// The infinite lines cross at (5, 5) but segment B stops short.
	ip := SegmentIntersection(
		Point{0, 0}, Point{10, 10},
		Point{0, 10}, Point{4, 6},
	)
	if ip != nil {
		t.Errorf("segments do not reach the line crossing, got %v", ip)
	}
}

func TestSegmentIntersection_EndpointTouch(t *testing.T) {
	ip := SegmentIntersection(
		Point{0, 0}, Point{10, 0},
		Point{5, 0}, Point{5, 10},
	)
	if ip == nil {
		t.Fatal("endpoint touch should count as intersection")
	}
	if math.Abs(ip.X-5) > epsilon || math.Abs(ip.Y) > epsilon {
		t.Errorf("intersection = (%v, %v), want (5, 0)", ip.X, ip.Y)
	}
}

func TestPointOnRay(t *testing.T) {
	p := PointOnRay(Point{10, 10}, 0, 5)
	if math.Abs(p.X-15) > epsilon || math.Abs(p.Y-10) > epsilon {
		t.Errorf("PointOnRay(0°, 5) = (%v, %v), want (15, 10)", p.X, p.Y)
	}
	p = PointOnRay(Point{0, 0}, 90, 2)
	if math.Abs(p.X) > epsilon || math.Abs(p.Y-2) > epsilon {
		t.Errorf("PointOnRay(90°, 2) = (%v, %v), want (0, 2)", p.X, p.Y)
	}
}

func TestDistance(t *testing.T) {
	d := Point{0, 0}.Distance(Point{3, 4})
	if math.Abs(d-5) > epsilon {
		t.Errorf("Distance = %v, want 5", d)
	}
}
