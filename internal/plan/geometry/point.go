package geometry

import "math"

// Point is a position on the floor plan, in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WallSegment is a straight wall between two plan points.
// Walls are owned by the drawing layer; the engine only reads them.
type WallSegment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PointOnRay returns the point at the given distance from origin
// along the direction angleDeg (degrees, plan convention).
func PointOnRay(origin Point, angleDeg, distance float64) Point {
	rad := angleDeg * math.Pi / 180.0
	return Point{
		X: origin.X + distance*math.Cos(rad),
		Y: origin.Y + distance*math.Sin(rad),
	}
}
