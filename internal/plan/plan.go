package plan

import (
	"github.com/google/uuid"

	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// ProjectionMode selects how the coverage arc approximates the lens:
// a circular arc of constant radius, or a flat image plane.
type ProjectionMode string

const (
	ProjectionCircular    ProjectionMode = "circular"
	ProjectionRectangular ProjectionMode = "rectangular"
)

// EdgeStyle selects the stroke used by the rendering client.
type EdgeStyle string

const (
	EdgeSolid  EdgeStyle = "solid"
	EdgeDashed EdgeStyle = "dashed"
	EdgeDotted EdgeStyle = "dotted"
)

// CoverageSettings holds everything that shapes one camera's coverage
// area. It is created with defaults when the camera is placed, mutated
// in place by UI actions, and dies with its camera.
type CoverageSettings struct {
	StartAngle float64 `json:"start_angle"` // degrees, [0,360)
	EndAngle   float64 `json:"end_angle"`   // degrees, [0,360)

	Radius   float64 `json:"radius"`    // current max draw distance, px
	MinRange float64 `json:"min_range"` // dead-zone radius, px; <= 0 means no dead zone
	MaxRange float64 `json:"max_range"` // user cap, meters, independent of physics

	ProjectionMode ProjectionMode `json:"projection_mode"`
	EdgeStyle      EdgeStyle      `json:"edge_style"`

	CameraHeight float64 `json:"camera_height"` // mounting height, meters
	CameraTilt   float64 `json:"camera_tilt"`   // degrees below horizontal
	SideFOV      float64 `json:"side_fov"`      // vertical FOV, degrees

	DoriEnabled     bool   `json:"dori_enabled"`
	AspectRatioMode bool   `json:"aspect_ratio_mode"` // true = 9:16 (corridor)
	Resolution      string `json:"resolution,omitempty"`

	LockDistanceOnRotate bool `json:"lock_distance_on_rotate"`

	BaseColor     string  `json:"base_color"`
	Opacity       float64 `json:"opacity"` // [0,1]
	Visible       bool    `json:"visible"`
	IsInitialized bool    `json:"is_initialized"`
}

// Span returns the angular width of the field of view in (0, 360].
func (s *CoverageSettings) Span() float64 {
	return geometry.AngleDiff(s.StartAngle, s.EndAngle)
}

// Camera is a placed camera device. Center is refreshed on every
// recompute (the device may be dragged); Settings persist.
type Camera struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Center   geometry.Point   `json:"center"`
	Settings CoverageSettings `json:"settings"`
}

// Wall is a straight wall drawn on the plan.
type Wall struct {
	ID      uuid.UUID            `json:"id"`
	Segment geometry.WallSegment `json:"segment"`
}

// Plan is one floor of a project: the cameras placed on it and the
// walls that occlude them.
type Plan struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Cameras []Camera  `json:"cameras"`
	Walls   []Wall    `json:"walls"`
}

// Segments returns the wall segments as a flat slice for the engine.
func (p *Plan) Segments() []geometry.WallSegment {
	segs := make([]geometry.WallSegment, len(p.Walls))
	for i, w := range p.Walls {
		segs[i] = w.Segment
	}
	return segs
}

// DefaultSettings returns the settings a freshly placed camera starts
// with. Callers usually override height, tilt, FOV and range from the
// loaded configuration.
func DefaultSettings() CoverageSettings {
	return CoverageSettings{
		StartAngle:     315,
		EndAngle:       45,
		Radius:         200,
		MinRange:       0,
		MaxRange:       20,
		ProjectionMode: ProjectionCircular,
		EdgeStyle:      EdgeSolid,
		CameraHeight:   3,
		CameraTilt:     25,
		SideFOV:        60,
		BaseColor:      "#2f81f7",
		Opacity:        0.35,
		Visible:        true,
	}
}

// NewCamera places a camera at center with default settings.
func NewCamera(name string, center geometry.Point) Camera {
	return Camera{
		ID:       uuid.New(),
		Name:     name,
		Center:   center,
		Settings: DefaultSettings(),
	}
}

// NewWall creates a wall between two plan points.
func NewWall(p1, p2 geometry.Point) Wall {
	return Wall{
		ID:      uuid.New(),
		Segment: geometry.WallSegment{P1: p1, P2: p2},
	}
}
