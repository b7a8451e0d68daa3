package session

import (
	"math"

	"github.com/cjeanneret/PlanCam/internal/config"
	"github.com/cjeanneret/PlanCam/internal/coverage"
	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// minSpanDeg is the smallest angular span a drag may leave behind; the
// polygon builder must never see a zero-span camera.
const minSpanDeg = 1.0

// State is the interaction state of a coverage session.
type State int

const (
	Idle State = iota
	ResizingStart
	ResizingEnd
	Rotating
)

func (s State) String() string {
	switch s {
	case ResizingStart:
		return "resizing-start"
	case ResizingEnd:
		return "resizing-end"
	case Rotating:
		return "rotating"
	default:
		return "idle"
	}
}

// Handle identifies which resize handle a pointer grabbed.
type Handle string

const (
	HandleStart  Handle = "start"
	HandleEnd    Handle = "end"
	HandleRotate Handle = "rotate"
)

// Saver persists a camera's settings after a completed drag.
type Saver interface {
	SaveCamera(cam *plan.Camera) error
}

// Result is one recompute snapshot handed to the rendering client.
// Invalid instructs the client to suppress drawing; Physics carries
// the signed dead-zone distance for the mounting diagram even when the
// polygon clamps it away.
type Result struct {
	Points     coverage.Polygon      `json:"points"`
	Zones      []coverage.DoriZone   `json:"zones,omitempty"`
	Invalid    bool                  `json:"invalid"`
	Physics    coverage.MountPhysics `json:"physics"`
	RadiusPx   float64               `json:"radius_px"`
	MinRangePx float64               `json:"min_range_px"`
}

// dragState holds the per-drag scratch data: the pointer bearing and
// camera angles at pointer-down, against which every move is resolved.
type dragState struct {
	startBearing float64
	startAngle   float64
	endAngle     float64
	prevSpan     float64
}

// Session owns one camera's mutable coverage settings, orchestrates
// recomputes on parameter change, and runs the drag/resize state
// machine. Single-threaded: a new recompute simply supersedes the
// previous one.
type Session struct {
	cfg    *config.Config
	engine *coverage.Engine
	camera *plan.Camera
	walls  []geometry.WallSegment
	saver  Saver

	state        State
	drag         dragState
	physicsDirty bool
	last         *Result
}

// New creates a session for a camera. saver may be nil (nothing is
// persisted on pointer-up). The initial physics solve runs on the
// first Recompute.
func New(cfg *config.Config, engine *coverage.Engine, camera *plan.Camera, walls []geometry.WallSegment, saver Saver) *Session {
	return &Session{
		cfg:          cfg,
		engine:       engine,
		camera:       camera,
		walls:        walls,
		saver:        saver,
		state:        Idle,
		physicsDirty: true,
	}
}

// UseManualRadius keeps the caller-provided radius and dead zone on
// the next recompute instead of deriving them from mounting physics.
func (s *Session) UseManualRadius() {
	s.physicsDirty = false
}

// Camera returns the owned camera.
func (s *Session) Camera() *plan.Camera { return s.camera }

// State returns the current interaction state.
func (s *Session) State() State { return s.state }

// Last returns the most recent recompute result, or nil before the
// first Recompute.
func (s *Session) Last() *Result { return s.last }

// SetWalls replaces the wall snapshot and recomputes. The slice is
// borrowed, never mutated.
func (s *Session) SetWalls(walls []geometry.WallSegment) *Result {
	s.walls = walls
	return s.Recompute()
}

// MoveTo updates the camera center (device dragged) and recomputes.
func (s *Session) MoveTo(center geometry.Point) *Result {
	s.camera.Center = center
	return s.Recompute()
}

// Recompute runs the full pipeline: mounting physics (when height,
// tilt, FOV or range cap changed), then the wall-clipped coverage
// polygon, then DORI zones when enabled. The result is cached on the
// session and returned.
func (s *Session) Recompute() *Result {
	cam := s.camera
	set := &cam.Settings

	res := &Result{
		Physics: coverage.SolveMountPhysics(set.CameraHeight, set.CameraTilt, set.SideFOV/2.0),
	}

	if s.physicsDirty {
		ppm := s.cfg.PixelsPerMeter()
		set.Radius = coverage.EffectiveRadiusPx(res.Physics, set.MaxRange, ppm)
		set.MinRange = res.Physics.MinRangeM * ppm
		s.physicsDirty = false
		debug.Verbose("physics: minRange=%.2fm maxDist=%.2fm infinite=%v",
			res.Physics.MinRangeM, res.Physics.MaxDistM, res.Physics.Infinite)
	}

	res.RadiusPx = set.Radius
	res.MinRangePx = set.MinRange

	points, err := s.engine.BuildCoverage(cam.Center, set, s.walls)
	if err != nil {
		res.Invalid = true
		s.last = res
		debug.Verbose("recompute %s: %v", cam.Name, err)
		return res
	}
	res.Points = points

	if set.DoriEnabled {
		res.Zones = s.engine.BuildDoriZones(cam.Center, set, s.walls)
	}

	set.IsInitialized = true
	s.last = res
	debug.Recompute(cam.Name, set.Span(), len(points))
	return res
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetAngles sets both FOV boundaries, normalized, enforcing the
// minimum span.
func (s *Session) SetAngles(start, end float64) *Result {
	start = geometry.NormalizeAngle(start)
	end = geometry.NormalizeAngle(end)
	if start != end && geometry.AngleDiff(start, end) < minSpanDeg {
		end = geometry.NormalizeAngle(start + minSpanDeg)
	}
	s.camera.Settings.StartAngle = start
	s.camera.Settings.EndAngle = end
	return s.Recompute()
}

// SetSpan sets the angular width around the current mid-angle.
func (s *Session) SetSpan(spanDeg float64) *Result {
	spanDeg = clamp(spanDeg, minSpanDeg, 360)
	set := &s.camera.Settings
	mid := geometry.MidAngle(set.StartAngle, set.Span())
	set.StartAngle = geometry.NormalizeAngle(mid - spanDeg/2.0)
	set.EndAngle = geometry.NormalizeAngle(mid + spanDeg/2.0)
	return s.Recompute()
}

// SetMaxRange sets the user range cap in meters.
func (s *Session) SetMaxRange(m float64) *Result {
	if m <= 0 {
		m = 0.1
	}
	s.camera.Settings.MaxRange = m
	s.physicsDirty = true
	return s.Recompute()
}

// SetDesiredRange adjusts the mounting tilt so the coverage reaches
// the desired ground distance (inverse physics solve).
func (s *Session) SetDesiredRange(rangeM float64) *Result {
	set := &s.camera.Settings
	set.CameraTilt = coverage.SolveTiltForRange(set.CameraHeight, set.SideFOV/2.0, rangeM)
	s.physicsDirty = true
	return s.Recompute()
}

// SetHeight sets the mounting height in meters, clamped to a
// plausible range.
func (s *Session) SetHeight(m float64) *Result {
	s.camera.Settings.CameraHeight = clamp(m, 0.1, 100)
	s.physicsDirty = true
	return s.Recompute()
}

// SetTilt sets the tilt below horizontal in degrees.
func (s *Session) SetTilt(deg float64) *Result {
	s.camera.Settings.CameraTilt = clamp(deg, 0, 90)
	s.physicsDirty = true
	return s.Recompute()
}

// SetVerticalFOV sets the vertical field of view in degrees.
func (s *Session) SetVerticalFOV(deg float64) *Result {
	s.camera.Settings.SideFOV = clamp(deg, 1, 180)
	s.physicsDirty = true
	return s.Recompute()
}

// SetOpacity sets the fill opacity, clamped to [0, 1].
func (s *Session) SetOpacity(v float64) *Result {
	s.camera.Settings.Opacity = clamp(v, 0, 1)
	return s.Recompute()
}

// SetEdgeStyle sets the stroke style; unknown values fall back to
// solid.
func (s *Session) SetEdgeStyle(style plan.EdgeStyle) *Result {
	switch style {
	case plan.EdgeSolid, plan.EdgeDashed, plan.EdgeDotted:
		s.camera.Settings.EdgeStyle = style
	default:
		s.camera.Settings.EdgeStyle = plan.EdgeSolid
	}
	return s.Recompute()
}

// SetProjectionMode switches between circular and rectangular
// coverage rendering.
func (s *Session) SetProjectionMode(mode plan.ProjectionMode) *Result {
	switch mode {
	case plan.ProjectionCircular, plan.ProjectionRectangular:
		s.camera.Settings.ProjectionMode = mode
	default:
		s.camera.Settings.ProjectionMode = plan.ProjectionCircular
	}
	return s.Recompute()
}

// SetDoriEnabled toggles DORI sub-zone computation.
func (s *Session) SetDoriEnabled(on bool) *Result {
	s.camera.Settings.DoriEnabled = on
	return s.Recompute()
}

// SetResolution sets the camera resolution string ("WxH" or "<n>MP").
func (s *Session) SetResolution(res string) *Result {
	s.camera.Settings.Resolution = res
	return s.Recompute()
}

// SetAspectRatioMode toggles corridor (9:16) resolution handling.
func (s *Session) SetAspectRatioMode(on bool) *Result {
	s.camera.Settings.AspectRatioMode = on
	return s.Recompute()
}

// SetLockDistanceOnRotate controls whether rotating a coverage arc
// also resizes it toward the pointer.
func (s *Session) SetLockDistanceOnRotate(on bool) {
	s.camera.Settings.LockDistanceOnRotate = on
}

// bearingTo returns the pointer's bearing from the camera center in
// degrees [0, 360).
func (s *Session) bearingTo(p geometry.Point) float64 {
	c := s.camera.Center
	return geometry.NormalizeAngle(geometry.ToDegrees(math.Atan2(p.Y-c.Y, p.X-c.X)))
}
