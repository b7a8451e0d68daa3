package session

import (
	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// PointerDown starts a drag on one of the three coverage handles.
// Ignored unless the session is idle.
func (s *Session) PointerDown(handle Handle, p geometry.Point) {
	if s.state != Idle {
		return
	}

	set := &s.camera.Settings
	next := Idle
	switch handle {
	case HandleStart:
		next = ResizingStart
	case HandleEnd:
		next = ResizingEnd
	case HandleRotate:
		next = Rotating
	default:
		return
	}

	s.drag = dragState{
		startBearing: s.bearingTo(p),
		startAngle:   set.StartAngle,
		endAngle:     set.EndAngle,
		prevSpan:     set.Span(),
	}
	debug.Handle(s.camera.Name, s.state.String(), next.String())
	s.state = next
}

// PointerMove drives the active drag: resizing moves one FOV boundary
// to the pointer bearing, rotating shifts both boundaries by the
// bearing delta since pointer-down (and follows the pointer distance
// unless distance is locked). Idle moves are ignored.
func (s *Session) PointerMove(p geometry.Point) *Result {
	set := &s.camera.Settings
	bearing := s.bearingTo(p)

	switch s.state {
	case ResizingStart:
		start, end := s.resolveSpan(bearing, set.EndAngle, true)
		set.StartAngle = start
		set.EndAngle = end

	case ResizingEnd:
		start, end := s.resolveSpan(set.StartAngle, bearing, false)
		set.StartAngle = start
		set.EndAngle = end

	case Rotating:
		delta := geometry.AngleDelta(bearing, s.drag.startBearing)
		set.StartAngle = geometry.NormalizeAngle(s.drag.startAngle + delta)
		set.EndAngle = geometry.NormalizeAngle(s.drag.endAngle + delta)
		if !set.LockDistanceOnRotate {
			dist := s.camera.Center.Distance(p)
			if dist < 1 {
				dist = 1
			}
			set.Radius = dist
		}

	default:
		return s.last
	}

	s.drag.prevSpan = set.Span()
	return s.Recompute()
}

// resolveSpan applies the degenerate-overlap policy to a tentative
// boundary pair: a span collapsing below 1° either snaps both angles
// together (previous span above 180° means the drag crossed through
// zero, and identical angles read as a full circle) or nudges the
// untouched boundary to preserve the minimum span.
func (s *Session) resolveSpan(start, end float64, movingStart bool) (float64, float64) {
	start = geometry.NormalizeAngle(start)
	end = geometry.NormalizeAngle(end)
	if start == end {
		return start, end
	}
	if geometry.AngleDiff(start, end) >= minSpanDeg {
		return start, end
	}

	if s.drag.prevSpan > 180 {
		if movingStart {
			return start, start
		}
		return end, end
	}

	if movingStart {
		return start, geometry.NormalizeAngle(start + minSpanDeg)
	}
	return geometry.NormalizeAngle(end - minSpanDeg), end
}

// PointerUp ends the drag: one final recompute, then the settings are
// persisted. Safe to call while idle.
func (s *Session) PointerUp() *Result {
	if s.state == Idle {
		return s.last
	}

	debug.Handle(s.camera.Name, s.state.String(), Idle.String())
	s.state = Idle
	s.drag = dragState{}

	res := s.Recompute()
	if s.saver != nil {
		if err := s.saver.SaveCamera(s.camera); err != nil {
			debug.Error(err)
		}
	}
	return res
}
