package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
	"github.com/cjeanneret/PlanCam/internal/session"
	"github.com/cjeanneret/PlanCam/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The planner serves its own UI; same-host tools are fine.
		return true
	},
}

// DragEvent is one pointer or setter event from the UI during an
// interactive drag session.
type DragEvent struct {
	Type   string  `json:"type"`   // "down", "move", "up", "set", "walls"
	Handle string  `json:"handle"` // for "down": start, end, rotate
	X      float64 `json:"x"`
	Y      float64 `json:"y"`

	// for "set": a recognized option name and its value
	Option string                 `json:"option,omitempty"`
	Value  float64                `json:"value,omitempty"`
	Text   string                 `json:"text,omitempty"`
	On     bool                   `json:"on,omitempty"`
	Walls  []geometry.WallSegment `json:"walls,omitempty"`
}

// camSaver adapts the store to the session's Saver with the plan ID
// bound.
type camSaver struct {
	st     store.Store
	planID uuid.UUID
}

func (c camSaver) SaveCamera(cam *plan.Camera) error {
	return c.st.SaveCamera(context.Background(), c.planID, cam)
}

// HandleDragSession handles GET /plans/{id}/cameras/{camera}/session:
// a websocket over which the UI streams pointer events while dragging
// a coverage handle, receiving a recomputed polygon after every event.
func (h *Handlers) HandleDragSession(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid plan id", http.StatusBadRequest)
		return
	}
	camID, err := uuid.Parse(r.PathValue("camera"))
	if err != nil {
		http.Error(w, "invalid camera id", http.StatusBadRequest)
		return
	}

	p, err := h.Store.GetPlan(r.Context(), planID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var cam *plan.Camera
	for i := range p.Cameras {
		if p.Cameras[i].ID == camID {
			cam = &p.Cameras[i]
			break
		}
	}
	if cam == nil {
		http.Error(w, "camera not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Error(err)
		return
	}
	defer conn.Close()

	sess := session.New(h.Cfg, h.Engine, cam, p.Segments(), camSaver{st: h.Store, planID: planID})
	if cam.Settings.IsInitialized {
		sess.UseManualRadius()
	}

	// Initial state so the client can draw before the first event.
	if err := conn.WriteJSON(sess.Recompute()); err != nil {
		return
	}

	for {
		var evt DragEvent
		if err := conn.ReadJSON(&evt); err != nil {
			debug.Live("drag session closed: %v", err)
			return
		}

		res := h.applyDragEvent(sess, evt)
		if res == nil {
			continue
		}
		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}

// applyDragEvent routes one event into the session state machine.
// Unknown events and options are ignored rather than failing the
// stream; the UI must stay responsive.
func (h *Handlers) applyDragEvent(sess *session.Session, evt DragEvent) *session.Result {
	pt := geometry.Point{X: evt.X, Y: evt.Y}

	switch evt.Type {
	case "down":
		sess.PointerDown(session.Handle(evt.Handle), pt)
		return sess.Last()
	case "move":
		return sess.PointerMove(pt)
	case "up":
		return sess.PointerUp()
	case "walls":
		return sess.SetWalls(evt.Walls)
	case "set":
		return h.applyOption(sess, evt)
	default:
		return nil
	}
}

func (h *Handlers) applyOption(sess *session.Session, evt DragEvent) *session.Result {
	switch evt.Option {
	case "angle_span_deg":
		return sess.SetSpan(evt.Value)
	case "max_range_m":
		return sess.SetMaxRange(evt.Value)
	case "desired_range_m":
		return sess.SetDesiredRange(evt.Value)
	case "opacity":
		return sess.SetOpacity(evt.Value)
	case "edge_style":
		return sess.SetEdgeStyle(plan.EdgeStyle(evt.Text))
	case "projection_mode":
		return sess.SetProjectionMode(plan.ProjectionMode(evt.Text))
	case "dori_enabled":
		return sess.SetDoriEnabled(evt.On)
	case "camera_height_m":
		return sess.SetHeight(evt.Value)
	case "camera_tilt_deg":
		return sess.SetTilt(evt.Value)
	case "vertical_fov_deg":
		return sess.SetVerticalFOV(evt.Value)
	case "resolution":
		return sess.SetResolution(evt.Text)
	case "aspect_ratio_mode":
		return sess.SetAspectRatioMode(evt.On)
	case "lock_distance_on_rotate":
		sess.SetLockDistanceOnRotate(evt.On)
		return sess.Last()
	default:
		return nil
	}
}
