package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/PlanCam/internal/config"
	"github.com/cjeanneret/PlanCam/internal/coverage"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
	"github.com/cjeanneret/PlanCam/internal/session"
	"github.com/cjeanneret/PlanCam/internal/store"
)

// FormConfig holds the default values the UI sidebar offers for a new
// camera (from config).
type FormConfig struct {
	PixelsPerMeter       float64 `json:"pixels_per_meter"`
	AngleSpanDeg         float64 `json:"angle_span_deg"`
	MaxRangeM            float64 `json:"max_range_m"`
	Opacity              float64 `json:"opacity"`
	EdgeStyle            string  `json:"edge_style"`
	Projection           string  `json:"projection"`
	DoriEnabled          bool    `json:"dori_enabled"`
	CameraHeightM        float64 `json:"camera_height_m"`
	CameraTiltDeg        float64 `json:"camera_tilt_deg"`
	VerticalFOVDeg       float64 `json:"vertical_fov_deg"`
	Resolution           string  `json:"resolution"`
	AspectRatioMode      bool    `json:"aspect_ratio_mode"`
	LockDistanceOnRotate bool    `json:"lock_distance_on_rotate"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Cfg         *config.Config
	Engine      *coverage.Engine
	Store       store.Store
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *StatusBroadcaster, cfg *config.Config, engine *coverage.Engine, st store.Store) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Cfg:         cfg,
		Engine:      engine,
		Store:       st,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleConfig returns the UI form default values (from config) as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FormConfig{
		PixelsPerMeter: h.Cfg.PixelsPerMeter(),
		AngleSpanDeg:   90,
		MaxRangeM:      h.Cfg.Camera.MaxRangeM,
		Opacity:        h.Cfg.Camera.Opacity,
		EdgeStyle:      h.Cfg.Camera.EdgeStyle,
		Projection:     h.Cfg.Camera.Projection,
		CameraHeightM:  h.Cfg.Camera.HeightM,
		CameraTiltDeg:  h.Cfg.Camera.TiltDeg,
		VerticalFOVDeg: h.Cfg.Camera.VerticalFOVDeg,
	})
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// ComputeRequest is one coverage computation: where the camera sits,
// how it is configured, and the walls that occlude it. With
// solve_physics set, radius and dead zone are derived from the
// mounting fields instead of taken from the settings.
type ComputeRequest struct {
	Center       geometry.Point         `json:"center"`
	Settings     plan.CoverageSettings  `json:"settings"`
	Walls        []geometry.WallSegment `json:"walls"`
	SolvePhysics bool                   `json:"solve_physics"`
}

// HandleCompute handles POST /compute for a one-shot coverage
// computation.
func (h *Handlers) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if math.IsNaN(req.Center.X) || math.IsInf(req.Center.X, 0) ||
		math.IsNaN(req.Center.Y) || math.IsInf(req.Center.Y, 0) {
		http.Error(w, "center must be finite", http.StatusBadRequest)
		return
	}

	cam := plan.Camera{ID: uuid.New(), Name: "adhoc", Center: req.Center, Settings: req.Settings}
	sess := session.New(h.Cfg, h.Engine, &cam, req.Walls, nil)
	if !req.SolvePhysics {
		sess.UseManualRadius()
	}
	writeJSON(w, http.StatusOK, sess.Recompute())
}

// PhysicsRequest carries the mounting geometry for a physics solve.
type PhysicsRequest struct {
	HeightM        float64 `json:"height_m"`
	TiltDeg        float64 `json:"tilt_deg"`
	VerticalFOVDeg float64 `json:"vertical_fov_deg"`
}

// HandlePhysics handles POST /physics: dead-zone and max-range from
// height, tilt and vertical FOV.
func (h *Handlers) HandlePhysics(w http.ResponseWriter, r *http.Request) {
	var req PhysicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.HeightM <= 0 || req.HeightM > 100 {
		http.Error(w, "height_m must be between 0 and 100", http.StatusBadRequest)
		return
	}
	if req.TiltDeg < 0 || req.TiltDeg > 90 {
		http.Error(w, "tilt_deg must be between 0 and 90", http.StatusBadRequest)
		return
	}
	if req.VerticalFOVDeg <= 0 || req.VerticalFOVDeg > 180 {
		http.Error(w, "vertical_fov_deg must be between 1 and 180", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, coverage.SolveMountPhysics(req.HeightM, req.TiltDeg, req.VerticalFOVDeg/2.0))
}

// TiltRequest asks for the tilt reaching a desired ground distance.
type TiltRequest struct {
	HeightM        float64 `json:"height_m"`
	VerticalFOVDeg float64 `json:"vertical_fov_deg"`
	DesiredRangeM  float64 `json:"desired_range_m"`
}

// HandleTiltForRange handles POST /physics/tilt (inverse solve).
func (h *Handlers) HandleTiltForRange(w http.ResponseWriter, r *http.Request) {
	var req TiltRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.HeightM <= 0 || req.HeightM > 100 {
		http.Error(w, "height_m must be between 0 and 100", http.StatusBadRequest)
		return
	}
	if req.VerticalFOVDeg <= 0 || req.VerticalFOVDeg > 180 {
		http.Error(w, "vertical_fov_deg must be between 1 and 180", http.StatusBadRequest)
		return
	}
	tilt := coverage.SolveTiltForRange(req.HeightM, req.VerticalFOVDeg/2.0, req.DesiredRangeM)
	writeJSON(w, http.StatusOK, map[string]float64{"tilt_deg": tilt})
}

// HandleListPlans handles GET /plans.
func (h *Handlers) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	sums, err := h.Store.ListPlans(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

// HandleSavePlan handles POST /plans. Plans, cameras and walls without
// an ID get one assigned.
func (h *Handlers) HandleSavePlan(w http.ResponseWriter, r *http.Request) {
	var p plan.Plan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Cameras {
		if p.Cameras[i].ID == uuid.Nil {
			p.Cameras[i].ID = uuid.New()
		}
	}
	for i := range p.Walls {
		if p.Walls[i].ID == uuid.Nil {
			p.Walls[i].ID = uuid.New()
		}
	}
	if err := h.Store.SavePlan(r.Context(), &p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Broadcaster.BroadcastMsg("plan saved: " + p.Name)
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetPlan handles GET /plans/{id}.
func (h *Handlers) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid plan id", http.StatusBadRequest)
		return
	}
	p, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDeletePlan handles DELETE /plans/{id}.
func (h *Handlers) HandleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid plan id", http.StatusBadRequest)
		return
	}
	if err := h.Store.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "plan not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
