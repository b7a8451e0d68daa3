package web

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cjeanneret/PlanCam/internal/config"
	"github.com/cjeanneret/PlanCam/internal/coverage"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
	"github.com/cjeanneret/PlanCam/internal/session"
	"github.com/cjeanneret/PlanCam/internal/store"
)

func newTestMux(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	cfg := config.Default()
	st := store.NewMemoryStore()
	h := NewHandlers(NewStatusBroadcaster(), cfg, coverage.NewEngine(cfg), st)
	return NewServer(":0", h).Mux(), st
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleConfig(t *testing.T) {
	mux, _ := newTestMux(t)
	w := doJSON(t, mux, http.MethodGet, "/config", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var fc FormConfig
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fc.PixelsPerMeter != 10 || fc.AngleSpanDeg != 90 {
		t.Errorf("form config = %+v", fc)
	}
	if fc.CameraHeightM != 3 || fc.CameraTiltDeg != 25 || fc.VerticalFOVDeg != 60 {
		t.Errorf("mounting defaults = %+v", fc)
	}
}

func TestHandleCompute_ManualRadius(t *testing.T) {
	mux, _ := newTestMux(t)

	set := plan.DefaultSettings()
	set.StartAngle = 0
	set.EndAngle = 90
	set.Radius = 100
	set.MinRange = 0

	w := doJSON(t, mux, http.MethodPost, "/compute", ComputeRequest{
		Center:   geometry.Point{X: 50, Y: 50},
		Settings: set,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var res session.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Invalid {
		t.Fatal("valid request marked invalid")
	}
	if res.RadiusPx != 100 {
		t.Errorf("radius = %v, manual radius must be honored", res.RadiusPx)
	}
	if len(res.Points) == 0 {
		t.Error("no polygon returned")
	}
	for i, p := range res.Points {
		if d := p.Distance(geometry.Point{X: 50, Y: 50}); d > 100+1e-6 {
			t.Errorf("point %d at distance %v, beyond manual radius", i, d)
		}
	}
}

func TestHandleCompute_SolvePhysics(t *testing.T) {
	mux, _ := newTestMux(t)

	set := plan.DefaultSettings()
	set.Radius = 5 // ignored when physics solves it

	w := doJSON(t, mux, http.MethodPost, "/compute", ComputeRequest{
		Center:       geometry.Point{},
		Settings:     set,
		SolvePhysics: true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res session.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	// 3m at 25° with 60° FOV clears the horizon, so the 20m cap rules
	// at 10 px/m.
	if res.RadiusPx != 200 {
		t.Errorf("radius = %v, want physics-derived 200", res.RadiusPx)
	}
	if !res.Physics.Infinite {
		t.Error("expected unbounded top ray")
	}
}

func TestHandleCompute_Rejects(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/compute", ComputeRequest{
		Center: geometry.Point{X: math.Inf(1)},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("infinite center: status = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/compute", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d, want 400", rec.Code)
	}
}

func TestHandlePhysics(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/physics", PhysicsRequest{
		HeightM: 3, TiltDeg: 25, VerticalFOVDeg: 60,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var p coverage.MountPhysics
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Infinite {
		t.Error("25° tilt with 30° half-FOV must be unbounded")
	}
	want := 3.0 / math.Tan(geometry.ToRadians(55))
	if math.Abs(p.MinRangeM-want) > 0.001 {
		t.Errorf("MinRangeM = %v, want %v", p.MinRangeM, want)
	}
}

func TestHandlePhysics_Validation(t *testing.T) {
	mux, _ := newTestMux(t)

	cases := []struct {
		name string
		req  PhysicsRequest
	}{
		{"zero height", PhysicsRequest{0, 25, 60}},
		{"huge height", PhysicsRequest{500, 25, 60}},
		{"negative tilt", PhysicsRequest{3, -1, 60}},
		{"tilt above 90", PhysicsRequest{3, 91, 60}},
		{"zero fov", PhysicsRequest{3, 25, 0}},
		{"fov above 180", PhysicsRequest{3, 25, 200}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doJSON(t, mux, http.MethodPost, "/physics", tc.req); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleTiltForRange(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/physics/tilt", TiltRequest{
		HeightM: 3, VerticalFOVDeg: 60, DesiredRangeM: 10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := 30 + geometry.ToDegrees(math.Atan(0.3))
	if math.Abs(out["tilt_deg"]-want) > 0.001 {
		t.Errorf("tilt_deg = %v, want %v", out["tilt_deg"], want)
	}
}

func TestPlansCRUD(t *testing.T) {
	mux, _ := newTestMux(t)

	cam := plan.NewCamera("entrance", geometry.Point{X: 10, Y: 20})
	p := plan.Plan{
		Name:    "warehouse",
		Cameras: []plan.Camera{cam},
		Walls:   []plan.Wall{plan.NewWall(geometry.Point{}, geometry.Point{X: 100, Y: 0})},
	}

	w := doJSON(t, mux, http.MethodPost, "/plans", p)
	if w.Code != http.StatusCreated {
		t.Fatalf("save: status = %d, body: %s", w.Code, w.Body.String())
	}
	var saved plan.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID == uuid.Nil {
		t.Error("saved plan should have an assigned id")
	}

	w = doJSON(t, mux, http.MethodGet, "/plans", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var sums []store.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sums); err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Name != "warehouse" {
		t.Errorf("summaries = %+v", sums)
	}

	w = doJSON(t, mux, http.MethodGet, "/plans/"+saved.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	var got plan.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Cameras) != 1 || got.Cameras[0].Name != "entrance" {
		t.Errorf("plan = %+v", got)
	}

	w = doJSON(t, mux, http.MethodDelete, "/plans/"+saved.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodGet, "/plans/"+saved.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestPlans_BadIDs(t *testing.T) {
	mux, _ := newTestMux(t)

	if w := doJSON(t, mux, http.MethodGet, "/plans/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Errorf("get: status = %d, want 400", w.Code)
	}
	if w := doJSON(t, mux, http.MethodDelete, "/plans/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Errorf("delete: status = %d, want 400", w.Code)
	}
	if w := doJSON(t, mux, http.MethodGet, "/plans/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Errorf("get unknown: status = %d, want 404", w.Code)
	}
	if w := doJSON(t, mux, http.MethodDelete, "/plans/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Errorf("delete unknown: status = %d, want 404", w.Code)
	}
}

func TestHandleListPlans_EmptyIsArray(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/plans", nil)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestServeIndex(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<html") {
		t.Error("index page missing html")
	}
}
