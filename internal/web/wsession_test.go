package web

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
	"github.com/cjeanneret/PlanCam/internal/session"
)

func dialSession(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	return conn
}

func readResult(t *testing.T, conn *websocket.Conn) session.Result {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var res session.Result
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read result: %v", err)
	}
	return res
}

func TestDragSession_PointerRoundTrip(t *testing.T) {
	mux, st := newTestMux(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cam := plan.NewCamera("dock", geometry.Point{X: 0, Y: 0})
	cam.Settings.StartAngle = 0
	cam.Settings.EndAngle = 90
	p := plan.Plan{ID: uuid.New(), Name: "site", Cameras: []plan.Camera{cam}}
	if err := st.SavePlan(context.Background(), &p); err != nil {
		t.Fatal(err)
	}

	conn := dialSession(t, srv,
		"/plans/"+p.ID.String()+"/cameras/"+cam.ID.String()+"/session")
	defer conn.Close()

	initial := readResult(t, conn)
	if initial.Invalid || len(initial.Points) == 0 {
		t.Fatalf("initial state = %+v", initial)
	}

	// Drag the end handle from bearing 90 to bearing 180.
	send := func(evt DragEvent) {
		t.Helper()
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteJSON(evt); err != nil {
			t.Fatal(err)
		}
	}
	send(DragEvent{Type: "down", Handle: "end", X: 0, Y: 100})
	readResult(t, conn)
	send(DragEvent{Type: "move", X: -100, Y: 0})
	readResult(t, conn)
	send(DragEvent{Type: "up"})
	final := readResult(t, conn)

	if final.Invalid {
		t.Fatal("final result invalid")
	}

	// Pointer-up persists the widened arc.
	stored, err := st.GetPlan(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := stored.Cameras[0].Settings
	if math.Abs(got.EndAngle-180) > 1e-6 {
		t.Errorf("persisted end angle = %v, want 180", got.EndAngle)
	}
	if !got.IsInitialized {
		t.Error("persisted settings should be marked initialized")
	}
}

func TestDragSession_SetOption(t *testing.T) {
	mux, st := newTestMux(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cam := plan.NewCamera("yard", geometry.Point{})
	p := plan.Plan{ID: uuid.New(), Name: "site", Cameras: []plan.Camera{cam}}
	if err := st.SavePlan(context.Background(), &p); err != nil {
		t.Fatal(err)
	}

	conn := dialSession(t, srv,
		"/plans/"+p.ID.String()+"/cameras/"+cam.ID.String()+"/session")
	defer conn.Close()
	readResult(t, conn)

	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteJSON(DragEvent{Type: "set", Option: "dori_enabled", On: true}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(DragEvent{Type: "set", Option: "resolution", Text: "1920x1080"}); err != nil {
		t.Fatal(err)
	}

	readResult(t, conn)
	res := readResult(t, conn)
	if len(res.Zones) == 0 {
		t.Error("expected DORI zones once resolution and toggle are set")
	}
}

func TestDragSession_UnknownIDs(t *testing.T) {
	mux, st := newTestMux(t)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cam := plan.NewCamera("cam", geometry.Point{})
	p := plan.Plan{ID: uuid.New(), Name: "site", Cameras: []plan.Camera{cam}}
	if err := st.SavePlan(context.Background(), &p); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/plans/" + uuid.New().String() + "/cameras/" + cam.ID.String() + "/session")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plan: status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/plans/" + p.ID.String() + "/cameras/" + uuid.New().String() + "/session")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown camera: status = %d, want 404", resp.StatusCode)
	}
}
