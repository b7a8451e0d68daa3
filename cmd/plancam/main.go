package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/cjeanneret/PlanCam/internal/config"
	"github.com/cjeanneret/PlanCam/internal/coverage"
	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/session"
	"github.com/cjeanneret/PlanCam/internal/store"
	"github.com/cjeanneret/PlanCam/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	planID := flag.String("plan", "", "plan id to compute coverage for (one-shot mode)")
	memStore := flag.Bool("mem", false, "use in-memory store instead of sqlite (dev/test)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration (falling back to built-in defaults when the
	// file is absent and the path was not overridden)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !flagWasSet("config") {
			cfg = config.Default()
		} else {
			log.Fatalf("load config failed: %v", err)
		}
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Pixels per meter", cfg.PixelsPerMeter())

	// Open the plan store
	st, err := newStore(cfg, *memStore)
	if err != nil {
		log.Fatalf("open store failed: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("closing store failed: %v", err)
		}
	}()

	engine := coverage.NewEngine(cfg)

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		handlers := web.NewHandlers(broadcaster, cfg, engine, st)
		srv := web.NewServer(webAddr, handlers)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	// One-shot mode: compute coverage for every camera of a stored plan
	if *planID == "" {
		log.Fatal("one-shot mode needs -plan <uuid> (or start the server with -web)")
	}
	id, err := uuid.Parse(*planID)
	if err != nil {
		log.Fatalf("invalid plan id: %v", err)
	}
	if err := computePlan(ctx, cfg, engine, st, id); err != nil {
		log.Fatalf("compute failed: %v", err)
	}
}

// computePlan runs the recompute pipeline once for each camera of a
// plan and prints a coverage summary.
func computePlan(ctx context.Context, cfg *config.Config, engine *coverage.Engine, st store.Store, id uuid.UUID) error {
	p, err := st.GetPlan(ctx, id)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	debug.Summary("Coverage: " + p.Name)
	debug.Value("Cameras", len(p.Cameras))
	debug.Value("Walls", len(p.Walls))

	walls := p.Segments()
	for i := range p.Cameras {
		cam := &p.Cameras[i]
		sess := session.New(cfg, engine, cam, walls, nil)
		res := sess.Recompute()

		if res.Invalid {
			fmt.Printf("%-20s INVALID (dead zone %.2fm swallows range %.2fm)\n",
				cam.Name, res.Physics.MinRangeM, res.Physics.MaxDistM)
			continue
		}

		maxDist := fmt.Sprintf("%.2fm", res.Physics.MaxDistM)
		if res.Physics.Infinite {
			maxDist = "unbounded (capped at " + fmt.Sprintf("%.0fm", cam.Settings.MaxRange) + ")"
		}
		fmt.Printf("%-20s span=%.1f° points=%d deadzone=%.2fm max=%s zones=%d\n",
			cam.Name, cam.Settings.Span(), len(res.Points), res.Physics.MinRangeM, maxDist, len(res.Zones))
	}
	return nil
}

// newStore opens the configured sqlite store, or an in-memory one for
// development.
func newStore(cfg *config.Config, mem bool) (store.Store, error) {
	if mem {
		debug.Info("Using in-memory store (development mode)")
		return store.NewMemoryStore(), nil
	}
	debug.Value("SQLite path", cfg.Storage.SQLitePath)
	return store.OpenSQLite(cfg.Storage.SQLitePath)
}

// flagWasSet reports whether a flag was given on the command line.
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
