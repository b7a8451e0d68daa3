package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (recompute summaries, physics results)
	LevelLive    = 2 // Live info (drag transitions, per-recompute stats)
	LevelVerbose = 3 // Verbose (ray counts, zone distances, angles)
	LevelTrace   = 4 // Trace (per-ray wall hits, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (recompute summaries, physics results)
// 2 = live info (drag transitions, stores, sessions)
// 3 = verbose (ray counts, zone distances, span/mid angles)
// 4 = trace (per-ray wall hits)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stdout, "[PlanCam] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, e.g. to mirror it onto the SSE
// status stream in web mode.
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelOff && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Coverage prints an important coverage summary (level 1).
func Coverage(camera string, points, walls int) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] Coverage %s: %d points against %d walls", camera, points, walls)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Handle prints a drag-handle transition (level 2).
func Handle(camera, from, to string) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Session %s: %s -> %s", camera, from, to)
	}
}

// Recompute prints a per-recompute stat line (level 2).
func Recompute(camera string, span float64, rays int) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Recompute %s: span=%.1f° rays=%d", camera, span, rays)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// Printf is an alias for Verbose for compatibility.
func Printf(format string, args ...interface{}) {
	Verbose(format, args...)
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Zone prints a DORI zone distance (level 3).
func Zone(name string, distanceM, radiusPx float64) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Zone %s: %.2fm (%.1fpx)", name, distanceM, radiusPx)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// Ray prints a per-ray wall hit (level 4).
func Ray(index int, angle, distance float64, hit bool) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[RAY] i=%d angle=%.2f° dist=%.2f hit=%v", index, angle, distance, hit)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt is a helper function that returns a formatted string
// only if debug is enabled (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
