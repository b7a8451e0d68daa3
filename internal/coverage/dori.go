package coverage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cjeanneret/PlanCam/internal/debug"
	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

// minTanHalfFov guards the division when the horizontal FOV collapses
// (or exceeds 180°, where the flat-plane model stops making sense).
const minTanHalfFov = 0.001

// DoriLevel is one of the four IEC 62676-4 performance levels.
type DoriLevel string

const (
	Detection      DoriLevel = "detection"
	Observation    DoriLevel = "observation"
	Recognition    DoriLevel = "recognition"
	Identification DoriLevel = "identification"
)

// DoriZone is one nested visibility zone: the distance out to which
// the camera resolves enough pixels per meter for its level, and the
// wall-clipped polygon covering it.
type DoriZone struct {
	Level     DoriLevel `json:"level"`
	PPM       float64   `json:"ppm"`
	DistanceM float64   `json:"distance_m"`
	RadiusPx  float64   `json:"radius_px"`
	Points    Polygon   `json:"points"`
}

// ParseResolutionWidth extracts the usable horizontal pixel width from
// a resolution string, either "WxH" (e.g. "1920x1080") or "<n>MP"
// (e.g. "4MP").
//
// In aspect-ratio mode (corridor format, sensor rotated 9:16) the
// smaller dimension faces horizontally, so "WxH" yields min(W,H) and
// megapixels resolve against a 9/16 ratio; otherwise max(W,H) and
// 16/9.
func ParseResolutionWidth(resolution string, aspectRatioMode bool) (float64, error) {
	res := strings.TrimSpace(strings.ToLower(resolution))
	if res == "" {
		return 0, fmt.Errorf("empty resolution")
	}

	if strings.HasSuffix(res, "mp") {
		mp, err := strconv.ParseFloat(strings.TrimSuffix(res, "mp"), 64)
		if err != nil || mp <= 0 {
			return 0, fmt.Errorf("invalid megapixel resolution %q", resolution)
		}
		ratio := 16.0 / 9.0
		if aspectRatioMode {
			ratio = 9.0 / 16.0
		}
		return math.Sqrt(mp * 1e6 * ratio), nil
	}

	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid resolution %q, want WxH or <n>MP", resolution)
	}
	w, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, fmt.Errorf("invalid resolution %q", resolution)
	}
	if aspectRatioMode {
		return math.Min(w, h), nil
	}
	return math.Max(w, h), nil
}

// ZoneDistanceM returns the distance in meters out to which a camera
// with the given horizontal pixel width and FOV span delivers at
// least ppm pixels per meter.
// Formula: distance = width / (2 × ppm × tan(span/2))
func ZoneDistanceM(widthPx, spanDeg, ppm float64) float64 {
	tanHalf := math.Tan(geometry.ToRadians(spanDeg) / 2.0)
	if tanHalf <= minTanHalfFov {
		return 0
	}
	return widthPx / (2.0 * ppm * tanHalf)
}

// BuildDoriZones computes the four nested DORI zone polygons for a
// camera, largest distance first (Detection down to Identification) so
// nearer zones visually overlay farther ones.
//
// Returns nil when DORI is disabled, the resolution is missing or
// unparseable, or the FOV is degenerate; the caller falls back to the
// plain coverage polygon.
func (e *Engine) BuildDoriZones(center geometry.Point, s *plan.CoverageSettings, walls []geometry.WallSegment) []DoriZone {
	if !s.DoriEnabled || s.Resolution == "" {
		return nil
	}

	widthPx, err := ParseResolutionWidth(s.Resolution, s.AspectRatioMode)
	if err != nil {
		debug.Verbose("dori: %v", err)
		return nil
	}

	span := s.Span()
	tanHalf := math.Tan(geometry.ToRadians(span) / 2.0)
	if tanHalf <= minTanHalfFov {
		debug.Verbose("dori: degenerate FOV span %.2f°, skipping zones", span)
		return nil
	}

	ppmScale := e.cfg.PixelsPerMeter()
	maxRangePx := s.MaxRange * ppmScale

	levels := []struct {
		level DoriLevel
		ppm   float64
	}{
		{Detection, e.cfg.Dori.DetectionPPM},
		{Observation, e.cfg.Dori.ObservationPPM},
		{Recognition, e.cfg.Dori.RecognitionPPM},
		{Identification, e.cfg.Dori.IdentificationPPM},
	}

	zones := make([]DoriZone, 0, len(levels))
	for _, lv := range levels {
		distM := widthPx / (2.0 * lv.ppm * tanHalf)
		radiusPx := math.Min(distM*ppmScale, maxRangePx)
		debug.Zone(string(lv.level), distM, radiusPx)

		if radiusPx <= e.cfg.Raycast.ZoneMinRadiusPx || radiusPx <= s.MinRange {
			continue
		}

		zoneSettings := *s
		zoneSettings.Radius = radiusPx
		points, err := e.BuildCoverage(center, &zoneSettings, walls)
		if err != nil {
			continue
		}

		zones = append(zones, DoriZone{
			Level:     lv.level,
			PPM:       lv.ppm,
			DistanceM: distM,
			RadiusPx:  radiusPx,
			Points:    points,
		})
	}

	return zones
}
