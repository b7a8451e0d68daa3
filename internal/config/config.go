package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScaleConfig maps plan pixels to real-world meters.
type ScaleConfig struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter"` // e.g., 10 px = 1 m
}

// CameraDefaults holds the settings a freshly placed camera receives.
type CameraDefaults struct {
	HeightM        float64 `yaml:"height_m"`         // mounting height (default: 3 m)
	TiltDeg        float64 `yaml:"tilt_deg"`         // tilt below horizontal (default: 25°)
	VerticalFOVDeg float64 `yaml:"vertical_fov_deg"` // vertical FOV (default: 60°)
	MaxRangeM      float64 `yaml:"max_range_m"`      // user range cap (default: 20 m)
	Opacity        float64 `yaml:"opacity"`          // fill opacity 0-1
	EdgeStyle      string  `yaml:"edge_style"`       // solid, dashed, dotted
	Projection     string  `yaml:"projection"`       // circular, rectangular
	BaseColor      string  `yaml:"base_color"`       // hex fill color
}

// DoriConfig holds the pixels-per-meter thresholds for the four DORI
// levels (IEC 62676-4).
type DoriConfig struct {
	DetectionPPM      float64 `yaml:"detection_ppm"`      // default: 25
	ObservationPPM    float64 `yaml:"observation_ppm"`    // default: 62.5
	RecognitionPPM    float64 `yaml:"recognition_ppm"`    // default: 125
	IdentificationPPM float64 `yaml:"identification_ppm"` // default: 250
}

// RaycastConfig holds the ray-casting tuning constants. The
// rectangular-correction window and cosine floor are visual-tuning
// values; changing them changes the rendered shapes.
type RaycastConfig struct {
	FullCircleRays    int     `yaml:"full_circle_rays"`     // rays for a 360° camera (default: 180)
	MinRays           int     `yaml:"min_rays"`             // lower bound for narrow spans (default: 20)
	RectWindowRad     float64 `yaml:"rect_window_rad"`      // correction window around mid-angle (default: 1.4)
	RectCosFloor      float64 `yaml:"rect_cos_floor"`       // cosine floor guarding the asymptote (default: 0.1)
	RectMaxSpanDeg    float64 `yaml:"rect_max_span_deg"`    // spans above this skip rectangular correction (default: 170)
	DeadZoneEpsilonPx float64 `yaml:"dead_zone_epsilon_px"` // min ranges below this draw no dead zone (default: 0.1)
	ZoneMinRadiusPx   float64 `yaml:"zone_min_radius_px"`   // DORI zones thinner than this are skipped (default: 0.1)
}

// StorageConfig locates the plan database.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"` // e.g., "plancam.db"
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int    `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	ListenAddr string `yaml:"listen_addr"` // web listen address (default: ":8080")
}

// Config aggregates all application configuration.
type Config struct {
	Scale    ScaleConfig    `yaml:"scale"`
	Camera   CameraDefaults `yaml:"camera"`
	Dori     DoriConfig     `yaml:"dori"`
	Raycast  RaycastConfig  `yaml:"raycast"`
	Storage  StorageConfig  `yaml:"storage"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values and validates the ranges that have no
// sensible fallback.
func (c *Config) applyDefaults() error {
	if c.Scale.PixelsPerMeter < 0 {
		return fmt.Errorf("scale.pixels_per_meter must be > 0, got %.2f", c.Scale.PixelsPerMeter)
	}
	if c.Scale.PixelsPerMeter == 0 {
		c.Scale.PixelsPerMeter = 10
	}

	if c.Camera.HeightM < 0 {
		return fmt.Errorf("camera.height_m must be > 0, got %.2f", c.Camera.HeightM)
	}
	if c.Camera.HeightM == 0 {
		c.Camera.HeightM = 3
	}
	if c.Camera.TiltDeg < 0 || c.Camera.TiltDeg > 90 {
		return fmt.Errorf("camera.tilt_deg must be between 0 and 90, got %.2f", c.Camera.TiltDeg)
	}
	if c.Camera.TiltDeg == 0 {
		c.Camera.TiltDeg = 25
	}
	if c.Camera.VerticalFOVDeg < 0 || c.Camera.VerticalFOVDeg > 180 {
		return fmt.Errorf("camera.vertical_fov_deg must be between 0 and 180, got %.2f", c.Camera.VerticalFOVDeg)
	}
	if c.Camera.VerticalFOVDeg == 0 {
		c.Camera.VerticalFOVDeg = 60
	}
	if c.Camera.MaxRangeM < 0 {
		return fmt.Errorf("camera.max_range_m must be > 0, got %.2f", c.Camera.MaxRangeM)
	}
	if c.Camera.MaxRangeM == 0 {
		c.Camera.MaxRangeM = 20
	}
	if c.Camera.Opacity < 0 || c.Camera.Opacity > 1 {
		return fmt.Errorf("camera.opacity must be between 0 and 1, got %.2f", c.Camera.Opacity)
	}
	if c.Camera.Opacity == 0 {
		c.Camera.Opacity = 0.35
	}
	if c.Camera.EdgeStyle == "" {
		c.Camera.EdgeStyle = "solid"
	}
	if c.Camera.Projection == "" {
		c.Camera.Projection = "circular"
	}
	if c.Camera.BaseColor == "" {
		c.Camera.BaseColor = "#2f81f7"
	}

	if c.Dori.DetectionPPM == 0 {
		c.Dori.DetectionPPM = 25
	}
	if c.Dori.ObservationPPM == 0 {
		c.Dori.ObservationPPM = 62.5
	}
	if c.Dori.RecognitionPPM == 0 {
		c.Dori.RecognitionPPM = 125
	}
	if c.Dori.IdentificationPPM == 0 {
		c.Dori.IdentificationPPM = 250
	}

	if c.Raycast.FullCircleRays == 0 {
		c.Raycast.FullCircleRays = 180
	}
	if c.Raycast.MinRays == 0 {
		c.Raycast.MinRays = 20
	}
	if c.Raycast.RectWindowRad == 0 {
		c.Raycast.RectWindowRad = 1.4
	}
	if c.Raycast.RectCosFloor == 0 {
		c.Raycast.RectCosFloor = 0.1
	}
	if c.Raycast.RectMaxSpanDeg == 0 {
		c.Raycast.RectMaxSpanDeg = 170
	}
	if c.Raycast.DeadZoneEpsilonPx == 0 {
		c.Raycast.DeadZoneEpsilonPx = 0.1
	}
	if c.Raycast.ZoneMinRadiusPx == 0 {
		c.Raycast.ZoneMinRadiusPx = 0.1
	}

	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "plancam.db"
	}

	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	if c.Defaults.ListenAddr == "" {
		c.Defaults.ListenAddr = ":8080"
	}

	return nil
}

// PixelsPerMeter returns the plan scale.
func (c *Config) PixelsPerMeter() float64 {
	return c.Scale.PixelsPerMeter
}

// MetersToPixels converts a real-world distance to plan pixels.
func (c *Config) MetersToPixels(m float64) float64 {
	return m * c.Scale.PixelsPerMeter
}

// PixelsToMeters converts a plan distance to meters.
func (c *Config) PixelsToMeters(px float64) float64 {
	if c.Scale.PixelsPerMeter == 0 {
		return 0
	}
	return px / c.Scale.PixelsPerMeter
}
