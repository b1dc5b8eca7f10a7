// Package config holds the immutable configuration for Iron Canvas.
//
// A Config is built once at startup, either from Default or by overlaying a
// YAML file on top of the defaults, and is then passed by value to every
// component constructor.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Camera   Camera   `yaml:"camera"`
	Gesture  Gesture  `yaml:"gesture"`
	Brush    Brush    `yaml:"brush"`
	Palette  Palette  `yaml:"palette"`
	Glow     Glow     `yaml:"glow"`
	HUD      HUD      `yaml:"hud"`
	Audio    Audio    `yaml:"audio"`
	Detector Detector `yaml:"detector"`
	Window   Window   `yaml:"window"`
	Journal  Journal  `yaml:"journal"`
	Preview  Preview  `yaml:"preview"`
	Tray     bool     `yaml:"tray"`
}

// Camera configures the frame source.
type Camera struct {
	Device int `yaml:"device"`
	// File, when set, replays a video file instead of opening Device.
	File   string `yaml:"file"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
	Mirror bool   `yaml:"mirror"`
}

// Gesture holds the thresholds of the gesture state machine.
type Gesture struct {
	// PinchThreshold is the index/thumb distance in pixels below which the hand is pinching.
	PinchThreshold float64 `yaml:"pinch_threshold"`
	// Smoothing is the cursor smoothing factor in (0,1]. Higher tracks faster.
	Smoothing float64 `yaml:"smoothing"`
	// GuardLine is the y coordinate the cursor must be below for drawing to happen.
	GuardLine int `yaml:"guard_line"`
}

// Brush configures stroke geometry.
type Brush struct {
	Size int `yaml:"size"`
}

// Palette configures the radial colour arc.
type Palette struct {
	CenterX     int `yaml:"center_x"`
	CenterY     int `yaml:"center_y"`
	Radius      int `yaml:"radius"`
	Thickness   int `yaml:"thickness"`
	SelectShift int `yaml:"select_shift"`
	HoverBoost  int `yaml:"hover_boost"`
	Default     int `yaml:"default"`
}

// Glow configures the bloom compositor.
type Glow struct {
	Enabled       bool    `yaml:"enabled"`
	Scale         float64 `yaml:"scale"`
	Kernel        int     `yaml:"kernel"`
	SharpWeight   float64 `yaml:"sharp_weight"`
	GlowWeight    float64 `yaml:"glow_weight"`
	MaskThreshold float64 `yaml:"mask_threshold"`
}

// HUD configures the hand overlay.
type HUD struct {
	OverlayWeight float64 `yaml:"overlay_weight"`
}

// Audio configures the tone feedback loop.
type Audio struct {
	Enabled bool          `yaml:"enabled"`
	Tone    time.Duration `yaml:"tone"`
	Idle    time.Duration `yaml:"idle"`
	BaseHz  float64       `yaml:"base_hz"`
	HzPerPx float64       `yaml:"hz_per_px"`
	MinHz   int           `yaml:"min_hz"`
	MaxHz   int           `yaml:"max_hz"`
}

// Detector configures hand landmark detection.
type Detector struct {
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
	// Script overrides the location of the MediaPipe service script.
	Script string `yaml:"script"`
	// Python overrides the interpreter used to run Script.
	Python string `yaml:"python"`
}

// Window configures the display.
type Window struct {
	Title    string `yaml:"title"`
	Headless bool   `yaml:"headless"`
	QuitKey  string `yaml:"quit_key"`
	ClearKey string `yaml:"clear_key"`
}

// Journal configures the optional SQLite session journal. An empty Path disables it.
type Journal struct {
	Path string `yaml:"path"`
}

// Preview configures the optional local preview server. An empty Addr disables it.
type Preview struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration the original Iron Canvas shipped with.
func Default() Config {
	return Config{
		Camera: Camera{
			Device: 0,
			Width:  1280,
			Height: 720,
			FPS:    30,
			Mirror: true,
		},
		Gesture: Gesture{
			PinchThreshold: 40,
			Smoothing:      0.6,
			GuardLine:      200,
		},
		Brush: Brush{Size: 8},
		Palette: Palette{
			CenterX:     640,
			CenterY:     0,
			Radius:      150,
			Thickness:   60,
			SelectShift: 15,
			HoverBoost:  10,
			Default:     4,
		},
		Glow: Glow{
			Enabled:       true,
			Scale:         0.2,
			Kernel:        15,
			SharpWeight:   1.0,
			GlowWeight:    1.5,
			MaskThreshold: 10,
		},
		HUD: HUD{OverlayWeight: 0.7},
		Audio: Audio{
			Enabled: true,
			Tone:    40 * time.Millisecond,
			Idle:    50 * time.Millisecond,
			BaseHz:  200,
			HzPerPx: 5,
			MinHz:   100,
			MaxHz:   800,
		},
		Detector: Detector{
			MaxHands:        1,
			MinConfidence:   0.7,
			MinTrackingConf: 0.5,
		},
		Window: Window{
			Title:    "Iron Canvas Pro",
			QuitKey:  "q",
			ClearKey: "c",
		},
	}
}

// Load reads a YAML file and overlays it on Default. Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports the first out-of-range value, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return invalid("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	case c.Gesture.Smoothing <= 0 || c.Gesture.Smoothing > 1:
		return invalid("gesture.smoothing %v must be in (0,1]", c.Gesture.Smoothing)
	case c.Gesture.PinchThreshold <= 0:
		return invalid("gesture.pinch_threshold %v must be positive", c.Gesture.PinchThreshold)
	case c.Brush.Size <= 0:
		return invalid("brush.size %d must be positive", c.Brush.Size)
	case c.Palette.Radius <= 0 || c.Palette.Thickness <= 0:
		return invalid("palette radius and thickness must be positive")
	case c.Palette.Default < 0 || c.Palette.Default >= PaletteSize:
		return invalid("palette.default %d out of range [0,%d)", c.Palette.Default, PaletteSize)
	case c.Glow.Enabled && (c.Glow.Scale <= 0 || c.Glow.Scale > 1):
		return invalid("glow.scale %v must be in (0,1]", c.Glow.Scale)
	case c.Glow.Enabled && (c.Glow.Kernel <= 0 || c.Glow.Kernel%2 == 0):
		return invalid("glow.kernel %d must be a positive odd number", c.Glow.Kernel)
	case c.HUD.OverlayWeight < 0 || c.HUD.OverlayWeight > 1:
		return invalid("hud.overlay_weight %v must be in [0,1]", c.HUD.OverlayWeight)
	case c.Audio.Tone <= 0 || c.Audio.Idle <= 0:
		return invalid("audio tone and idle durations must be positive")
	case c.Audio.MinHz <= 0 || c.Audio.MinHz > c.Audio.MaxHz:
		return invalid("audio frequency range [%d,%d] is empty", c.Audio.MinHz, c.Audio.MaxHz)
	case len(c.Window.QuitKey) != 1:
		return invalid("window.quit_key %q must be a single character", c.Window.QuitKey)
	case c.Window.ClearKey != "" && len(c.Window.ClearKey) != 1:
		return invalid("window.clear_key %q must be a single character", c.Window.ClearKey)
	}
	return nil
}

// PaletteSize is the fixed number of palette entries.
const PaletteSize = 8

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
