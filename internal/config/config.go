package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/flux-particles/internal/shape"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720

	// Camera
	CameraDistance = 15.0
	FieldOfView    = 60.0
	PointSize      = 0.15
	PointOpacity   = 0.8

	// Speed slider
	MinSpeed  = 0.1
	MaxSpeed  = 3.0
	SpeedStep = 0.1

	DefaultColor = "#ff0080"
	DefaultCount = 8000
	DefaultSpeed = 1.0

	RendererEbiten   = "ebiten"
	RendererTerminal = "terminal"
)

// Palette is the set of colors the color control cycles through. "spectrum"
// hue-cycles every particle instead of using one color.
var Palette = []string{"#ff0080", "#00e5ff", "#ffd166", "#7cff6b", "#b388ff", "#ffffff", "spectrum"}

var (
	ErrInvalidCount    = errors.New("particle count must not be negative")
	ErrInvalidSpeed    = errors.New("speed out of range")
	ErrInvalidRenderer = errors.New("unknown renderer")
	ErrInvalidWindow   = errors.New("window size must be positive")
	ErrInvalidFeed     = errors.New("gesture feed path must start with /")
)

// Particles is the user-facing particle configuration. Color is opaque to the
// field; only renderers interpret it.
type Particles struct {
	Color string     `yaml:"color"`
	Shape shape.Kind `yaml:"shape"`
	Count int        `yaml:"count"`
	Speed float64    `yaml:"speed"`
	// Seed makes generation reproducible; empty means time-based.
	Seed  string  `yaml:"seed,omitempty"`
	Noise float64 `yaml:"noise"`
}

// SeedValue hashes Seed into an RNG seed. ok is false when Seed is empty.
func (p Particles) SeedValue() (seed uint64, ok bool) {
	if p.Seed == "" {
		return 0, false
	}
	return xxhash.Sum64String(p.Seed), true
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Gesture struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
	// AudioGain scales loudness into openness when audio drives the signal.
	AudioGain float64 `yaml:"audioGain"`
}

type Describe struct {
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"apiKeyEnv"`
	Timeout   time.Duration `yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (d Describe) APIKey() string {
	if d.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(d.APIKeyEnv)
}

type Log struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

type Generation struct {
	ChunkSize int `yaml:"chunkSize"`
	Workers   int `yaml:"workers"`
}

type Config struct {
	Renderer   string     `yaml:"renderer"`
	Particles  Particles  `yaml:"particles"`
	Window     Window     `yaml:"window"`
	Gesture    Gesture    `yaml:"gesture"`
	Describe   Describe   `yaml:"describe"`
	Log        Log        `yaml:"log"`
	Generation Generation `yaml:"generation"`
}

// Default mirrors the settings the visualizer starts with when no file is given.
func Default() Config {
	return Config{
		Renderer: RendererEbiten,
		Particles: Particles{
			Color: DefaultColor,
			Shape: shape.Heart,
			Count: DefaultCount,
			Speed: DefaultSpeed,
			Noise: 0.1,
		},
		Window: Window{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  "Flux Particles",
		},
		Gesture: Gesture{
			Enabled:   true,
			Listen:    "127.0.0.1:8787",
			Path:      "/gesture",
			AudioGain: 1.0,
		},
		Describe: Describe{
			Endpoint:  "https://generativelanguage.googleapis.com/",
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   10 * time.Second,
		},
		Log: Log{
			Level:    "info",
			Encoding: "console",
		},
		Generation: Generation{
			ChunkSize: shape.DefaultChunkSize,
		},
	}
}

// Load reads a YAML config on top of Default. Fields absent from the file
// keep their defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile is Load for a path. An empty path yields Default.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c Config) Validate() error {
	if err := c.Particles.Validate(); err != nil {
		return err
	}
	switch c.Renderer {
	case RendererEbiten, RendererTerminal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRenderer, c.Renderer)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return ErrInvalidWindow
	}
	if c.Gesture.Enabled && (len(c.Gesture.Path) == 0 || c.Gesture.Path[0] != '/') {
		return fmt.Errorf("%w: %q", ErrInvalidFeed, c.Gesture.Path)
	}
	return nil
}

func (p Particles) Validate() error {
	if p.Count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, p.Count)
	}
	if !(p.Speed > 0 && p.Speed <= MaxSpeed) {
		return fmt.Errorf("%w: %v not in (0, %v]", ErrInvalidSpeed, p.Speed, MaxSpeed)
	}
	if !p.Shape.Valid() {
		return fmt.Errorf("%w: %v", shape.ErrUnknownShape, p.Shape)
	}
	return nil
}

// ClampSpeed keeps a slider value inside [MinSpeed, MaxSpeed].
func ClampSpeed(v float64) float64 {
	if v < MinSpeed || v != v {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}

// NextColor returns the palette entry after current, wrapping around.
// Colors outside the palette restart it.
func NextColor(current string) string {
	for i, c := range Palette {
		if c == current {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return Palette[0]
}
