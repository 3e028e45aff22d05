package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid settings")

// Render distance bounds, in chunks.
const (
	MinRenderDistance = 1
	MaxRenderDistance = 50
)

// Settings is the full runtime configuration of the viewer and tools.
type Settings struct {
	Window    WindowSettings    `yaml:"window"`
	World     WorldSettings     `yaml:"world"`
	Streaming StreamingSettings `yaml:"streaming"`
	Camera    CameraSettings    `yaml:"camera"`

	// Catalog is a YAML block catalog; empty uses the built-in one.
	Catalog  string `yaml:"catalog"`
	LogLevel string `yaml:"log_level"`
}

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
	MaxFPS int    `yaml:"max_fps"` // 0 = uncapped
}

// WorldSettings holds world generation configuration
type WorldSettings struct {
	Seed        int64   `yaml:"seed"`
	Generator   string  `yaml:"generator"` // "noise" or "flat"
	ChunkWidth  int     `yaml:"chunk_width"`
	ChunkHeight int     `yaml:"chunk_height"`
	MaxHeight   int     `yaml:"max_height"`
	Scale       float64 `yaml:"scale"`
	Octaves     int     `yaml:"octaves"`
}

// StreamingSettings holds chunk streaming and build configuration
type StreamingSettings struct {
	RenderDistance  int     `yaml:"render_distance"` // in chunks
	Workers         int     `yaml:"workers"`         // 0 = one per CPU
	QueueSize       int     `yaml:"queue_size"`
	BuildsPerSecond float64 `yaml:"builds_per_second"` // 0 = unlimited
	BuildBurst      int     `yaml:"build_burst"`
}

type CameraSettings struct {
	FOV         float32 `yaml:"fov"` // degrees
	Speed       float32 `yaml:"speed"`
	Sensitivity float32 `yaml:"sensitivity"`
}

// Default returns a Settings with sensible defaults.
func Default() *Settings {
	return &Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "blockworld",
			VSync:  true,
		},
		World: WorldSettings{
			Seed:        1337,
			Generator:   "noise",
			ChunkWidth:  16,
			ChunkHeight: 64,
			MaxHeight:   32,
			Scale:       1.0 / 48.0,
			Octaves:     4,
		},
		Streaming: StreamingSettings{
			RenderDistance:  8,
			QueueSize:       256,
			BuildsPerSecond: 240,
			BuildBurst:      32,
		},
		Camera: CameraSettings{
			FOV:         70,
			Speed:       12,
			Sensitivity: 0.1,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file on top of the defaults, then validates it.
func Load(path string) (*Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ClampRenderDistance limits a render distance to the supported range.
func ClampRenderDistance(distance int) int {
	// Clamp to reasonable values
	if distance < MinRenderDistance {
		distance = MinRenderDistance
	}
	if distance > MaxRenderDistance {
		distance = MaxRenderDistance
	}
	return distance
}

// Validate rejects settings that cannot work and clamps the render distance.
func (s *Settings) Validate() error {
	s.Streaming.RenderDistance = ClampRenderDistance(s.Streaming.RenderDistance)

	var errs []error
	if s.World.ChunkWidth <= 0 || s.World.ChunkHeight <= 0 {
		errs = append(errs, fmt.Errorf("chunk size %dx%d must be positive", s.World.ChunkWidth, s.World.ChunkHeight))
	}
	if s.World.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("max_height %d must be positive", s.World.MaxHeight))
	}
	switch s.World.Generator {
	case "noise", "flat":
	default:
		errs = append(errs, fmt.Errorf("unknown generator %q", s.World.Generator))
	}
	if s.Streaming.Workers < 0 || s.Streaming.QueueSize < 0 {
		errs = append(errs, errors.New("workers and queue_size must not be negative"))
	}
	if s.Streaming.BuildsPerSecond < 0 {
		errs = append(errs, errors.New("builds_per_second must not be negative"))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Level returns the slog level named by LogLevel (info when unset).
func (s *Settings) Level() slog.Level {
	l, err := parseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(name string) (slog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Merge applies file-loaded values into s, but only for fields that were
// NOT explicitly set via CLI flags. explicitFlags contains the flag names
// that were explicitly provided on the command line.
func Merge(s *Settings, fromFile *Settings, explicitFlags map[string]bool) {
	keep := *s
	*s = *fromFile
	if explicitFlags["seed"] {
		s.World.Seed = keep.World.Seed
	}
	if explicitFlags["generator"] {
		s.World.Generator = keep.World.Generator
	}
	if explicitFlags["render-distance"] {
		s.Streaming.RenderDistance = keep.Streaming.RenderDistance
	}
	if explicitFlags["workers"] {
		s.Streaming.Workers = keep.Streaming.Workers
	}
	if explicitFlags["catalog"] {
		s.Catalog = keep.Catalog
	}
	if explicitFlags["log-level"] {
		s.LogLevel = keep.LogLevel
	}
}
