package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/flow"
	"github.com/san-kum/efield/internal/heatmap"
	"github.com/san-kum/efield/internal/input"
)

const (
	DefaultMinX = -4.0
	DefaultMaxX = 4.0
	DefaultMinY = -2.75
	DefaultMaxY = 2.75

	DefaultScenePath  = "scene.json"
	DefaultDebounceMs = 750
)

type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Viewport ViewportConfig `yaml:"viewport"`
	Solver   SolverConfig   `yaml:"solver"`
	Flow     FlowConfig     `yaml:"flow"`
	Input    InputConfig    `yaml:"input"`
	Save     SaveConfig     `yaml:"save"`
}

type GridConfig struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type ViewportConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type SolverConfig struct {
	Softening float64 `yaml:"softening"`
}

type FlowConfig struct {
	CarriersPerSource int     `yaml:"carriers_per_source"`
	SpeedBase         float64 `yaml:"speed_base"`
	MaxAge            int     `yaml:"max_age"`
	SinkRadius        float64 `yaml:"sink_radius"`
	SeedRadius        float64 `yaml:"seed_radius"`
}

type InputConfig struct {
	MouseRadius    float64 `yaml:"mouse_radius"`
	TouchFactor    float64 `yaml:"touch_factor"`
	DragDeadZone   float64 `yaml:"drag_dead_zone"`
	PlaceMagnitude float64 `yaml:"place_magnitude"`
}

type SaveConfig struct {
	Path       string `yaml:"path"`
	DebounceMs int    `yaml:"debounce_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid:     GridConfig{W: heatmap.DefaultGridW, H: heatmap.DefaultGridH},
		Viewport: ViewportConfig{MinX: DefaultMinX, MinY: DefaultMinY, MaxX: DefaultMaxX, MaxY: DefaultMaxY},
		Solver:   SolverConfig{Softening: field.DefaultSoftening},
		Flow: FlowConfig{
			CarriersPerSource: flow.DefaultCarriersPerSource,
			SpeedBase:         flow.DefaultSpeedBase,
			MaxAge:            flow.DefaultMaxAge,
			SinkRadius:        flow.DefaultSinkRadius,
			SeedRadius:        flow.DefaultSeedRadius,
		},
		Input: InputConfig{
			MouseRadius:    input.DefaultMouseRadius,
			TouchFactor:    input.DefaultTouchFactor,
			DragDeadZone:   input.DefaultDragDeadZone,
			PlaceMagnitude: input.DefaultPlaceMagnitude,
		},
		Save: SaveConfig{Path: DefaultScenePath, DebounceMs: DefaultDebounceMs},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Grid.W <= 0 || c.Grid.H <= 0 {
		return fmt.Errorf("grid dimensions must be positive: %dx%d", c.Grid.W, c.Grid.H)
	}
	if c.Viewport.MaxX <= c.Viewport.MinX || c.Viewport.MaxY <= c.Viewport.MinY {
		return fmt.Errorf("viewport is degenerate: %+v", c.Viewport)
	}
	if c.Solver.Softening <= 0 {
		return fmt.Errorf("softening must be positive: %v", c.Solver.Softening)
	}
	if c.Flow.CarriersPerSource <= 0 || c.Flow.SpeedBase <= 0 || c.Flow.MaxAge <= 0 {
		return fmt.Errorf("flow parameters must be positive: %+v", c.Flow)
	}
	if c.Input.TouchFactor < 1 {
		return fmt.Errorf("touch factor must be at least 1: %v", c.Input.TouchFactor)
	}
	if c.Input.MouseRadius <= 0 || c.Input.DragDeadZone < 0 {
		return fmt.Errorf("input radii out of range: %+v", c.Input)
	}
	if c.Save.DebounceMs < 0 {
		return fmt.Errorf("save debounce must not be negative: %d", c.Save.DebounceMs)
	}
	return nil
}
