// Package config loads graphpane settings from YAML. The file is
// optional: a missing file yields defaults, and partial files only
// override what they name.
//
// Search order:
//  1. $GRAPHPANE_CONFIG
//  2. ./graphpane.yaml
//  3. $XDG_CONFIG_HOME/graphpane/config.yaml
//  4. ~/.config/graphpane/config.yaml
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/graphpane/graphpane/physics"
	"github.com/graphpane/graphpane/render"
)

const (
	// EnvConfigPath overrides the config search path.
	EnvConfigPath = "GRAPHPANE_CONFIG"

	// FileName is the config file looked up in the working directory.
	FileName = "graphpane.yaml"

	dirName = "graphpane"
)

var validate = validator.New()

// Config is the root of the settings file.
type Config struct {
	Panel  PanelConfig  `yaml:"panel"`
	Layout LayoutConfig `yaml:"layout"`
	Render RenderConfig `yaml:"render"`
	Server ServerConfig `yaml:"server"`
}

// PanelConfig sets the display geometry and frame rate.
type PanelConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
	FPS    int     `yaml:"fps" validate:"min=1,max=240"`
}

// FrameInterval converts the frame rate into a ticker interval.
func (p PanelConfig) FrameInterval() time.Duration {
	if p.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(p.FPS)
}

// LayoutConfig selects and tunes the force strategy.
type LayoutConfig struct {
	Strategy       string  `yaml:"strategy" validate:"oneof=spring spring-gravity noise-drift"`
	Repulsion      float64 `yaml:"repulsion" validate:"gt=0"`
	Attraction     float64 `yaml:"attraction" validate:"gt=0"`
	Scale          float64 `yaml:"scale" validate:"gt=0"`
	Acceleration   float64 `yaml:"acceleration" validate:"gt=0"`
	Gravity        float64 `yaml:"gravity" validate:"gt=0"`
	DriftAmplitude float64 `yaml:"drift_amplitude" validate:"gt=0"`
	Seed           int64   `yaml:"seed"`
}

// Build constructs the strategy this section describes, with its tuned
// constants. physics.ByName covers the default-constant case.
func (l LayoutConfig) Build() (physics.Strategy, error) {
	switch l.Strategy {
	case "spring":
		return physics.NewSpringSystem(l.Repulsion, l.Attraction, l.Scale, l.Acceleration)
	case "spring-gravity":
		return physics.NewSpringGravity(l.Repulsion, l.Attraction, l.Scale, l.Acceleration, l.Gravity)
	case "noise-drift":
		base, err := physics.NewSpringGravity(l.Repulsion, l.Attraction, l.Scale, l.Acceleration, l.Gravity)
		if err != nil {
			return nil, err
		}
		return physics.NewNoiseDrift(base, l.DriftAmplitude, l.Seed)
	}
	return nil, fmt.Errorf("%w: %q", physics.ErrUnknownStrategy, l.Strategy)
}

// RenderConfig sets the output format and presentation.
type RenderConfig struct {
	Format     string `yaml:"format" validate:"oneof=svg ascii json dot"`
	Theme      string `yaml:"theme" validate:"oneof=default midnight"`
	Background string `yaml:"background" validate:"omitempty,hexcolor"`

	// Labels defaults to on; it must be set to false explicitly.
	Labels     *bool `yaml:"labels"`
	EdgeLabels bool  `yaml:"edge_labels"`
}

// Options converts the section into renderer options.
func (r RenderConfig) Options() *render.Options {
	opts := render.NewDefaultOptions()
	if r.Theme == "midnight" {
		opts.Palette = render.MidnightPalette()
	}
	opts.Background = r.Background
	opts.ShowLabels = r.Labels == nil || *r.Labels
	opts.ShowEdgeLabels = r.EdgeLabels
	return opts
}

// ServerConfig sets the HTTP listener.
type ServerConfig struct {
	Addr         string   `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// Duration is a time.Duration that reads and writes YAML in the
// "250ms" / "10s" notation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the wrapped value.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Panel: PanelConfig{Width: 800, Height: 600, FPS: 30},
		Layout: LayoutConfig{
			Strategy:       "spring-gravity",
			Repulsion:      physics.DefaultRepulsion,
			Attraction:     physics.DefaultAttraction,
			Scale:          physics.DefaultScale,
			Acceleration:   physics.DefaultAcceleration,
			Gravity:        physics.DefaultGravity,
			DriftAmplitude: physics.DefaultDriftAmplitude,
			Seed:           1,
		},
		Render: RenderConfig{Format: "svg", Theme: "default"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
		},
	}
}

// Load finds and loads the config file, or returns defaults if none is
// found. The returned path is empty when defaults were used.
func Load() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath loads config from a specific file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the settings against their constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("config: %s: fails %q constraint", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("config: validate: %w", err)
}

// applyDefaults fills unset fields. Only exact zero values count as
// unset, so invalid negatives still reach validation.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Panel.Width == 0 {
		c.Panel.Width = d.Panel.Width
	}
	if c.Panel.Height == 0 {
		c.Panel.Height = d.Panel.Height
	}
	if c.Panel.FPS == 0 {
		c.Panel.FPS = d.Panel.FPS
	}

	if c.Layout.Strategy == "" {
		c.Layout.Strategy = d.Layout.Strategy
	}
	if c.Layout.Repulsion == 0 {
		c.Layout.Repulsion = d.Layout.Repulsion
	}
	if c.Layout.Attraction == 0 {
		c.Layout.Attraction = d.Layout.Attraction
	}
	if c.Layout.Scale == 0 {
		c.Layout.Scale = d.Layout.Scale
	}
	if c.Layout.Acceleration == 0 {
		c.Layout.Acceleration = d.Layout.Acceleration
	}
	if c.Layout.Gravity == 0 {
		c.Layout.Gravity = d.Layout.Gravity
	}
	if c.Layout.DriftAmplitude == 0 {
		c.Layout.DriftAmplitude = d.Layout.DriftAmplitude
	}
	if c.Layout.Seed == 0 {
		c.Layout.Seed = d.Layout.Seed
	}

	if c.Render.Format == "" {
		c.Render.Format = d.Render.Format
	}
	if c.Render.Theme == "" {
		c.Render.Theme = d.Render.Theme
	}

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
}

// FindPath returns the first config file the search order hits, or an
// empty string.
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(FileName) {
		if abs, err := filepath.Abs(FileName); err == nil {
			return abs
		}
		return FileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, dirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", dirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
