package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lumagrid/internal/binding"
	"github.com/san-kum/lumagrid/internal/brightness"
	"github.com/san-kum/lumagrid/internal/modulation"
	"github.com/san-kum/lumagrid/internal/params"
)

const (
	DefaultGridWidth = 50
	DefaultSlots     = 2
	DefaultStrategy  = "continuous_harmonic"
	DefaultFPS       = 30
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	GridWidth     int                `yaml:"grid_width"`
	Slots         int                `yaml:"slots"`
	Strategy      string             `yaml:"strategy"`
	Sampling      string             `yaml:"sampling"`
	Axis          string             `yaml:"axis"`
	Seed          int64              `yaml:"seed"`
	CullThreshold float64            `yaml:"cull_threshold"`
	FPS           int                `yaml:"fps"`
	Layout        binding.Layout     `yaml:"layout"`
	Params        map[string]float64 `yaml:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		GridWidth: DefaultGridWidth,
		Slots:     DefaultSlots,
		Strategy:  DefaultStrategy,
		Sampling:  brightness.Point.String(),
		Axis:      modulation.AxisY.String(),
		FPS:       DefaultFPS,
		Layout:    binding.DefaultLayout(),
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto decodes the file over a copy of base, so keys the file omits keep
// their base values. Params merge key by key.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = maps.Clone(c.Params)
	}
	return &out
}

// Validate checks the structural fields. Strategy parameters are checked when
// the engine applies them.
func (c *Config) Validate() error {
	if c.GridWidth <= 0 {
		return fmt.Errorf("%w: grid_width must be positive, got %d", ErrInvalid, c.GridWidth)
	}
	if c.Slots < 1 || c.Slots > params.MaxSlots {
		return fmt.Errorf("%w: slots must be in [1,%d], got %d", ErrInvalid, params.MaxSlots, c.Slots)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	}
	if c.CullThreshold < 0 {
		return fmt.Errorf("%w: cull_threshold must be non-negative, got %v", ErrInvalid, c.CullThreshold)
	}
	if c.Layout.Spacing <= 0 {
		return fmt.Errorf("%w: layout.spacing must be positive, got %v", ErrInvalid, c.Layout.Spacing)
	}
	if c.Layout.Size < 0 {
		return fmt.Errorf("%w: layout.size must be non-negative, got %v", ErrInvalid, c.Layout.Size)
	}
	if _, err := brightness.ParseSampling(c.Sampling); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := modulation.ParseAxis(c.Axis); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// FrameMs is the duration of one frame at the configured rate.
func (c *Config) FrameMs() float64 {
	return 1000 / float64(c.FPS)
}
