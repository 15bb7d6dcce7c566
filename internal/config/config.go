package config

import (
	"fmt"
	"os"

	"github.com/san-kum/popdyn/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps     = 100
	DefaultTail      = 50
	DefaultPoints    = 300
	DefaultSweepRuns = 500
	DefaultWidth     = 80
	DefaultHeight    = 15
)

type Config struct {
	Model     string             `yaml:"model"`
	Params    map[string]float64 `yaml:"params"`
	InitState any                `yaml:"init_state"`
	Steps     int                `yaml:"steps"`
	Tail      int                `yaml:"tail"`
	Sweep     SweepConfig        `yaml:"sweep"`
	Render    RenderConfig       `yaml:"render"`
}

type SweepConfig struct {
	Param  string  `yaml:"param"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
	Steps  int     `yaml:"steps"`
	Tail   int     `yaml:"tail"`
}

type RenderConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "logistic",
		Params:    map[string]float64{"r": 2.5},
		InitState: 0.5,
		Steps:     DefaultSteps,
		Tail:      DefaultTail,
		Sweep: SweepConfig{
			Param:  "r",
			Min:    2.5,
			Max:    4.0,
			Points: DefaultPoints,
			Steps:  DefaultSweepRuns,
			Tail:   DefaultTail,
		},
		Render: RenderConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Params = nil
	cfg.InitState = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// State converts the configured initial state; nil means "use the model default".
func (c *Config) State() (dynamo.State, error) {
	if c.InitState == nil {
		return nil, nil
	}
	return dynamo.Coerce(c.InitState)
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Steps)
	}
	if _, err := c.State(); err != nil {
		return fmt.Errorf("init_state: %w", err)
	}
	if c.Tail < 0 {
		return fmt.Errorf("tail must be non-negative, got %d", c.Tail)
	}
	if c.Sweep.Points < 0 || c.Sweep.Tail < 0 || c.Sweep.Steps < 0 {
		return fmt.Errorf("sweep points, steps and tail must be non-negative")
	}
	if c.Sweep.Max < c.Sweep.Min {
		return fmt.Errorf("sweep max %g below min %g", c.Sweep.Max, c.Sweep.Min)
	}
	return nil
}

// GetParams returns the configured parameters as a model parameter set.
func (c *Config) GetParams() dynamo.Params {
	return dynamo.Params(c.Params).Clone()
}
