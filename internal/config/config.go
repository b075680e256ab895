package config

import (
	"fmt"
	"os"

	"github.com/san-kum/springfarm/internal/topology"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntegrator  = "leapfrog"
	DefaultSteps       = 1000
	DefaultRecordEvery = 10
	DefaultTickMS      = 50
)

// Config is a scene file: the initial configuration plus how to run it.
type Config struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Integrator  string                 `yaml:"integrator"`
	Steps       int                    `yaml:"steps"`
	RecordEvery int                    `yaml:"record_every"`
	TickMS      int                    `yaml:"tick_ms"`
	Scene       topology.Configuration `yaml:"scene"`
}

// DefaultScene is four atoms in a row, the outer pairs stiffly coupled and
// the middle pair soft, with the two left atoms moving towards each other.
func DefaultScene() topology.Configuration {
	return topology.Configuration{
		Atoms: []topology.Atom{
			{ID: 1, Mass: 1, X: -80, Y: 0, VX: 20, VY: 0, Color: "red"},
			{ID: 2, Mass: 1, X: -30, Y: 0, VX: -20, VY: 0, Color: "blue"},
			{ID: 3, Mass: 1, X: 30, Y: 0, VX: 0, VY: 0, Color: "green"},
			{ID: 4, Mass: 1, X: 80, Y: 0, VX: 0, VY: 0, Color: "violet"},
		},
		Springs: []topology.Spring{
			{ID: 1, Atom1: 1, Atom2: 2, Req: 50, K: 1},
			{ID: 2, Atom1: 2, Atom2: 3, Req: 60, K: 0.1},
			{ID: 3, Atom1: 3, Atom2: 4, Req: 50, K: 1},
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		Description: "four atoms in a row, two of them colliding",
		Integrator:  DefaultIntegrator,
		Steps:       DefaultSteps,
		RecordEvery: DefaultRecordEvery,
		TickMS:      DefaultTickMS,
		Scene:       DefaultScene(),
	}
}

// Load reads a scene file. Missing run settings keep their defaults; a file
// that names atoms or springs replaces the default scene entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Scene = topology.Configuration{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Scene.Atoms) == 0 && len(cfg.Scene.Springs) == 0 {
		cfg.Scene = DefaultScene()
	}
	if err := cfg.Scene.Validate(); err != nil {
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

// Configuration returns a private copy of the scene.
func (c *Config) Configuration() topology.Configuration {
	return c.Scene.Clone()
}
