package config

import (
	"math"
	"sort"

	"github.com/san-kum/springfarm/internal/topology"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"pair": {
		Name: "pair", Description: "one stretched spring", Integrator: DefaultIntegrator, Steps: 600, RecordEvery: 5, TickMS: DefaultTickMS,
		Scene: topology.Configuration{
			Atoms: []topology.Atom{
				{ID: 1, Mass: 1, X: -40, Color: "red"},
				{ID: 2, Mass: 1, X: 40, Color: "blue"},
			},
			Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 50, K: 1}},
		},
	},
	"triangle": {
		Name: "triangle", Description: "three atoms at rest length, two moving", Integrator: DefaultIntegrator, Steps: 1000, RecordEvery: 10, TickMS: DefaultTickMS,
		Scene: topology.Configuration{
			Atoms: []topology.Atom{
				{ID: 1, Mass: 1, X: -30, Y: -20, VX: 20, Color: "red"},
				{ID: 2, Mass: 1, X: 30, Y: -20, VX: -20, Color: "blue"},
				{ID: 3, Mass: 1, X: 0, Y: 20, Color: "green"},
			},
			Springs: []topology.Spring{
				{ID: 1, Atom1: 1, Atom2: 2, Req: 60, K: 1},
				{ID: 2, Atom1: 2, Atom2: 3, Req: 50, K: 1},
				{ID: 3, Atom1: 3, Atom2: 1, Req: 50, K: 1},
			},
		},
	},
	"chain":  chain(8, 20, 1),
	"ring":   ring(6, 50, 0.5),
	"heavy": {
		Name: "heavy", Description: "light atom swinging round a heavy one", Integrator: DefaultIntegrator, Steps: 2000, RecordEvery: 20, TickMS: DefaultTickMS,
		Scene: topology.Configuration{
			Atoms: []topology.Atom{
				{ID: 1, Mass: 10, X: 0, Y: 0, Color: "yellow"},
				{ID: 2, Mass: 1, X: 0, Y: 60, VX: 15, Color: "cyan"},
			},
			Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 40, K: 0.5}},
		},
	},
}

// chain lays n atoms along the x axis, spacing apart, each joined to its
// neighbour at rest length. The first atom is kicked upwards.
func chain(n int, spacing, k float64) *Config {
	cfg := &Config{Name: "chain", Description: "a wave travelling down a chain", Integrator: DefaultIntegrator, Steps: 1500, RecordEvery: 10, TickMS: DefaultTickMS}
	x0 := -spacing * float64(n-1) / 2
	for i := 0; i < n; i++ {
		a := topology.Atom{ID: i + 1, Mass: 1, X: x0 + spacing*float64(i)}
		if i == 0 {
			a.VY = 30
		}
		cfg.Scene.Atoms = append(cfg.Scene.Atoms, a)
		if i > 0 {
			cfg.Scene.Springs = append(cfg.Scene.Springs, topology.Spring{
				ID: i, Atom1: i, Atom2: i + 1, Req: spacing, K: k,
			})
		}
	}
	return cfg
}

// ring places n atoms on a circle of the given radius, joined to their
// neighbours, and spins it.
func ring(n int, radius, k float64) *Config {
	cfg := &Config{Name: "ring", Description: "a spinning ring", Integrator: DefaultIntegrator, Steps: 1500, RecordEvery: 10, TickMS: DefaultTickMS}
	side := 2 * radius * math.Sin(math.Pi/float64(n))
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		cfg.Scene.Atoms = append(cfg.Scene.Atoms, topology.Atom{
			ID:   i + 1,
			Mass: 1,
			X:    radius * math.Cos(theta),
			Y:    radius * math.Sin(theta),
			VX:   -10 * math.Sin(theta),
			VY:   10 * math.Cos(theta),
		})
		cfg.Scene.Springs = append(cfg.Scene.Springs, topology.Spring{
			ID: i + 1, Atom1: i + 1, Atom2: (i+1)%n + 1, Req: side, K: k,
		})
	}
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Scene = p.Scene.Clone()
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
