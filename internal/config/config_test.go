package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/springfarm/internal/topology"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "leapfrog" {
		t.Errorf("expected integrator leapfrog, got %s", cfg.Integrator)
	}
	if cfg.TickMS != 50 {
		t.Errorf("expected 50ms tick, got %d", cfg.TickMS)
	}
	if len(cfg.Scene.Atoms) != 4 || len(cfg.Scene.Springs) != 3 {
		t.Errorf("expected 4 atoms and 3 springs, got %d and %d", len(cfg.Scene.Atoms), len(cfg.Scene.Springs))
	}
	if _, err := topology.Resolve(cfg.Scene); err != nil {
		t.Errorf("default scene does not resolve: %v", err)
	}
}

func TestPresets_Resolve(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if cfg == nil {
				t.Fatal("expected preset, got nil")
			}
			if _, err := topology.Resolve(cfg.Scene); err != nil {
				t.Errorf("preset does not resolve: %v", err)
			}
		})
	}
}

func TestGetPreset_Copy(t *testing.T) {
	cfg := GetPreset("triangle")
	cfg.Scene.Atoms[0].Mass = 9
	cfg.Steps = 1

	again := GetPreset("triangle")
	if again.Scene.Atoms[0].Mass != 1 || again.Steps == 1 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestRingRestLengths(t *testing.T) {
	cfg := GetPreset("ring")
	for _, sp := range cfg.Scene.Springs {
		d, err := cfg.Scene.Distance(sp.Atom1, sp.Atom2)
		if err != nil {
			t.Fatal(err)
		}
		if diff := d - sp.Req; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("spring %d starts stretched by %g", sp.ID, diff)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("pair")
	cfg.Scene.Atoms[1].VY = 2.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "pair" || loaded.Steps != 600 {
		t.Errorf("unexpected run settings: %+v", loaded)
	}
	if len(loaded.Scene.Atoms) != 2 || loaded.Scene.Atoms[1].VY != 2.5 {
		t.Errorf("scene not round-tripped: %+v", loaded.Scene)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := []byte(`name: custom
scene:
  atoms:
    - {id: 1, mass: 2, x: 5, y: 5}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Integrator != DefaultIntegrator || cfg.TickMS != DefaultTickMS {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if len(cfg.Scene.Atoms) != 1 || len(cfg.Scene.Springs) != 0 {
		t.Errorf("scene should replace the default, got %+v", cfg.Scene)
	}
}

func TestLoad_NoScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("steps: 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Steps != 42 || len(cfg.Scene.Atoms) != 4 {
		t.Errorf("expected default scene with 42 steps, got %+v", cfg)
	}
}

func TestLoad_InvalidScene(t *testing.T) {
	tests := []struct {
		name   string
		scene  string
		target error
	}{
		{"spring without id", `scene:
  atoms:
    - {id: 1, mass: 1, x: 0}
    - {id: 2, mass: 1, x: 10}
  springs:
    - {atom1: 1, atom2: 2, req: 5, k: 1}
`, topology.ErrInvalidID},
		{"dangling spring", `scene:
  atoms:
    - {id: 1, mass: 1}
  springs:
    - {id: 1, atom1: 1, atom2: 7, req: 5, k: 1}
`, topology.ErrDanglingSpringReference},
		{"zero mass", `scene:
  atoms:
    - {id: 1, mass: 0}
`, topology.ErrInvalidMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene.yaml")
			if err := os.WriteFile(path, []byte(tt.scene), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}
