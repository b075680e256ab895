package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/springfarm/internal/topology"
)

func benchLattice(b *testing.B, n int) *topology.State {
	b.Helper()
	var cfg topology.Configuration
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cfg.Atoms = append(cfg.Atoms, topology.Atom{
				ID: i*n + j + 1, Mass: 1, X: float64(i) * 10, Y: float64(j) * 10,
				VX: math.Sin(float64(i + j)),
			})
		}
	}
	id := 1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := i*n + j + 1
			if j+1 < n {
				cfg.Springs = append(cfg.Springs, topology.Spring{ID: id, Atom1: a, Atom2: a + 1, Req: 10, K: 1})
				id++
			}
			if i+1 < n {
				cfg.Springs = append(cfg.Springs, topology.Spring{ID: id, Atom1: a, Atom2: a + n, Req: 10, K: 1})
				id++
			}
		}
	}
	st, err := topology.Resolve(cfg)
	if err != nil {
		b.Fatal(err)
	}
	return st
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	st := benchLattice(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(st, Dt)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	st := benchLattice(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(st, Dt)
	}
}

func BenchmarkLeapfrog(b *testing.B) {
	integrator := NewLeapfrog()
	st := benchLattice(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integrator.Step(st, Dt)
	}
}
