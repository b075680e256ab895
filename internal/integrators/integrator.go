package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/springfarm/internal/topology"
)

// Dt is the fixed physics timestep in dimensionless time units.
const Dt = 0.1

// Report describes what happened during one step.
type Report struct {
	// DegenerateSprings counts force evaluations in which a spring had
	// coincident endpoints and contributed no force.
	DegenerateSprings int
}

// Integrator advances a state by one timestep in place. It does not touch
// State.Frame.
type Integrator interface {
	Name() string
	Step(st *topology.State, dt float64) Report
}

var registry = map[string]func() Integrator{
	"leapfrog":         func() Integrator { return NewLeapfrog() },
	"symplectic_euler": func() Integrator { return NewSymplecticEuler() },
	"euler":            func() Integrator { return NewEuler() },
	"rk4":              func() Integrator { return NewRK4() },
}

// New returns the integrator registered under name.
func New(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Names lists the registered integrators in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
