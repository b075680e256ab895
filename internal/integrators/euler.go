package integrators

import "github.com/san-kum/springfarm/internal/topology"

// Euler is the explicit method: positions move with the old velocities.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(st *topology.State, dt float64) Report {
	degenerate := Forces(st.Atoms, st.Springs)
	drift(st.Atoms, dt)
	kick(st.Atoms, dt)
	return Report{DegenerateSprings: degenerate}
}

// SymplecticEuler kicks first and drifts with the updated velocities.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "symplectic_euler" }

func (e *SymplecticEuler) Step(st *topology.State, dt float64) Report {
	degenerate := Forces(st.Atoms, st.Springs)
	kick(st.Atoms, dt)
	drift(st.Atoms, dt)
	return Report{DegenerateSprings: degenerate}
}
