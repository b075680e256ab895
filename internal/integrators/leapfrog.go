package integrators

import "github.com/san-kum/springfarm/internal/topology"

// Leapfrog is the velocity-Verlet kick-drift-kick scheme: forces, half kick,
// drift, forces at the new positions, half kick. The phases run in exactly
// this order.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(st *topology.State, dt float64) Report {
	var r Report
	halfDt := dt * 0.5

	r.DegenerateSprings += Forces(st.Atoms, st.Springs)
	kick(st.Atoms, halfDt)
	drift(st.Atoms, dt)
	r.DegenerateSprings += Forces(st.Atoms, st.Springs)
	kick(st.Atoms, halfDt)

	return r
}
