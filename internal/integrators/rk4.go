package integrators

import "github.com/san-kum/springfarm/internal/topology"

// RK4 is the classical fourth-order Runge-Kutta method over the packed
// vector [x, y, vx, vy] of every atom. It is not symplectic and serves as a
// reference for the compare command.
type RK4 struct {
	k1, k2, k3, k4 []float64
	x0, scratch    []float64
	atoms          []topology.Atom
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n*4 {
		r.k1 = make([]float64, n*4)
		r.k2 = make([]float64, n*4)
		r.k3 = make([]float64, n*4)
		r.k4 = make([]float64, n*4)
		r.x0 = make([]float64, n*4)
		r.scratch = make([]float64, n*4)
		r.atoms = make([]topology.Atom, n)
	}
}

func (r *RK4) Step(st *topology.State, dt float64) Report {
	n := len(st.Atoms)
	r.ensureScratch(n)
	copy(r.atoms, st.Atoms)
	pack(st.Atoms, r.x0)

	var rep Report
	rep.DegenerateSprings += r.derive(r.x0, st.Springs, r.k1)

	for i := range r.x0 {
		r.scratch[i] = r.x0[i] + dt*0.5*r.k1[i]
	}
	rep.DegenerateSprings += r.derive(r.scratch, st.Springs, r.k2)

	for i := range r.x0 {
		r.scratch[i] = r.x0[i] + dt*0.5*r.k2[i]
	}
	rep.DegenerateSprings += r.derive(r.scratch, st.Springs, r.k3)

	for i := range r.x0 {
		r.scratch[i] = r.x0[i] + dt*r.k3[i]
	}
	rep.DegenerateSprings += r.derive(r.scratch, st.Springs, r.k4)

	dt6 := dt / 6.0
	for i := range r.x0 {
		r.scratch[i] = r.x0[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	unpack(r.scratch, st.Atoms)
	Forces(st.Atoms, st.Springs)

	return rep
}

// derive writes d/dt of the packed vector x into dx.
func (r *RK4) derive(x []float64, springs []topology.ResolvedSpring, dx []float64) int {
	unpack(x, r.atoms)
	degenerate := Forces(r.atoms, springs)
	for i, a := range r.atoms {
		dx[i*4] = a.VX
		dx[i*4+1] = a.VY
		dx[i*4+2] = a.FX / a.Mass
		dx[i*4+3] = a.FY / a.Mass
	}
	return degenerate
}

func pack(atoms []topology.Atom, x []float64) {
	for i, a := range atoms {
		x[i*4], x[i*4+1], x[i*4+2], x[i*4+3] = a.X, a.Y, a.VX, a.VY
	}
}

func unpack(x []float64, atoms []topology.Atom) {
	for i := range atoms {
		atoms[i].X, atoms[i].Y, atoms[i].VX, atoms[i].VY = x[i*4], x[i*4+1], x[i*4+2], x[i*4+3]
	}
}
