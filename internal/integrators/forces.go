package integrators

import (
	"math"

	"github.com/san-kum/springfarm/internal/topology"
)

// Forces clears every force accumulator and adds the force of each spring to
// its two endpoints. A spring whose endpoints coincide has no direction and
// contributes nothing; the number of such springs is returned.
func Forces(atoms []topology.Atom, springs []topology.ResolvedSpring) int {
	for i := range atoms {
		atoms[i].FX, atoms[i].FY = 0, 0
	}

	degenerate := 0
	for _, s := range springs {
		p1 := &atoms[s.Index1]
		p2 := &atoms[s.Index2]
		dx := p2.X - p1.X
		dy := p2.Y - p1.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 {
			degenerate++
			continue
		}
		force := s.K * (dist - s.Req)

		p1.FX += force * dx / dist
		p1.FY += force * dy / dist
		p2.FX -= force * dx / dist
		p2.FY -= force * dy / dist
	}
	return degenerate
}

func kick(atoms []topology.Atom, h float64) {
	for i := range atoms {
		a := &atoms[i]
		a.VX += a.FX / a.Mass * h
		a.VY += a.FY / a.Mass * h
	}
}

func drift(atoms []topology.Atom, dt float64) {
	for i := range atoms {
		a := &atoms[i]
		a.X += a.VX * dt
		a.Y += a.VY * dt
	}
}
