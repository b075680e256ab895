package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

var ErrInvalidPerturbation = errors.New("analysis: perturbation must be positive")

// LyapunovExponent estimates the largest Lyapunov exponent of cfg by
// following a twin whose first atom starts perturbation further along x.
// After every step the twin is pulled back to the initial separation, which
// is measured over all positions and velocities.
func LyapunovExponent(cfg topology.Configuration, integrator string, steps int, perturbation float64) (float64, error) {
	if !(perturbation > 0) {
		return 0, ErrInvalidPerturbation
	}
	base, err := integrators.New(integrator)
	if err != nil {
		return 0, err
	}
	twinInteg, err := integrators.New(integrator)
	if err != nil {
		return 0, err
	}

	st, err := topology.Resolve(cfg)
	if err != nil {
		return 0, err
	}
	if len(st.Atoms) == 0 {
		return 0, nil
	}
	twin := st.Clone()
	twin.Atoms[0].X += perturbation

	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		base.Step(st, integrators.Dt)
		twinInteg.Step(twin, integrators.Dt)
		if !st.IsValid() || !twin.IsValid() {
			return 0, &sim.SimError{Frame: i + 1, Message: "lyapunov run diverged", Wrapped: sim.ErrUnstable}
		}

		sep := separation(st, twin)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		count++
		renormalize(st, twin, perturbation/sep)
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * integrators.Dt), nil
}

func separation(a, b *topology.State) float64 {
	sum := 0.0
	for i := range a.Atoms {
		p, q := a.Atoms[i], b.Atoms[i]
		dx, dy := q.X-p.X, q.Y-p.Y
		dvx, dvy := q.VX-p.VX, q.VY-p.VY
		sum += dx*dx + dy*dy + dvx*dvx + dvy*dvy
	}
	return math.Sqrt(sum)
}

// renormalize moves twin toward ref so their separation is scaled by scale.
func renormalize(ref, twin *topology.State, scale float64) {
	for i := range twin.Atoms {
		p, q := ref.Atoms[i], &twin.Atoms[i]
		q.X = p.X + (q.X-p.X)*scale
		q.Y = p.Y + (q.Y-p.Y)*scale
		q.VX = p.VX + (q.VX-p.VX)*scale
		q.VY = p.VY + (q.VY-p.VY)*scale
	}
}
