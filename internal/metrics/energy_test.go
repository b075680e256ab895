package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/springfarm/internal/topology"
)

func pairState(t *testing.T) *topology.State {
	t.Helper()
	st, err := topology.Resolve(topology.Configuration{
		Atoms: []topology.Atom{
			{ID: 1, Mass: 2, X: 0, Y: 0, VX: 1, VY: 0},
			{ID: 2, Mass: 1, X: 3, Y: 4, VX: 0, VY: -2},
		},
		Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 4, K: 2}},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	return st
}

func TestEnergyTerms(t *testing.T) {
	st := pairState(t)

	// ke = 0.5*2*1 + 0.5*1*4, pe = 0.5*2*(5-4)^2
	if got := KineticEnergy(st); math.Abs(got-3) > 1e-12 {
		t.Errorf("kinetic energy = %f, want 3", got)
	}
	if got := PotentialEnergy(st); math.Abs(got-1) > 1e-12 {
		t.Errorf("potential energy = %f, want 1", got)
	}
	if got := TotalEnergy(st); math.Abs(got-4) > 1e-12 {
		t.Errorf("total energy = %f, want 4", got)
	}
}

func TestMomentumAndCenterOfMass(t *testing.T) {
	st := pairState(t)

	p := Momentum(st)
	if p.X() != 2 || p.Y() != -2 {
		t.Errorf("momentum = %v, want (2, -2)", p)
	}

	c := CenterOfMass(st)
	if math.Abs(c.X()-1) > 1e-12 || math.Abs(c.Y()-4.0/3.0) > 1e-12 {
		t.Errorf("center of mass = %v, want (1, 1.333)", c)
	}

	if got := CenterOfMass(&topology.State{}); got.X() != 0 || got.Y() != 0 {
		t.Errorf("empty center of mass = %v, want origin", got)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy()
	st := pairState(t)

	m.Observe(st)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	st := pairState(t)

	m.Observe(st)
	st.Atoms[0].VX = 2 // ke 3 -> 6, total 4 -> 7
	m.Observe(st)
	st.Atoms[0].VX = 1
	m.Observe(st)

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("drift = %f, want 0.75", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	st := pairState(t)

	m.Observe(st)
	st.Atoms[1].VY = 1
	m.Observe(st)

	if math.Abs(m.Value()-3) > 1e-12 {
		t.Errorf("momentum drift = %f, want 3", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(4.5)
	st := pairState(t)

	m.Observe(st) // atom 2 sits at radius 5
	st.Atoms[1].X, st.Atoms[1].Y = 3, 0
	m.Observe(st)

	if m.Value() != 0.5 {
		t.Errorf("stability = %f, want 0.5", m.Value())
	}
}

func TestStrain(t *testing.T) {
	m := NewStrain()
	m.Observe(pairState(t))
	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("strain = %f, want 0.25", m.Value())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("stddev = %f", s.StdDev)
	}
	if math.Abs(s.RelativeSpread()-1.2) > 1e-12 {
		t.Errorf("relative spread = %f, want 1.2", s.RelativeSpread())
	}

	single := Summarize([]float64{7})
	if single.StdDev != 0 || single.Mean != 7 {
		t.Errorf("unexpected single summary %+v", single)
	}

	if !math.IsNaN(Summarize(nil).Mean) {
		t.Error("expected NaN mean for empty series")
	}
}
