package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/topology"
)

// KineticEnergy returns the sum of m|v|²/2 over all atoms.
func KineticEnergy(st *topology.State) float64 {
	ke := 0.0
	for _, a := range st.Atoms {
		ke += 0.5 * a.Mass * a.Vel().LenSqr()
	}
	return ke
}

// PotentialEnergy returns the sum of k(dist-req)²/2 over all springs.
func PotentialEnergy(st *topology.State) float64 {
	pe := 0.0
	for _, s := range st.Springs {
		p1, p2 := st.Atoms[s.Index1].Pos(), st.Atoms[s.Index2].Pos()
		stretch := p2.Sub(p1).Len() - s.Req
		pe += 0.5 * s.K * stretch * stretch
	}
	return pe
}

// TotalEnergy is kinetic plus potential energy.
func TotalEnergy(st *topology.State) float64 {
	return KineticEnergy(st) + PotentialEnergy(st)
}

// Momentum returns the total linear momentum.
func Momentum(st *topology.State) mgl64.Vec2 {
	var p mgl64.Vec2
	for _, a := range st.Atoms {
		p = p.Add(a.Vel().Mul(a.Mass))
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position, or the origin for an
// empty state.
func CenterOfMass(st *topology.State) mgl64.Vec2 {
	var sum mgl64.Vec2
	total := 0.0
	for _, a := range st.Atoms {
		sum = sum.Add(a.Pos().Mul(a.Mass))
		total += a.Mass
	}
	if total == 0 {
		return mgl64.Vec2{}
	}
	return sum.Mul(1 / total)
}

type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(st *topology.State) {
	e.totalEnergy += TotalEnergy(st)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the first observed
// total energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(st *topology.State) {
	energy := TotalEnergy(st)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest |p - p0| seen since the first sample.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(st *topology.State) {
	p := Momentum(st)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}
