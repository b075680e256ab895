package metrics

import (
	"math"

	"github.com/san-kum/springfarm/internal/topology"
)

// Stability is the fraction of observed frames in which every atom stayed
// finite and within radius of the origin.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *topology.State) {
	s.samples++
	if !st.IsValid() {
		s.violations++
		return
	}
	for _, a := range st.Atoms {
		if math.Hypot(a.X, a.Y) > s.radius {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
