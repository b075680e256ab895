package metrics

import (
	"math"

	"github.com/san-kum/springfarm/internal/topology"
)

// Strain averages |dist-req|/req over springs with a positive rest length.
type Strain struct {
	name    string
	sum     float64
	samples int
}

func NewStrain() *Strain {
	return &Strain{
		name: "strain",
	}
}

func (s *Strain) Name() string {
	return s.name
}

func (s *Strain) Observe(st *topology.State) {
	n := 0
	total := 0.0
	for _, sp := range st.Springs {
		if sp.Req <= 0 {
			continue
		}
		p1, p2 := st.Atoms[sp.Index1].Pos(), st.Atoms[sp.Index2].Pos()
		total += math.Abs(p2.Sub(p1).Len()-sp.Req) / sp.Req
		n++
	}
	if n == 0 {
		return
	}
	s.sum += total / float64(n)
	s.samples++
}

func (s *Strain) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Strain) Reset() {
	s.sum = 0
	s.samples = 0
}
