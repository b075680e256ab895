package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

func triangle() topology.Configuration {
	return topology.Configuration{
		Atoms: []topology.Atom{
			{ID: 1, Mass: 1, X: -30, Y: -20, VX: 20, VY: 0},
			{ID: 2, Mass: 1, X: 30, Y: -20, VX: -20, VY: 0},
			{ID: 3, Mass: 1, X: 0, Y: 20, VX: 0, VY: 0},
		},
		Springs: []topology.Spring{
			{ID: 1, Atom1: 1, Atom2: 2, Req: 60, K: 1},
			{ID: 2, Atom1: 2, Atom2: 3, Req: 50, K: 1},
			{ID: 3, Atom1: 3, Atom2: 1, Req: 50, K: 1},
		},
	}
}

// leapfrogByHand applies the kick-drift-kick update to a copy of cfg with
// its own force loop, independent of the integrators package.
func leapfrogByHand(cfg topology.Configuration) []topology.Atom {
	atoms := append([]topology.Atom(nil), cfg.Atoms...)
	idx := map[int]int{}
	for i, a := range atoms {
		idx[a.ID] = i
	}
	forces := func() {
		for i := range atoms {
			atoms[i].FX, atoms[i].FY = 0, 0
		}
		for _, s := range cfg.Springs {
			p1, p2 := &atoms[idx[s.Atom1]], &atoms[idx[s.Atom2]]
			dx, dy := p2.X-p1.X, p2.Y-p1.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			f := s.K * (dist - s.Req)
			p1.FX += f * dx / dist
			p1.FY += f * dy / dist
			p2.FX -= f * dx / dist
			p2.FY -= f * dy / dist
		}
	}
	const dt = 0.1
	forces()
	for i := range atoms {
		atoms[i].VX += atoms[i].FX / atoms[i].Mass * dt / 2
		atoms[i].VY += atoms[i].FY / atoms[i].Mass * dt / 2
	}
	for i := range atoms {
		atoms[i].X += atoms[i].VX * dt
		atoms[i].Y += atoms[i].VY * dt
	}
	forces()
	for i := range atoms {
		atoms[i].VX += atoms[i].FX / atoms[i].Mass * dt / 2
		atoms[i].VY += atoms[i].FY / atoms[i].Mass * dt / 2
	}
	return atoms
}

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		var err error
		s, err = sim.New(triangle())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Step", func() {
		It("matches the hand-computed leapfrog update of the triangle", func() {
			s.Step()
			st := s.State()
			Expect(st.Frame).To(Equal(1))

			want := leapfrogByHand(triangle())
			for i, a := range st.Atoms {
				Expect(a.X).To(BeNumerically("~", want[i].X, 1e-9))
				Expect(a.Y).To(BeNumerically("~", want[i].Y, 1e-9))
				Expect(a.VX).To(BeNumerically("~", want[i].VX, 1e-9))
				Expect(a.VY).To(BeNumerically("~", want[i].VY, 1e-9))
			}
			Expect(st.Atoms[0].X).To(BeNumerically("~", -28, 1e-9))
			Expect(st.Atoms[0].VX).To(BeNumerically("~", 19.76634413909168, 1e-9))
		})

		It("never changes the configuration", func() {
			for i := 0; i < 25; i++ {
				s.Step()
			}
			Expect(s.Configuration()).To(Equal(triangle()))
			Expect(s.Frame()).To(Equal(25))
		})

		It("is deterministic across instances", func() {
			other, err := sim.New(triangle())
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 500; i++ {
				s.Step()
				other.Step()
			}
			Expect(other.Snapshot()).To(Equal(s.Snapshot()))
		})

		It("conserves momentum of an isolated pair", func() {
			pair := topology.Configuration{
				Atoms: []topology.Atom{
					{ID: 1, Mass: 2, X: -10, Y: 0, VX: 3, VY: 1},
					{ID: 2, Mass: 2, X: 10, Y: 5, VX: -3, VY: -1},
				},
				Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 12, K: 0.7}},
			}
			Expect(s.ResetTo(pair)).To(Succeed())
			for i := 0; i < 1000; i++ {
				s.Step()
				p := metrics.Momentum(s.State())
				Expect(p.X()).To(BeNumerically("~", 0, 1e-9))
				Expect(p.Y()).To(BeNumerically("~", 0, 1e-9))
			}
		})

		It("applies zero force to a spring with coincident endpoints", func() {
			cfg := topology.Configuration{
				Atoms: []topology.Atom{
					{ID: 1, Mass: 1, X: 4, Y: 4},
					{ID: 2, Mass: 1, X: 4, Y: 4},
				},
				Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 3, K: 5}},
			}
			Expect(s.ResetTo(cfg)).To(Succeed())
			s.Step()
			st := s.State()
			Expect(st.IsValid()).To(BeTrue())
			for _, a := range st.Atoms {
				Expect(a.X).To(Equal(4.0))
				Expect(a.Y).To(Equal(4.0))
				Expect(a.VX).To(Equal(0.0))
				Expect(a.VY).To(Equal(0.0))
			}
			// both force evaluations of the step see the zero-length spring
			Expect(s.DegenerateSprings()).To(Equal(2))
		})
	})

	Describe("Reset", func() {
		It("restarts from the configuration at frame 0", func() {
			for i := 0; i < 10; i++ {
				s.Step()
			}
			s.Reset()
			st := s.State()
			Expect(st.Frame).To(Equal(0))
			Expect(st.Atoms[0].X).To(Equal(-30.0))
		})

		It("copies the configuration it is given", func() {
			cfg := triangle()
			Expect(s.ResetTo(cfg)).To(Succeed())
			cfg.Atoms[0].Mass = 100
			Expect(s.Configuration().Atoms[0].Mass).To(Equal(1.0))
		})

		It("rejects a dangling spring and keeps the current state", func() {
			s.Step()
			before := s.Snapshot()

			cfg := triangle()
			cfg.Springs = append(cfg.Springs, topology.Spring{ID: 9, Atom1: 1, Atom2: 77, Req: 1, K: 1})
			err := s.ResetTo(cfg)

			Expect(err).To(MatchError(topology.ErrDanglingSpringReference))
			var dangling *topology.DanglingReferenceError
			Expect(err).To(BeAssignableToTypeOf(dangling))
			Expect(s.Snapshot()).To(Equal(before))
			Expect(s.Configuration()).To(Equal(triangle()))
		})

		It("rejects a non-positive mass", func() {
			cfg := triangle()
			cfg.Atoms[2].Mass = 0
			Expect(s.ResetTo(cfg)).To(MatchError(topology.ErrInvalidMass))
			Expect(s.Configuration()).To(Equal(triangle()))
		})
	})

	Describe("Configuration", func() {
		It("returns a copy isolated from the engine", func() {
			cfg := s.Configuration()
			cfg.Atoms[0].X = 999
			cfg.Springs[0].K = 42
			cfg.Atoms = cfg.Atoms[:1]

			fresh := s.Configuration()
			Expect(fresh).To(Equal(triangle()))

			s.Reset()
			Expect(s.State().Atoms[0].X).To(Equal(-30.0))
		})
	})

	Describe("editing", func() {
		It("adds an atom at the end without moving the others", func() {
			cfg := s.Configuration()
			id := cfg.NextAtomID()
			Expect(s.AddAtom(topology.Atom{ID: id, Mass: 2, X: 5, Y: 5})).To(Succeed())

			st := s.State()
			Expect(st.Atoms).To(HaveLen(4))
			for i, want := range []int{1, 2, 3, 4} {
				Expect(st.Atoms[i].ID).To(Equal(want))
			}
			added, ok := s.Configuration().Atom(id)
			Expect(ok).To(BeTrue())
			Expect(added.Mass).To(Equal(2.0))
		})

		It("rejects a duplicate atom id before committing", func() {
			err := s.AddAtom(topology.Atom{ID: 2, Mass: 1})
			Expect(err).To(MatchError(topology.ErrDuplicateID))
			Expect(s.Configuration()).To(Equal(triangle()))
		})

		It("rejects a duplicate spring id", func() {
			err := s.AddSpring(topology.Spring{ID: 3, Atom1: 1, Atom2: 2, Req: 1, K: 1})
			Expect(err).To(MatchError(topology.ErrDuplicateID))
		})

		It("rejects a spring to a missing atom", func() {
			err := s.AddSpring(topology.Spring{ID: 4, Atom1: 1, Atom2: 8, Req: 1, K: 1})
			Expect(err).To(MatchError(topology.ErrDanglingSpringReference))
			Expect(s.Configuration().Springs).To(HaveLen(3))
		})

		It("cascades springs when an atom is removed", func() {
			s.Step()
			Expect(s.RemoveAtom(1)).To(Succeed())

			cfg := s.Configuration()
			Expect(cfg.Atoms).To(HaveLen(2))
			for _, sp := range cfg.Springs {
				Expect(sp.Touches(1)).To(BeFalse())
			}
			Expect(cfg.Springs).To(HaveLen(1))
			Expect(s.Frame()).To(Equal(0))

			st := s.State()
			Expect(st.Springs[0].Index1).To(Equal(0))
			Expect(st.Springs[0].Index2).To(Equal(1))
		})

		It("reports unknown targets", func() {
			Expect(s.RemoveAtom(50)).To(MatchError(topology.ErrUnknownAtom))
			Expect(s.RemoveSpring(50)).To(MatchError(topology.ErrUnknownSpring))
			Expect(s.EditAtom(50, func(a *topology.Atom) {})).To(MatchError(topology.ErrUnknownAtom))
			Expect(s.EditSpring(50, func(sp *topology.Spring) {})).To(MatchError(topology.ErrUnknownSpring))
		})

		It("removes a single spring", func() {
			Expect(s.RemoveSpring(2)).To(Succeed())
			_, ok := s.Configuration().Spring(2)
			Expect(ok).To(BeFalse())
			Expect(s.State().Springs).To(HaveLen(2))
		})

		It("connects two atoms at their current distance", func() {
			id, err := s.Connect(1, 3, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(4))

			sp, ok := s.Configuration().Spring(id)
			Expect(ok).To(BeTrue())
			Expect(sp.Req).To(BeNumerically("~", 50, 1e-12))
			Expect(sp.K).To(Equal(0.5))
		})

		It("edits atom fields but keeps the id", func() {
			Expect(s.EditAtom(3, func(a *topology.Atom) {
				a.Mass = 4
				a.ID = 99
			})).To(Succeed())
			a, ok := s.Configuration().Atom(3)
			Expect(ok).To(BeTrue())
			Expect(a.Mass).To(Equal(4.0))
		})

		It("refuses an edit that makes the mass invalid", func() {
			err := s.EditAtom(3, func(a *topology.Atom) { a.Mass = -1 })
			Expect(err).To(MatchError(topology.ErrInvalidMass))
			a, _ := s.Configuration().Atom(3)
			Expect(a.Mass).To(Equal(1.0))
		})

		It("edits spring fields", func() {
			Expect(s.EditSpring(1, func(sp *topology.Spring) { sp.K = -2 })).To(Succeed())
			Expect(s.State().Springs[0].K).To(Equal(-2.0))
		})
	})

	Describe("integrator choice", func() {
		It("uses leapfrog by default", func() {
			Expect(s.Integrator()).To(Equal("leapfrog"))
		})

		It("accepts another integrator", func() {
			other, err := sim.New(triangle(), sim.WithIntegrator(integrators.NewSymplecticEuler()))
			Expect(err).NotTo(HaveOccurred())
			Expect(other.Integrator()).To(Equal("symplectic_euler"))
		})
	})
})
