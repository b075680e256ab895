package topology

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Atom is a point mass. FX and FY accumulate spring forces during a step and
// carry no meaning between steps.
type Atom struct {
	ID    int     `yaml:"id" json:"id"`
	Mass  float64 `yaml:"mass" json:"mass"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	VX    float64 `yaml:"vx" json:"vx"`
	VY    float64 `yaml:"vy" json:"vy"`
	FX    float64 `yaml:"-" json:"-"`
	FY    float64 `yaml:"-" json:"-"`
	Color string  `yaml:"color,omitempty" json:"color,omitempty"`
}

// Pos returns the atom position as a vector.
func (a Atom) Pos() mgl64.Vec2 { return mgl64.Vec2{a.X, a.Y} }

// Vel returns the atom velocity as a vector.
func (a Atom) Vel() mgl64.Vec2 { return mgl64.Vec2{a.VX, a.VY} }

// Spring connects two atoms by id. A negative K pushes the atoms apart, a
// zero K does nothing.
type Spring struct {
	ID    int     `yaml:"id" json:"id"`
	Atom1 int     `yaml:"atom1" json:"atom1"`
	Atom2 int     `yaml:"atom2" json:"atom2"`
	Req   float64 `yaml:"req" json:"req"`
	K     float64 `yaml:"k" json:"k"`
}

// Touches reports whether the spring has atomID as an endpoint.
func (s Spring) Touches(atomID int) bool {
	return s.Atom1 == atomID || s.Atom2 == atomID
}

// Configuration is the editable, authoritative description of a scene.
type Configuration struct {
	Atoms   []Atom   `yaml:"atoms" json:"atoms"`
	Springs []Spring `yaml:"springs" json:"springs"`
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		Atoms:   make([]Atom, len(c.Atoms)),
		Springs: make([]Spring, len(c.Springs)),
	}
	copy(out.Atoms, c.Atoms)
	copy(out.Springs, c.Springs)
	return out
}

// AtomIndex returns the position of the atom with the given id.
func (c Configuration) AtomIndex(id int) (int, bool) {
	for i := range c.Atoms {
		if c.Atoms[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// SpringIndex returns the position of the spring with the given id.
func (c Configuration) SpringIndex(id int) (int, bool) {
	for i := range c.Springs {
		if c.Springs[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Atom returns a copy of the atom with the given id.
func (c Configuration) Atom(id int) (Atom, bool) {
	i, ok := c.AtomIndex(id)
	if !ok {
		return Atom{}, false
	}
	return c.Atoms[i], true
}

// Spring returns a copy of the spring with the given id.
func (c Configuration) Spring(id int) (Spring, bool) {
	i, ok := c.SpringIndex(id)
	if !ok {
		return Spring{}, false
	}
	return c.Springs[i], true
}

// NextAtomID returns one more than the largest atom id, or 1.
func (c Configuration) NextAtomID() int {
	next := 1
	for _, a := range c.Atoms {
		if a.ID >= next {
			next = a.ID + 1
		}
	}
	return next
}

// NextSpringID returns one more than the largest spring id, or 1.
func (c Configuration) NextSpringID() int {
	next := 1
	for _, s := range c.Springs {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	return next
}

// Distance returns the distance between two atoms of the configuration.
func (c Configuration) Distance(id1, id2 int) (float64, error) {
	a1, ok := c.Atom(id1)
	if !ok {
		return 0, ErrUnknownAtom
	}
	a2, ok := c.Atom(id2)
	if !ok {
		return 0, ErrUnknownAtom
	}
	return a2.Pos().Sub(a1.Pos()).Len(), nil
}

// Validate checks every configuration invariant and reports the first
// violation in configuration order: atoms first, then springs.
func (c Configuration) Validate() error {
	seen := make(map[int]struct{}, len(c.Atoms))
	for _, a := range c.Atoms {
		if a.ID <= 0 {
			return ErrInvalidID
		}
		if _, dup := seen[a.ID]; dup {
			return &DuplicateIDError{Kind: "atom", ID: a.ID}
		}
		seen[a.ID] = struct{}{}
		if !(a.Mass > 0) || math.IsInf(a.Mass, 0) {
			return &InvalidMassError{AtomID: a.ID, Mass: a.Mass}
		}
	}

	springs := make(map[int]struct{}, len(c.Springs))
	for _, s := range c.Springs {
		if s.ID <= 0 {
			return ErrInvalidID
		}
		if _, dup := springs[s.ID]; dup {
			return &DuplicateIDError{Kind: "spring", ID: s.ID}
		}
		springs[s.ID] = struct{}{}
		if _, ok := seen[s.Atom1]; !ok {
			return &DanglingReferenceError{SpringID: s.ID, AtomID: s.Atom1}
		}
		if _, ok := seen[s.Atom2]; !ok {
			return &DanglingReferenceError{SpringID: s.ID, AtomID: s.Atom2}
		}
		if s.Req < 0 || math.IsNaN(s.Req) {
			return ErrInvalidRestLength
		}
	}
	return nil
}

// ResolvedSpring is a spring whose endpoints are indices into State.Atoms.
type ResolvedSpring struct {
	ID     int
	Index1 int
	Index2 int
	Req    float64
	K      float64
}

// State is the live simulation state derived from a configuration.
type State struct {
	Frame   int
	Atoms   []Atom
	Springs []ResolvedSpring
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := &State{
		Frame:   s.Frame,
		Atoms:   make([]Atom, len(s.Atoms)),
		Springs: make([]ResolvedSpring, len(s.Springs)),
	}
	copy(out.Atoms, s.Atoms)
	copy(out.Springs, s.Springs)
	return out
}

// AtomByID returns the live atom with the given id. The lookup is linear;
// integrators use indices instead.
func (s *State) AtomByID(id int) (*Atom, bool) {
	for i := range s.Atoms {
		if s.Atoms[i].ID == id {
			return &s.Atoms[i], true
		}
	}
	return nil, false
}

// IsValid reports whether every position and velocity is finite.
func (s *State) IsValid() bool {
	for _, a := range s.Atoms {
		for _, v := range [4]float64{a.X, a.Y, a.VX, a.VY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
