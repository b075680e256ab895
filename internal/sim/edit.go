package sim

import (
	"github.com/san-kum/springfarm/internal/topology"
)

// Editing helpers. Each one copies the configuration, changes the copy and
// resets the simulation with it; nothing is committed when the change fails
// validation. Every successful edit restarts the simulation at frame 0.

// edit runs fn on a copy of the configuration and commits the result while
// holding the lock for the whole cycle.
func (s *Simulator) edit(fn func(cfg *topology.Configuration) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config.Clone()
	if err := fn(&cfg); err != nil {
		s.logger.Warn("edit rejected", "err", err)
		return err
	}
	return s.commit(cfg)
}

// AddAtom appends atom. Its id must not be in use; use NextAtomID on the
// current configuration to pick one.
func (s *Simulator) AddAtom(atom topology.Atom) error {
	return s.edit(func(cfg *topology.Configuration) error {
		if _, exists := cfg.AtomIndex(atom.ID); exists {
			return &topology.DuplicateIDError{Kind: "atom", ID: atom.ID}
		}
		atom.FX, atom.FY = 0, 0
		cfg.Atoms = append(cfg.Atoms, atom)
		return nil
	})
}

// AddSpring appends spring. Its id must be unused and both endpoints must exist.
func (s *Simulator) AddSpring(spring topology.Spring) error {
	return s.edit(func(cfg *topology.Configuration) error {
		if _, exists := cfg.SpringIndex(spring.ID); exists {
			return &topology.DuplicateIDError{Kind: "spring", ID: spring.ID}
		}
		cfg.Springs = append(cfg.Springs, spring)
		return nil
	})
}

// Connect adds a spring of stiffness k between two atoms, resting at their
// current configured distance. It returns the new spring id.
func (s *Simulator) Connect(atomID1, atomID2 int, k float64) (int, error) {
	var id int
	err := s.edit(func(cfg *topology.Configuration) error {
		req, err := cfg.Distance(atomID1, atomID2)
		if err != nil {
			return err
		}
		id = cfg.NextSpringID()
		cfg.Springs = append(cfg.Springs, topology.Spring{
			ID:    id,
			Atom1: atomID1,
			Atom2: atomID2,
			Req:   req,
			K:     k,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveAtom deletes the atom and every spring attached to it.
func (s *Simulator) RemoveAtom(id int) error {
	return s.edit(func(cfg *topology.Configuration) error {
		i, ok := cfg.AtomIndex(id)
		if !ok {
			return topology.ErrUnknownAtom
		}
		cfg.Atoms = append(cfg.Atoms[:i], cfg.Atoms[i+1:]...)

		kept := cfg.Springs[:0]
		for _, sp := range cfg.Springs {
			if !sp.Touches(id) {
				kept = append(kept, sp)
			}
		}
		cfg.Springs = kept
		return nil
	})
}

func (s *Simulator) RemoveSpring(id int) error {
	return s.edit(func(cfg *topology.Configuration) error {
		i, ok := cfg.SpringIndex(id)
		if !ok {
			return topology.ErrUnknownSpring
		}
		cfg.Springs = append(cfg.Springs[:i], cfg.Springs[i+1:]...)
		return nil
	})
}

// EditAtom applies fn to the configured atom. The id cannot be changed.
func (s *Simulator) EditAtom(id int, fn func(a *topology.Atom)) error {
	return s.edit(func(cfg *topology.Configuration) error {
		i, ok := cfg.AtomIndex(id)
		if !ok {
			return topology.ErrUnknownAtom
		}
		fn(&cfg.Atoms[i])
		cfg.Atoms[i].ID = id
		return nil
	})
}

// EditSpring applies fn to the configured spring. The id cannot be changed.
func (s *Simulator) EditSpring(id int, fn func(sp *topology.Spring)) error {
	return s.edit(func(cfg *topology.Configuration) error {
		i, ok := cfg.SpringIndex(id)
		if !ok {
			return topology.ErrUnknownSpring
		}
		fn(&cfg.Springs[i])
		cfg.Springs[i].ID = id
		return nil
	})
}
