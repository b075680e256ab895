package topology

// Resolve validates cfg and derives a fresh state at frame 0. The atom order
// of cfg becomes the index order of the state. The returned state shares no
// records with cfg.
func Resolve(cfg Configuration) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	index := make(map[int]int, len(cfg.Atoms))
	atoms := make([]Atom, len(cfg.Atoms))
	for i, a := range cfg.Atoms {
		index[a.ID] = i
		atoms[i] = a
	}

	springs := make([]ResolvedSpring, len(cfg.Springs))
	for i, s := range cfg.Springs {
		i1, ok := index[s.Atom1]
		if !ok {
			return nil, &DanglingReferenceError{SpringID: s.ID, AtomID: s.Atom1}
		}
		i2, ok := index[s.Atom2]
		if !ok {
			return nil, &DanglingReferenceError{SpringID: s.ID, AtomID: s.Atom2}
		}
		springs[i] = ResolvedSpring{
			ID:     s.ID,
			Index1: i1,
			Index2: i2,
			Req:    s.Req,
			K:      s.K,
		}
	}

	return &State{Frame: 0, Atoms: atoms, Springs: springs}, nil
}
