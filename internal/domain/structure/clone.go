package structure

import "github.com/google/uuid"

// Clone returns a deep copy of s with a fresh ID.  Atoms, bonds, and all
// annotation maps are copied; the clone shares no mutable state with the
// original, so post-merge structures can never alias their inputs.
func (s *Structure) Clone() *Structure {
	c := &Structure{
		ID:    uuid.New(),
		atoms: make([]Atom, len(s.atoms)),
		Props: s.Props.Clone(),
	}
	copy(c.atoms, s.atoms)
	for i := range c.atoms {
		if c.atoms[i].Props != nil {
			c.atoms[i].Props = c.atoms[i].Props.Clone()
		}
	}
	c.bonds = make([]*Bond, len(s.bonds))
	for i, b := range s.bonds {
		c.bonds[i] = &Bond{
			Atom1: b.Atom1,
			Atom2: b.Atom2,
			Order: b.Order,
			Props: b.Props.Clone(),
		}
	}
	return c
}

// Mirror returns a deep copy of s with every atom's X coordinate negated,
// producing the mirror-image enantiomer.
func (s *Structure) Mirror() *Structure {
	m := s.Clone()
	for i := range m.atoms {
		m.atoms[i].X = -m.atoms[i].X
	}
	return m
}

// ExpandEnantiomers yields s itself first and, when the structure's
// b_cs_both_enantiomers annotation is true, additionally its mirror image.
// Each call produces fresh copies of the mirror; the returned slice has
// length 1 or 2.
func (s *Structure) ExpandEnantiomers() []*Structure {
	out := []*Structure{s}
	if s.Props.BoolOr(KeyBothEnantiomers, false) {
		out = append(out, s.Mirror())
	}
	return out
}
