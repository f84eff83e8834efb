// Package structure provides the core domain model for molecular structures:
// an ordered sequence of atoms (stable 1-based indices), a set of bonds, and
// typed annotations at structure and bond granularity.  Structures are the
// unit of work for the whole merge pipeline; every other domain package
// operates on them through the methods defined here.
package structure

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/ChemScreen/pkg/errors"
	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

// Well-known annotation keys, following the Maestro property convention:
// the prefix encodes the value type (s_ string, i_ int, b_ bool).
const (
	KeyTitle     = "s_m_title"
	KeyEntryName = "s_m_entry_name"

	// KeyFirstMatchOnly and KeyUseSubstructure are per-structure matching
	// policies consulted by the pattern matcher.
	KeyFirstMatchOnly  = "b_cs_first_match_only"
	KeyUseSubstructure = "b_cs_use_substructure"

	// KeyBothEnantiomers requests enantiomer expansion on load.
	KeyBothEnantiomers = "b_cs_both_enantiomers"

	// KeyRCA4First and KeyRCA4Second are bond annotations holding atom indices
	// of the two outer atoms of a four-atom ring-closure relationship.  They
	// reference atoms elsewhere in the structure, not the bond's endpoints,
	// and must be remapped whenever atoms are renumbered.
	KeyRCA4First  = "i_cs_rca4_1"
	KeyRCA4Second = "i_cs_rca4_2"

	// PatternKeySubstring marks pattern-declaring annotations: any structure
	// annotation whose key contains this substring declares a match pattern.
	PatternKeySubstring = "pattern"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a single atom owned exclusively by its Structure.  Its index is its
// 1-based position in the owning structure's atom sequence; an Atom pointer is
// invalidated once the structure is deleted or reindexed.
type Atom struct {
	// Type is the force-field atom type label, e.g. "P3", "RH", "C3".
	Type string

	// X, Y, Z are Cartesian coordinates in Ångström.
	X, Y, Z float64

	// Props holds optional per-atom annotations; nil when the atom has none.
	Props *annotation.Map
}

// Element derives the element symbol from the atom type label by stripping
// trailing digits and normalising case ("P3" → "P", "RH" → "Rh").
func (a *Atom) Element() string {
	t := strings.TrimRight(a.Type, "0123456789")
	if t == "" {
		return a.Type
	}
	if len(t) == 1 {
		return strings.ToUpper(t)
	}
	return strings.ToUpper(t[:1]) + strings.ToLower(t[1:])
}

// ─────────────────────────────────────────────────────────────────────────────
// Bond
// ─────────────────────────────────────────────────────────────────────────────

// Bond connects two atoms of the same Structure, identified by their 1-based
// indices.  The (Atom1, Atom2) pair is stored as given; lookups treat the pair
// as unordered.
type Bond struct {
	Atom1 int
	Atom2 int
	Order int

	// Props holds bond annotations, including the structurally significant
	// RCA4 index pair.  Never nil for a bond created through AddBond.
	Props *annotation.Map
}

// Other returns the endpoint of b that is not idx, and true when idx is one of
// b's endpoints.
func (b *Bond) Other(idx int) (int, bool) {
	switch idx {
	case b.Atom1:
		return b.Atom2, true
	case b.Atom2:
		return b.Atom1, true
	default:
		return 0, false
	}
}

// touches reports whether idx is one of b's endpoints.
func (b *Bond) touches(idx int) bool {
	return b.Atom1 == idx || b.Atom2 == idx
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────────────────────

// Structure is the aggregate root: an ordered atom sequence, a bond set, and
// structure-level annotations.  Atom indices are contiguous and unique at all
// times outside an in-progress merge.
type Structure struct {
	// ID identifies this in-memory instance for logging and tracing.  It is
	// never persisted and is regenerated by Clone.
	ID uuid.UUID

	atoms []Atom
	bonds []*Bond

	// Props holds structure-level annotations (title, entry name, patterns,
	// matching policies).  Never nil.
	Props *annotation.Map
}

// New constructs an empty Structure with the given title and entry name.
func New(title, entryName string) *Structure {
	s := &Structure{
		ID:    uuid.New(),
		Props: annotation.NewMap(),
	}
	s.Props.Set(KeyTitle, annotation.String(title))
	s.Props.Set(KeyEntryName, annotation.String(entryName))
	return s
}

// NewEmpty constructs a Structure with no annotations set.  The file reader
// uses this and fills Props from the parsed block.
func NewEmpty() *Structure {
	return &Structure{ID: uuid.New(), Props: annotation.NewMap()}
}

// Title returns the human-readable title, or "" when unset.
func (s *Structure) Title() string { return s.Props.StringOr(KeyTitle, "") }

// EntryName returns the machine entry name, or "" when unset.
func (s *Structure) EntryName() string { return s.Props.StringOr(KeyEntryName, "") }

// SetTitle replaces the title annotation.
func (s *Structure) SetTitle(t string) { s.Props.Set(KeyTitle, annotation.String(t)) }

// SetEntryName replaces the entry-name annotation.
func (s *Structure) SetEntryName(n string) { s.Props.Set(KeyEntryName, annotation.String(n)) }

// FirstMatchOnly returns the structure's own first-match-only matching policy,
// defaulting to false when the annotation is absent.
func (s *Structure) FirstMatchOnly() bool { return s.Props.BoolOr(KeyFirstMatchOnly, false) }

// UseSubstructure returns the structure's own substructure-matching policy,
// defaulting to false when the annotation is absent.
func (s *Structure) UseSubstructure() bool { return s.Props.BoolOr(KeyUseSubstructure, false) }

// AtomCount returns the number of atoms.
func (s *Structure) AtomCount() int { return len(s.atoms) }

// Atom returns a pointer to the atom at 1-based index idx.  The pointer stays
// valid until the structure is reindexed.
func (s *Structure) Atom(idx int) (*Atom, error) {
	if idx < 1 || idx > len(s.atoms) {
		return nil, errors.Newf(errors.CodeAtomIndex,
			"atom index %d out of range [1,%d]", idx, len(s.atoms)).
			WithDetail("title=" + s.Title())
	}
	return &s.atoms[idx-1], nil
}

// Atoms returns the live atom slice in index order.  Callers must not grow or
// shrink it; coordinate mutation in place is how the aligner applies its
// transform.
func (s *Structure) Atoms() []Atom { return s.atoms }

// AddAtom appends a to the atom sequence and returns its 1-based index.
func (s *Structure) AddAtom(a Atom) int {
	s.atoms = append(s.atoms, a)
	return len(s.atoms)
}

// Bonds returns the live bond slice in creation order.
func (s *Structure) Bonds() []*Bond { return s.bonds }

// BondsOf returns every bond with idx as an endpoint, in creation order.
func (s *Structure) BondsOf(idx int) []*Bond {
	var out []*Bond
	for _, b := range s.bonds {
		if b.touches(idx) {
			out = append(out, b)
		}
	}
	return out
}

// BondedTo returns the indices of all atoms bonded to idx, in bond creation
// order.
func (s *Structure) BondedTo(idx int) []int {
	var out []int
	for _, b := range s.bonds {
		if other, ok := b.Other(idx); ok {
			out = append(out, other)
		}
	}
	return out
}

// GetBond returns the bond between a1 and a2 (unordered), or nil.
func (s *Structure) GetBond(a1, a2 int) *Bond {
	for _, b := range s.bonds {
		if (b.Atom1 == a1 && b.Atom2 == a2) || (b.Atom1 == a2 && b.Atom2 == a1) {
			return b
		}
	}
	return nil
}

// AddBond creates a bond between a1 and a2 with the given order and returns
// it.  Both endpoints must exist and be distinct, and the bond must not
// already exist.
func (s *Structure) AddBond(a1, a2, order int) (*Bond, error) {
	if a1 == a2 {
		return nil, errors.Newf(errors.CodeInvalidParam, "bond endpoints identical: %d", a1).
			WithDetail("title=" + s.Title())
	}
	for _, idx := range [2]int{a1, a2} {
		if idx < 1 || idx > len(s.atoms) {
			return nil, errors.Newf(errors.CodeAtomIndex,
				"bond endpoint %d out of range [1,%d]", idx, len(s.atoms)).
				WithDetail("title=" + s.Title())
		}
	}
	if s.GetBond(a1, a2) != nil {
		return nil, errors.Newf(errors.CodeInvalidParam, "bond %d-%d already exists", a1, a2).
			WithDetail("title=" + s.Title())
	}
	b := &Bond{Atom1: a1, Atom2: a2, Order: order, Props: annotation.NewMap()}
	s.bonds = append(s.bonds, b)
	return b, nil
}

// DeleteAtoms removes the atoms at the given 1-based indices, drops every
// bond touching a removed atom, and compacts the remaining indices so they
// stay contiguous: each surviving index is reduced by the number of deleted
// indices smaller than it.  Bond endpoints are rewritten accordingly.
// Duplicate indices are tolerated; out-of-range indices are an error.
func (s *Structure) DeleteAtoms(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	del := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(s.atoms) {
			return errors.Newf(errors.CodeAtomIndex,
				"cannot delete atom %d: out of range [1,%d]", idx, len(s.atoms)).
				WithDetail("title=" + s.Title())
		}
		del[idx] = true
	}

	// Old index → new index, computed against the complete deletion set so
	// the result is independent of the order indices were supplied in.
	remap := make(map[int]int, len(s.atoms)-len(del))
	kept := s.atoms[:0]
	next := 0
	for i := range s.atoms {
		old := i + 1
		if del[old] {
			continue
		}
		next++
		remap[old] = next
		kept = append(kept, s.atoms[i])
	}
	s.atoms = kept

	var bonds []*Bond
	for _, b := range s.bonds {
		if del[b.Atom1] || del[b.Atom2] {
			continue
		}
		b.Atom1 = remap[b.Atom1]
		b.Atom2 = remap[b.Atom2]
		bonds = append(bonds, b)
	}
	s.bonds = bonds
	return nil
}

// String implements fmt.Stringer for log output.
func (s *Structure) String() string {
	return fmt.Sprintf("%s (%d atoms, %d bonds)", s.Title(), len(s.atoms), len(s.bonds))
}
