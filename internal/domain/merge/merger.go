// Package merge implements the graph-fusion core of the pipeline: the union
// of two superimposed molecular graphs, reconciliation of duplicate atoms and
// bonds, remapping of RCA4 index annotations across the deletion-induced
// renumbering, and the combinatorial driver that expands match sets and
// fragment groups into the full output set.
package merge

import (
	"fmt"

	"github.com/turtacn/ChemScreen/internal/domain/pattern"
	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Merger fuses two molecular graphs into one.
type Merger struct {
	log  logging.Logger
	mets *metrics.Set
}

// NewMerger constructs a Merger.  A nil logger falls back to the nop logger;
// a nil metrics set disables instrumentation.
func NewMerger(log logging.Logger, mets *metrics.Set) *Merger {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Merger{log: log.Named("merge"), mets: mets}
}

// Merge combines struct2 into struct1 given the matched atom tuples that
// denote the same physical sites in both.  Precondition: struct2 has already
// been superimposed onto struct1 over the same match pair.
//
// The result is a fresh Structure: struct1's atoms followed by struct2's
// non-common atoms, bonds reconciled so that every bond that touched a
// duplicate atom is re-pointed at its surviving struct1 counterpart, bond
// annotations merged under the falsy-overwrite rule, RCA4 index annotations
// translated into the final index space, and the title and entry name
// suffixed with struct2's.  Neither input is mutated.
func (m *Merger) Merge(struct1 *structure.Structure, match1 pattern.Match, struct2 *structure.Structure, match2 pattern.Match) (*structure.Structure, error) {
	if len(match1) != len(match2) {
		return nil, errors.Newf(errors.CodeMismatchedArity,
			"match tuples have unequal length: %d vs %d", len(match1), len(match2)).
			WithDetail(fmt.Sprintf("titles=%s,%s", struct1.Title(), struct2.Title()))
	}

	n1 := struct1.AtomCount()
	union, err := buildUnion(struct1, struct2)
	if err != nil {
		return nil, err
	}

	// Union indices of the duplicate pairs: common1[i] and common2[i] are the
	// same physical atom represented twice.
	common1 := make([]int, len(match1))
	common2 := make([]int, len(match2))
	for i := range match1 {
		common1[i] = match1[i]
		common2[i] = match2[i] + n1
	}
	common2Pos := make(map[int]int, len(common2))
	for i, c := range common2 {
		common2Pos[c] = i
	}

	m.log.Debug("union built",
		logging.String("title1", struct1.Title()),
		logging.String("title2", struct2.Title()),
		logging.Int("atoms", union.AtomCount()),
		logging.Ints("common1", common1),
		logging.Ints("common2", common2))

	// Reconcile every struct2-origin bond attached to a duplicate atom.
	for i, c2 := range common2 {
		for _, b := range union.BondsOf(c2) {
			other, _ := b.Other(c2)
			if j, isCommon := common2Pos[other]; isCommon {
				// The equivalent bond already exists between the struct1
				// counterparts; fold the struct2 annotations into it.
				target := union.GetBond(common1[i], common1[j])
				if target == nil {
					return nil, errors.Newf(errors.CodeBondNotFound,
						"expected bond %d-%d missing in first structure", common1[i], common1[j]).
						WithDetail("title=" + struct1.Title())
				}
				mergeBondAnnotations(target, b)
				continue
			}
			// The other endpoint survives: re-create the bond from the
			// struct1 counterpart to it, then copy the annotations.
			target := union.GetBond(common1[i], other)
			if target == nil {
				target, err = union.AddBond(common1[i], other, b.Order)
				if err != nil {
					return nil, err
				}
			}
			mergeBondAnnotations(target, b)
		}
	}

	// Drop the duplicate atoms; the bonds re-pointed above survive because
	// they no longer touch any deleted index.
	if err := union.DeleteAtoms(common2); err != nil {
		return nil, err
	}

	rewrites, err := remapRCA4(union, struct1, match1, struct2, match2)
	if err != nil {
		return nil, err
	}
	m.mets.AddRCA4Rewrites(rewrites)

	union.SetTitle(struct1.Title() + "_" + struct2.Title())
	union.SetEntryName(struct1.EntryName() + "_" + struct2.EntryName())

	m.log.Debug("merged",
		logging.String("title", union.Title()),
		logging.Int("atoms", union.AtomCount()),
		logging.Int("bonds", len(union.Bonds())),
		logging.Int("rca4_rewrites", rewrites))
	return union, nil
}

// buildUnion forms the disjoint union: a clone of struct1 with struct2's
// atoms appended (indices offset by struct1's atom count), struct2's bonds
// re-indexed accordingly, and struct2's structure annotations copied only
// where struct1 declares no value (struct1 precedence on collisions).
func buildUnion(struct1, struct2 *structure.Structure) (*structure.Structure, error) {
	u := struct1.Clone()
	n1 := struct1.AtomCount()

	for _, a := range struct2.Atoms() {
		cp := a
		if cp.Props != nil {
			cp.Props = cp.Props.Clone()
		}
		u.AddAtom(cp)
	}
	for _, b := range struct2.Bonds() {
		nb, err := u.AddBond(b.Atom1+n1, b.Atom2+n1, b.Order)
		if err != nil {
			return nil, err
		}
		for _, k := range b.Props.Keys() {
			v, _ := b.Props.Get(k)
			nb.Props.Set(k, v)
		}
	}
	for _, k := range struct2.Props.Keys() {
		if !u.Props.Has(k) {
			v, _ := struct2.Props.Get(k)
			u.Props.Set(k, v)
		}
	}
	return u, nil
}

// mergeBondAnnotations copies each annotation of src into dst unless dst
// already holds a truthy value for that key.  A present, truthy target value
// is never overwritten; absent or falsy values are.
func mergeBondAnnotations(dst, src *structure.Bond) {
	for _, k := range src.Props.Keys() {
		v, _ := src.Props.Get(k)
		if cur, ok := dst.Props.Get(k); ok && cur.Truthy() {
			continue
		}
		dst.Props.Set(k, v)
	}
}
