package merge

import (
	"github.com/turtacn/ChemScreen/internal/domain/pattern"
	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/pkg/errors"
	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

// rca4Tuple is one ring-closure record in struct2's original index space:
// the two outer atoms referenced by the annotations and the bond's own
// endpoints, ordered (first, atom1, atom2, second).
type rca4Tuple struct {
	first  int
	atom1  int
	atom2  int
	second int
}

// remapRCA4 translates struct2's RCA4 bond annotations into the merged
// structure's post-deletion index space and writes them onto the
// corresponding merged bonds.  It returns the number of rewritten bonds.
//
// merged must already have the duplicate common atoms deleted.  Every index
// is translated by translateIndex against the complete deletion set, so the
// result is independent of iteration order.
//
// A struct2 bond lacking the i_cs_rca4_1 or i_cs_rca4_2 key entirely is a
// fatal CodeMissingAnnotation; a bond whose i_cs_rca4_1 value is 0 carries no
// ring-closure constraint and is skipped.
func remapRCA4(merged *structure.Structure, struct1 *structure.Structure, match1 pattern.Match, struct2 *structure.Structure, match2 pattern.Match) (int, error) {
	var tuples []rca4Tuple
	for _, b := range struct2.Bonds() {
		v1, ok := b.Props.Get(structure.KeyRCA4First)
		if !ok {
			return 0, errors.New(errors.CodeMissingAnnotation,
				"bond is missing the "+structure.KeyRCA4First+" annotation").
				WithDetail("title=" + struct2.Title())
		}
		first, _ := v1.AsInt()
		if first == 0 {
			continue
		}
		v2, ok := b.Props.Get(structure.KeyRCA4Second)
		if !ok {
			return 0, errors.New(errors.CodeMissingAnnotation,
				"bond is missing the "+structure.KeyRCA4Second+" annotation").
				WithDetail("title=" + struct2.Title())
		}
		second, _ := v2.AsInt()
		tuples = append(tuples, rca4Tuple{
			first:  first,
			atom1:  b.Atom1,
			atom2:  b.Atom2,
			second: second,
		})
	}

	n1 := struct1.AtomCount()
	for _, tp := range tuples {
		a1 := translateIndex(tp.atom1, n1, match1, match2)
		a2 := translateIndex(tp.atom2, n1, match1, match2)
		bond := merged.GetBond(a1, a2)
		if bond == nil {
			return 0, errors.Newf(errors.CodeBondNotFound,
				"no bond between atoms %d and %d to carry RCA4 annotations", a1, a2).
				WithDetail("title=" + merged.Title())
		}
		bond.Props.Set(structure.KeyRCA4First,
			annotation.Int(translateIndex(tp.first, n1, match1, match2)))
		bond.Props.Set(structure.KeyRCA4Second,
			annotation.Int(translateIndex(tp.second, n1, match1, match2)))
	}
	return len(tuples), nil
}

// translateIndex maps a struct2 atom index x into the merged structure's
// post-deletion index space.
//
// A common atom (x ∈ match2) was deleted as a duplicate; its surviving
// counterpart is the positionally corresponding struct1 atom.  Any other
// atom sits at x + n1 in the union, reduced by the number of deleted common
// union indices strictly below it — the compaction caused by deleting all
// duplicates at once.  This is a pure function of the final deletion set.
func translateIndex(x, n1 int, match1, match2 pattern.Match) int {
	for j, m := range match2 {
		if m == x {
			return match1[j]
		}
	}
	unionIdx := x + n1
	deletedBelow := 0
	for _, m := range match2 {
		if m+n1 < unionIdx {
			deletedBelow++
		}
	}
	return unionIdx - deletedBelow
}
