package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemScreen/internal/domain/pattern"
	"github.com/turtacn/ChemScreen/internal/domain/structure"
)

func TestTranslateIndex(t *testing.T) {
	// struct1 has 4 atoms; common atoms are struct1{1,2,3} = struct2{1,2,3}.
	match1 := pattern.Match{1, 2, 3}
	match2 := pattern.Match{1, 2, 3}

	tests := []struct {
		name string
		x    int
		want int
	}{
		{"common atom maps to counterpart", 2, 2},
		{"first common atom", 1, 1},
		{"non-common atom compacts past all deletions", 4, 5},
		{"last non-common atom", 6, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateIndex(tt.x, 4, match1, match2))
		})
	}
}

func TestTranslateIndex_ReversedMatch(t *testing.T) {
	// Palindromic patterns can match in either direction; the counterpart is
	// chosen positionally, not by value.
	match1 := pattern.Match{3, 2, 1}
	match2 := pattern.Match{1, 2, 3}
	assert.Equal(t, 3, translateIndex(1, 4, match1, match2))
	assert.Equal(t, 1, translateIndex(3, 4, match1, match2))
}

func TestRemapRCA4_RoundTrip(t *testing.T) {
	s1, s2 := core(), ligand()

	// Pre-merge the tagged bond is 4-6 with outer atoms (1, 5):
	// the four-atom chain P(1)-C(4)-C(6)-C(5).  Record the atom types the
	// annotation references so we can check identity survives renumbering.
	pre4, _ := s2.Atom(4)
	pre6, _ := s2.Atom(6)
	pre1, _ := s2.Atom(1)
	pre5, _ := s2.Atom(5)

	m := NewMerger(nil, nil)
	merged, err := m.Merge(s1, backbone, s2, backbone)
	require.NoError(t, err)

	// Ligand atoms 4,5,6 land at 5,6,7 after the common trio is deleted.
	bond := merged.GetBond(5, 7)
	require.NotNil(t, bond, "tagged bond must survive the merge")
	assert.Equal(t, 1, bond.Props.IntOr(structure.KeyRCA4First, -1))
	assert.Equal(t, 6, bond.Props.IntOr(structure.KeyRCA4Second, -1))

	// The remapped indices still name atoms of the same types as before.
	now5, _ := merged.Atom(5)
	now7, _ := merged.Atom(7)
	now1, _ := merged.Atom(1)
	now6, _ := merged.Atom(6)
	assert.Equal(t, pre4.Type, now5.Type)
	assert.Equal(t, pre6.Type, now7.Type)
	assert.Equal(t, pre1.Type, now1.Type)
	assert.Equal(t, pre5.Type, now6.Type)
}

func TestRemapRCA4_ZeroMeansNoConstraint(t *testing.T) {
	s1, s2 := core(), ligand()
	// Neutralise the one real ring-closure record.
	setRCA4(s2, 4, 6, 0, 0)

	m := NewMerger(nil, nil)
	merged, err := m.Merge(s1, backbone, s2, backbone)
	require.NoError(t, err)

	// Nothing is rewritten, so the surviving bond keeps the zero values it
	// received through annotation copying.
	bond := merged.GetBond(5, 7)
	require.NotNil(t, bond)
	assert.Equal(t, 0, bond.Props.IntOr(structure.KeyRCA4First, -1))
}

func TestRemapRCA4_MissingSecondKeyIsFatal(t *testing.T) {
	s1, s2 := core(), ligand()
	s2.GetBond(4, 6).Props.Delete(structure.KeyRCA4Second)

	m := NewMerger(nil, nil)
	_, err := m.Merge(s1, backbone, s2, backbone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), structure.KeyRCA4Second)
}

func TestRemapRCA4_AnnotationOnCommonBond(t *testing.T) {
	// A ring-closure record on a backbone bond must land on the surviving
	// struct1 bond with translated outer indices.
	s1, s2 := core(), ligand()
	setRCA4(s2, 1, 2, 4, 5)

	m := NewMerger(nil, nil)
	merged, err := m.Merge(s1, backbone, s2, backbone)
	require.NoError(t, err)

	bond := merged.GetBond(1, 2)
	require.NotNil(t, bond)
	assert.Equal(t, 5, bond.Props.IntOr(structure.KeyRCA4First, -1))
	assert.Equal(t, 6, bond.Props.IntOr(structure.KeyRCA4Second, -1))
}
