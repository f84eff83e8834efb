package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemScreen/pkg/errors"
	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

// chain builds a linear structure A1-A2-...-An from the given atom types.
func chain(title string, types ...string) *Structure {
	s := New(title, title+"_entry")
	for i, ty := range types {
		s.AddAtom(Atom{Type: ty, X: float64(i)})
	}
	for i := 1; i < len(types); i++ {
		if _, err := s.AddBond(i, i+1, 1); err != nil {
			panic(err)
		}
	}
	return s
}

func TestAtom_Element(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"P3", "P"},
		{"RH", "Rh"},
		{"C3", "C"},
		{"c2", "C"},
		{"CL1", "Cl"},
		{"H", "H"},
		{"123", "123"},
	}
	for _, tt := range tests {
		a := Atom{Type: tt.typ}
		assert.Equal(t, tt.want, a.Element(), "type %q", tt.typ)
	}
}

func TestStructure_AtomIndexing(t *testing.T) {
	s := chain("t", "C3", "C3", "O2")
	assert.Equal(t, 3, s.AtomCount())

	a, err := s.Atom(1)
	require.NoError(t, err)
	assert.Equal(t, "C3", a.Type)

	_, err = s.Atom(0)
	assert.True(t, errors.IsCode(err, errors.CodeAtomIndex))
	_, err = s.Atom(4)
	assert.True(t, errors.IsCode(err, errors.CodeAtomIndex))
}

func TestStructure_Bonds(t *testing.T) {
	s := chain("t", "C3", "C3", "C3")

	assert.NotNil(t, s.GetBond(1, 2))
	assert.NotNil(t, s.GetBond(2, 1), "lookup is unordered")
	assert.Nil(t, s.GetBond(1, 3))

	assert.Equal(t, []int{1, 3}, s.BondedTo(2))
	assert.Len(t, s.BondsOf(2), 2)
	assert.Len(t, s.BondsOf(1), 1)

	_, err := s.AddBond(1, 2, 1)
	assert.Error(t, err, "duplicate bond")
	_, err = s.AddBond(2, 2, 1)
	assert.Error(t, err, "self bond")
	_, err = s.AddBond(1, 9, 1)
	assert.True(t, errors.IsCode(err, errors.CodeAtomIndex))
}

func TestStructure_DeleteAtoms(t *testing.T) {
	// 1-2-3-4-5 chain; delete 2 and 4.
	s := chain("t", "A", "B", "C", "D", "E")
	require.NoError(t, s.DeleteAtoms([]int{4, 2, 4})) // order and dupes irrelevant

	assert.Equal(t, 3, s.AtomCount())
	a1, _ := s.Atom(1)
	a2, _ := s.Atom(2)
	a3, _ := s.Atom(3)
	assert.Equal(t, "A", a1.Type)
	assert.Equal(t, "C", a2.Type)
	assert.Equal(t, "E", a3.Type)

	// Every bond touched a deleted atom, so none survive.
	assert.Empty(t, s.Bonds())
}

func TestStructure_DeleteAtoms_RemapsBonds(t *testing.T) {
	// Triangle 1-2, 2-3, 1-3 plus pendant 3-4; delete atom 1.
	s := New("tri", "tri")
	for _, ty := range []string{"A", "B", "C", "D"} {
		s.AddAtom(Atom{Type: ty})
	}
	mustBond := func(a, b int) {
		_, err := s.AddBond(a, b, 1)
		require.NoError(t, err)
	}
	mustBond(1, 2)
	mustBond(2, 3)
	mustBond(1, 3)
	mustBond(3, 4)

	require.NoError(t, s.DeleteAtoms([]int{1}))
	require.Len(t, s.Bonds(), 2)
	assert.NotNil(t, s.GetBond(1, 2), "old 2-3 renumbered to 1-2")
	assert.NotNil(t, s.GetBond(2, 3), "old 3-4 renumbered to 2-3")

	err := s.DeleteAtoms([]int{99})
	assert.True(t, errors.IsCode(err, errors.CodeAtomIndex))
}

func TestStructure_Policies(t *testing.T) {
	s := New("t", "t")
	assert.False(t, s.FirstMatchOnly())
	assert.False(t, s.UseSubstructure())

	s.Props.Set(KeyFirstMatchOnly, annotation.Bool(true))
	s.Props.Set(KeyUseSubstructure, annotation.Bool(true))
	assert.True(t, s.FirstMatchOnly())
	assert.True(t, s.UseSubstructure())
}

func TestStructure_TitleEntryName(t *testing.T) {
	s := New("lig-a", "lig_a")
	assert.Equal(t, "lig-a", s.Title())
	assert.Equal(t, "lig_a", s.EntryName())
	s.SetTitle("x")
	s.SetEntryName("y")
	assert.Equal(t, "x", s.Title())
	assert.Equal(t, "y", s.EntryName())
}
