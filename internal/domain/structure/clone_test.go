package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

func TestClone_Deep(t *testing.T) {
	s := chain("orig", "C3", "O2")
	s.Bonds()[0].Props.Set(KeyRCA4First, annotation.Int(2))

	c := s.Clone()
	assert.NotEqual(t, s.ID, c.ID, "clone gets a fresh identity")

	// Mutating the clone must not leak into the original.
	c.SetTitle("changed")
	c.Atoms()[0].X = 99
	c.Bonds()[0].Props.Set(KeyRCA4First, annotation.Int(7))

	assert.Equal(t, "orig", s.Title())
	assert.Equal(t, 0.0, s.Atoms()[0].X)
	assert.Equal(t, 2, s.Bonds()[0].Props.IntOr(KeyRCA4First, 0))
}

func TestMirror(t *testing.T) {
	s := chain("m", "C3", "N3")
	s.Atoms()[0].X = 1.5
	s.Atoms()[0].Y = -2.0
	s.Atoms()[0].Z = 0.25
	s.Atoms()[1].X = -3.0

	m := s.Mirror()
	assert.Equal(t, -1.5, m.Atoms()[0].X)
	assert.Equal(t, -2.0, m.Atoms()[0].Y, "Y unchanged")
	assert.Equal(t, 0.25, m.Atoms()[0].Z, "Z unchanged")
	assert.Equal(t, 3.0, m.Atoms()[1].X)

	// Original untouched.
	assert.Equal(t, 1.5, s.Atoms()[0].X)
}

func TestExpandEnantiomers(t *testing.T) {
	s := chain("e", "C3", "C3")
	got := s.ExpandEnantiomers()
	require.Len(t, got, 1)
	assert.Same(t, s, got[0])

	s.Props.Set(KeyBothEnantiomers, annotation.Bool(true))
	got = s.ExpandEnantiomers()
	require.Len(t, got, 2)
	assert.Same(t, s, got[0], "input structure always comes first")
	assert.Equal(t, -s.Atoms()[0].X, got[1].Atoms()[0].X)
	assert.Equal(t, s.Atoms()[0].Y, got[1].Atoms()[0].Y)

	s.Props.Set(KeyBothEnantiomers, annotation.Bool(false))
	assert.Len(t, s.ExpandEnantiomers(), 1)
}
