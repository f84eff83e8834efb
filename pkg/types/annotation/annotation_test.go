package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForKey(t *testing.T) {
	assert.Equal(t, KindString, KindForKey("s_m_title"))
	assert.Equal(t, KindInt, KindForKey("i_cs_rca4_1"))
	assert.Equal(t, KindBool, KindForKey("b_cs_first_match_only"))
	assert.Equal(t, KindString, KindForKey("weird_key"))
}

func TestValue_Truthy(t *testing.T) {
	assert.True(t, String("x").Truthy())
	assert.False(t, String("").Truthy())
	assert.True(t, Int(7).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.False(t, Value{}.Truthy(), "zero value is the empty string")
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "abc", String("abc").Text())
	assert.Equal(t, "-3", Int(-3).Text())
	assert.Equal(t, "1", Bool(true).Text())
	assert.Equal(t, "0", Bool(false).Text())
}

func TestParse(t *testing.T) {
	v, err := Parse("i_cs_rca4_1", " 12 ")
	require.NoError(t, err)
	i, ok := v.AsInt()
	assert.True(t, ok)
	assert.Equal(t, 12, i)

	v, err = Parse("b_cs_both_enantiomers", "1")
	require.NoError(t, err)
	b, ok := v.AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	v, err = Parse("s_cs_pattern", "P-Rh-P")
	require.NoError(t, err)
	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "P-Rh-P", s)

	_, err = Parse("i_cs_rca4_1", "not-a-number")
	assert.Error(t, err)
	_, err = Parse("b_cs_substructure", "maybe")
	assert.Error(t, err)
}

func TestMap_InsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("s_cs_pattern_2", String("second"))
	m.Set("s_m_title", String("t"))
	m.Set("s_cs_pattern", String("first"))

	assert.Equal(t, []string{"s_cs_pattern_2", "s_m_title", "s_cs_pattern"}, m.Keys())

	// Overwriting must not move the key.
	m.Set("s_cs_pattern_2", String("second-v2"))
	assert.Equal(t, []string{"s_cs_pattern_2", "s_m_title", "s_cs_pattern"}, m.Keys())

	got := m.ValuesWhereKeyContains("pattern")
	require.Len(t, got, 2)
	s0, _ := got[0].AsString()
	s1, _ := got[1].AsString()
	assert.Equal(t, "second-v2", s0)
	assert.Equal(t, "first", s1)
}

func TestMap_Delete(t *testing.T) {
	m := NewMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Set("c", Int(3))
	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
	m.Delete("missing") // no-op
	assert.Equal(t, 2, m.Len())
}

func TestMap_Clone(t *testing.T) {
	m := NewMap()
	m.Set("a", Int(1))
	c := m.Clone()
	c.Set("a", Int(9))
	c.Set("b", Int(2))

	v, _ := m.Get("a")
	i, _ := v.AsInt()
	assert.Equal(t, 1, i)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}

func TestMap_TypedDefaults(t *testing.T) {
	m := NewMap()
	m.Set("b_cs_first_match_only", Bool(true))
	m.Set("i_cs_rca4_1", Int(4))
	m.Set("s_m_title", String("lig"))

	assert.True(t, m.BoolOr("b_cs_first_match_only", false))
	assert.False(t, m.BoolOr("b_cs_use_substructure", false))
	assert.Equal(t, 4, m.IntOr("i_cs_rca4_1", 0))
	assert.Equal(t, 0, m.IntOr("i_cs_rca4_2", 0))
	assert.Equal(t, "lig", m.StringOr("s_m_title", ""))

	// Kind mismatch falls back to the default.
	assert.Equal(t, 0, m.IntOr("s_m_title", 0))
}
