// Package annotation defines the typed key-value annotation model shared by
// structures and bonds.  Values are a closed tagged union of string, int, and
// bool — the three types the Maestro property convention encodes in its key
// prefixes (s_*, i_*, b_*).  Maps preserve key insertion order because catalog
// iteration order is a first-class contract: it determines which declared
// pattern wins during match lookup.
package annotation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Kind discriminates the value stored in a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// KindForKey derives the value kind from a Maestro-style key prefix.
// Keys without a recognised prefix default to KindString.
func KindForKey(key string) Kind {
	switch {
	case strings.HasPrefix(key, "i_"):
		return KindInt
	case strings.HasPrefix(key, "b_"):
		return KindBool
	default:
		return KindString
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Value
// ─────────────────────────────────────────────────────────────────────────────

// Value is an immutable tagged-union annotation value.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	s    string
	i    int
	b    bool
}

// String constructs a string-kinded Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int constructs an int-kinded Value.
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// Bool constructs a bool-kinded Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the discriminator of v.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload and true when v is string-kinded.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsInt returns the int payload and true when v is int-kinded.
func (v Value) AsInt() (int, bool) {
	return v.i, v.kind == KindInt
}

// AsBool returns the bool payload and true when v is bool-kinded.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Truthy reports whether v is non-falsy: a non-empty string, a non-zero int,
// or true.  The bond-annotation merge rule overwrites a target value only
// when it is absent or falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.s != ""
	case KindInt:
		return v.i != 0
	case KindBool:
		return v.b
	default:
		return false
	}
}

// Text returns the canonical file representation of v: the raw string, the
// decimal int, or "1"/"0" for bools (Maestro encodes booleans as integers).
func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	default:
		return v.s
	}
}

// Parse converts raw text into a Value of the kind implied by key's prefix.
func Parse(key, raw string) (Value, error) {
	switch KindForKey(key) {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, errors.Wrap(err, errors.CodeFileParse,
				fmt.Sprintf("annotation %q: not an integer", key))
		}
		return Int(n), nil
	case KindBool:
		switch strings.TrimSpace(raw) {
		case "1", "true", "True":
			return Bool(true), nil
		case "0", "false", "False", "":
			return Bool(false), nil
		default:
			return Value{}, errors.Newf(errors.CodeFileParse,
				"annotation %q: not a boolean: %q", key, raw)
		}
	default:
		return String(raw), nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Map
// ─────────────────────────────────────────────────────────────────────────────

// Map is a mutable annotation mapping with stable insertion-ordered iteration.
// The zero value is not usable; construct with NewMap.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty annotation map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Set stores val under key.  A new key is appended to the iteration order; an
// existing key keeps its original position.
func (m *Map) Set(key string, val Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

// Get returns the value stored under key, and whether the key is present.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Delete removes key, preserving the relative order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.  The slice is a copy.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := &Map{
		keys: make([]string, len(m.keys)),
		vals: make(map[string]Value, len(m.vals)),
	}
	copy(c.keys, m.keys)
	for k, v := range m.vals {
		c.vals[k] = v
	}
	return c
}

// ValuesWhereKeyContains returns, in insertion order, every value whose key
// contains sub.  This is the query behind pattern discovery: any structure
// annotation whose key contains "pattern" declares a match pattern.
func (m *Map) ValuesWhereKeyContains(sub string) []Value {
	var out []Value
	for _, k := range m.keys {
		if strings.Contains(k, sub) {
			out = append(out, m.vals[k])
		}
	}
	return out
}

// ── Typed accessors with defaults ────────────────────────────────────────────
// Absent keys and kind mismatches yield the supplied default, mirroring the
// permissive property lookups of the original tooling.

// StringOr returns the string value stored under key, or def.
func (m *Map) StringOr(key, def string) string {
	if v, ok := m.vals[key]; ok {
		if s, isStr := v.AsString(); isStr {
			return s
		}
	}
	return def
}

// IntOr returns the int value stored under key, or def.
func (m *Map) IntOr(key string, def int) int {
	if v, ok := m.vals[key]; ok {
		if i, isInt := v.AsInt(); isInt {
			return i
		}
	}
	return def
}

// BoolOr returns the bool value stored under key, or def.
func (m *Map) BoolOr(key string, def bool) bool {
	if v, ok := m.vals[key]; ok {
		if b, isBool := v.AsBool(); isBool {
			return b
		}
	}
	return def
}
