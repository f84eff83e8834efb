package pattern

import (
	"strings"
	"unicode"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Match is an ordered tuple of 1-based atom indices in one structure,
// positionally corresponding to the same tuple produced for the same pattern
// in another structure: index i of both tuples names the same physical site.
type Match []int

// ─────────────────────────────────────────────────────────────────────────────
// Query compilation
// ─────────────────────────────────────────────────────────────────────────────

// qnode is one atom primitive of a compiled pattern.  The compiled query is a
// tree: every node except the root has exactly one parent, reached by a bond
// of the given order (0 = any order).
type qnode struct {
	label  string // element symbol, or exact atom-type label in exact mode
	exact  bool   // match Atom.Type exactly instead of Atom.Element
	any    bool   // wildcard: matches every atom
	parent int    // index of parent node, -1 for the root
	order  int    // required bond order to parent, 0 = any
}

// compileSMARTS parses the SMARTS-like pattern language:
//
//	element symbols   C, Cl, Rh     matched against the atom's element
//	bracket atoms     [Rh]          same, explicit boundaries
//	aromatic atoms    c, n, o, p, s matched as their uppercase element
//	wildcard          *             matches any atom
//	bonds             - = #         orders 1, 2, 3; adjacency alone = any order
//	branches          ( ... )
//
// Ring-closure digits are not supported; patterns describe acyclic queries.
func compileSMARTS(pat string) ([]qnode, error) {
	var nodes []qnode
	var stack []int
	prev := -1
	pending := 0

	addNode := func(n qnode) {
		n.parent = prev
		n.order = pending
		pending = 0
		nodes = append(nodes, n)
		prev = len(nodes) - 1
	}

	runes := []rune(pat)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j == len(runes) {
				return nil, errors.Newf(errors.CodeInvalidParam,
					"pattern %q: unclosed bracket atom", pat)
			}
			label := normaliseElement(string(runes[i+1 : j]))
			if label == "" {
				return nil, errors.Newf(errors.CodeInvalidParam,
					"pattern %q: empty bracket atom", pat)
			}
			addNode(qnode{label: label})
			i = j
		case r == '*':
			addNode(qnode{any: true})
		case r == '-':
			pending = 1
		case r == '=':
			pending = 2
		case r == '#':
			pending = 3
		case r == '(':
			if prev < 0 {
				return nil, errors.Newf(errors.CodeInvalidParam,
					"pattern %q: branch before any atom", pat)
			}
			stack = append(stack, prev)
		case r == ')':
			if len(stack) == 0 {
				return nil, errors.Newf(errors.CodeInvalidParam,
					"pattern %q: unbalanced ')'", pat)
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case unicode.IsUpper(r):
			sym := string(r)
			if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				sym += string(runes[i+1])
				i++
			}
			addNode(qnode{label: sym})
		case unicode.IsLower(r):
			// Aromatic shorthand; aromaticity itself is not modelled.
			addNode(qnode{label: strings.ToUpper(string(r))})
		case unicode.IsDigit(r):
			return nil, errors.Newf(errors.CodeInvalidParam,
				"pattern %q: ring closures are not supported", pat)
		case unicode.IsSpace(r):
			// ignore
		default:
			return nil, errors.Newf(errors.CodeInvalidParam,
				"pattern %q: unexpected character %q", pat, string(r))
		}
	}
	if len(stack) != 0 {
		return nil, errors.Newf(errors.CodeInvalidParam, "pattern %q: unbalanced '('", pat)
	}
	if len(nodes) == 0 {
		return nil, errors.Newf(errors.CodeInvalidParam, "pattern %q: no atoms", pat)
	}
	return nodes, nil
}

// compileExact parses the substructure pattern form: a dash-separated chain
// of exact atom-type labels, e.g. "P3-RH-P3".  Labels are compared to
// Atom.Type case-insensitively.
func compileExact(pat string) ([]qnode, error) {
	parts := strings.Split(pat, "-")
	var nodes []qnode
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.Newf(errors.CodeInvalidParam,
				"substructure pattern %q: empty atom label", pat)
		}
		parent := i - 1
		nodes = append(nodes, qnode{label: p, exact: true, parent: parent})
	}
	return nodes, nil
}

// normaliseElement canonicalises an element symbol: first letter upper,
// rest lower.
func normaliseElement(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) == 1 {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ─────────────────────────────────────────────────────────────────────────────
// Matching
// ─────────────────────────────────────────────────────────────────────────────

// Find evaluates pat against s and returns the matching atom-index tuples.
//
// When useSubstructure is true the pattern is interpreted as an exact
// atom-type chain; otherwise as the SMARTS-like language above.  When
// firstMatchOnly is true at most one Match is returned even if the pattern
// admits multiple atom orderings (a palindromic pattern matches both
// traversal directions); when false, every distinct mapping is returned,
// both directions included.
//
// Find never mutates s.  Enumeration is in ascending atom-index order, so
// results are deterministic for identical inputs.
func Find(s *structure.Structure, pat string, firstMatchOnly, useSubstructure bool) ([]Match, error) {
	var nodes []qnode
	var err error
	if useSubstructure {
		nodes, err = compileExact(pat)
	} else {
		nodes, err = compileSMARTS(pat)
	}
	if err != nil {
		return nil, err
	}

	matches := enumerate(s, nodes)
	if firstMatchOnly && len(matches) > 1 {
		matches = matches[:1]
	}
	return matches, nil
}

// nodeMatches reports whether atom idx of s satisfies query node n.
func nodeMatches(s *structure.Structure, n qnode, idx int) bool {
	a, err := s.Atom(idx)
	if err != nil {
		return false
	}
	if n.any {
		return true
	}
	if n.exact {
		return strings.EqualFold(a.Type, n.label)
	}
	return a.Element() == n.label
}

// enumerate runs the backtracking monomorphism search.  assignment[i] is the
// atom mapped to query node i; atoms are used at most once per mapping.
func enumerate(s *structure.Structure, nodes []qnode) []Match {
	var out []Match
	assignment := make([]int, len(nodes))
	used := make(map[int]bool, len(nodes))

	var recurse func(k int)
	recurse = func(k int) {
		if k == len(nodes) {
			m := make(Match, len(assignment))
			copy(m, assignment)
			out = append(out, m)
			return
		}
		n := nodes[k]
		var candidates []int
		if n.parent < 0 {
			candidates = make([]int, s.AtomCount())
			for i := range candidates {
				candidates[i] = i + 1
			}
		} else {
			candidates = s.BondedTo(assignment[n.parent])
		}
		for _, c := range candidates {
			if used[c] || !nodeMatches(s, n, c) {
				continue
			}
			if n.parent >= 0 && n.order != 0 {
				b := s.GetBond(assignment[n.parent], c)
				if b == nil || b.Order != n.order {
					continue
				}
			}
			assignment[k] = c
			used[c] = true
			recurse(k + 1)
			used[c] = false
		}
	}
	recurse(0)
	return out
}
