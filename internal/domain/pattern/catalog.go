// Package pattern implements pattern discovery and atom matching: extracting
// declared match patterns from a structure's annotations, evaluating a pattern
// against a structure's atom graph, and locating the common-atom
// correspondence between two structures prior to superimposition and merging.
package pattern

import (
	"github.com/turtacn/ChemScreen/internal/domain/structure"
)

// Catalog returns the pattern strings declared by s: the value of every
// structure annotation whose key contains "pattern", in the structure's
// stable annotation iteration order.  Non-string values are skipped.
//
// An empty result is valid and means the structure declares no patterns.
// Catalog order is a contract: the first catalogued pattern that matches
// wins during common-atom lookup.
func Catalog(s *structure.Structure) []string {
	var out []string
	for _, v := range s.Props.ValuesWhereKeyContains(structure.PatternKeySubstring) {
		if p, ok := v.AsString(); ok && p != "" {
			out = append(out, p)
		}
	}
	return out
}
