package pattern

import (
	"fmt"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Finder locates the common-atom correspondence between two structures.
type Finder struct {
	log logging.Logger
}

// NewFinder constructs a Finder.  A nil logger falls back to the nop logger.
func NewFinder(log logging.Logger) *Finder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Finder{log: log.Named("pattern")}
}

// FindCommonAtoms locates matching atom tuples in both structures using the
// patterns declared by struct2, in catalog order.
//
// For each pattern, struct1 is matched first under struct1's own policy
// annotations; the first pattern that yields a non-empty struct1 match set is
// selected, and struct2's match set under that same pattern (possibly empty)
// is returned alongside.  Remaining patterns are not tried.
//
// If no catalogued pattern yields a non-empty match on struct1, the lookup
// fails with CodeNoPatternMatch naming both structures' titles.
func (f *Finder) FindCommonAtoms(struct1, struct2 *structure.Structure) ([]Match, []Match, error) {
	patterns := Catalog(struct2)
	f.log.Debug("patterns catalogued",
		logging.String("source", struct2.Title()),
		logging.Int("count", len(patterns)))

	for _, pat := range patterns {
		matches1, err := Find(struct1, pat, struct1.FirstMatchOnly(), struct1.UseSubstructure())
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeUnknown,
				fmt.Sprintf("matching pattern against %q", struct1.Title()))
		}
		if len(matches1) == 0 {
			f.log.Debug("pattern not found",
				logging.String("pattern", pat),
				logging.String("structure", struct1.Title()))
			continue
		}
		f.log.Debug("pattern found",
			logging.String("pattern", pat),
			logging.String("structure", struct1.Title()),
			logging.Int("matches", len(matches1)))

		matches2, err := Find(struct2, pat, struct2.FirstMatchOnly(), struct2.UseSubstructure())
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeUnknown,
				fmt.Sprintf("matching pattern against %q", struct2.Title()))
		}
		if len(matches2) > 0 {
			f.log.Debug("pattern found",
				logging.String("pattern", pat),
				logging.String("structure", struct2.Title()),
				logging.Int("matches", len(matches2)))
		}
		return matches1, matches2, nil
	}

	return nil, nil, errors.New(errors.CodeNoPatternMatch,
		"no declared pattern matches the first structure").
		WithDetail(fmt.Sprintf("titles=%s,%s", struct1.Title(), struct2.Title()))
}
