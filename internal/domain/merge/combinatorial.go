package merge

import (
	"time"

	"github.com/turtacn/ChemScreen/internal/domain/geometry"
	"github.com/turtacn/ChemScreen/internal/domain/pattern"
	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Pipeline drives the combinatorial merge: for every structure pair it finds
// the common-atom correspondence, superimposes, and merges once per match
// combination, accumulating across fragment groups.
type Pipeline struct {
	log    logging.Logger
	finder *pattern.Finder
	merger *Merger
	mets   *metrics.Set
}

// NewPipeline constructs a Pipeline.  A nil logger falls back to the nop
// logger; a nil metrics set disables instrumentation.
func NewPipeline(log logging.Logger, mets *metrics.Set) *Pipeline {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Pipeline{
		log:    log.Named("pipeline"),
		finder: pattern.NewFinder(log),
		merger: NewMerger(log, mets),
		mets:   mets,
	}
}

// MergePair produces one merged structure per combination of struct1's and
// struct2's match sets under the selected pattern.  struct2 is cloned per
// combination before superimposition, so neither input is mutated and no
// output aliases an input.
//
// The result can be empty without error when struct2's match set under the
// winning pattern is empty.
func (p *Pipeline) MergePair(struct1, struct2 *structure.Structure) ([]*structure.Structure, error) {
	matches1, matches2, err := p.finder.FindCommonAtoms(struct1, struct2)
	if err != nil {
		return nil, err
	}
	p.mets.AddMatches(len(matches1) + len(matches2))
	p.log.Debug("match sets found",
		logging.String("title1", struct1.Title()),
		logging.String("title2", struct2.Title()),
		logging.Int("matches1", len(matches1)),
		logging.Int("matches2", len(matches2)))

	var out []*structure.Structure
	for _, m1 := range matches1 {
		for _, m2 := range matches2 {
			start := time.Now()

			work := struct2.Clone()
			dev, err := geometry.Superimpose(struct1, m1, work, m2)
			if err != nil {
				return nil, err
			}
			p.log.Debug("superimposed",
				logging.Ints("match1", m1),
				logging.Ints("match2", m2),
				logging.Float64("rmsd", dev))

			merged, err := p.merger.Merge(struct1, m1, work, m2)
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
			p.mets.IncMerges()
			p.mets.ObserveMergeDuration(time.Since(start))
		}
	}
	return out, nil
}

// Run executes the full combinatorial merge over the given fragment groups
// (each already enantiomer-expanded).  Group 0 seeds the working set; every
// subsequent group replaces the working set with the merge outputs of all
// (working × group) structure pairs.  Any failure aborts the whole run; no
// partial results are returned.
func (p *Pipeline) Run(groups [][]*structure.Structure) ([]*structure.Structure, error) {
	if len(groups) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "no fragment groups given")
	}

	working := groups[0]
	for gi, group := range groups[1:] {
		var next []*structure.Structure
		for _, a := range working {
			for _, b := range group {
				merged, err := p.MergePair(a, b)
				if err != nil {
					return nil, err
				}
				next = append(next, merged...)
			}
		}
		p.log.Info("group merged",
			logging.Int("group", gi+1),
			logging.Int("working_set", len(next)))
		working = next
	}
	return working, nil
}

// ExpandGroup applies enantiomer expansion to every structure of a loaded
// group, preserving order: each structure is followed by its mirror image
// when its b_cs_both_enantiomers annotation is true.
func ExpandGroup(structs []*structure.Structure) []*structure.Structure {
	var out []*structure.Structure
	for _, s := range structs {
		out = append(out, s.ExpandEnantiomers()...)
	}
	return out
}
