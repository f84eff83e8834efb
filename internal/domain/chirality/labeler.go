// Package chirality derives stereocentre codes for merged structures and
// stamps them into the title and entry name, so output names distinguish the
// handedness of otherwise identical compositions.
package chirality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
)

// volumeEpsilon separates a genuinely pyramidal centre from a numerically
// planar one.
const volumeEpsilon = 1e-9

// Labeler computes per-atom chirality codes.
type Labeler struct {
	log logging.Logger
}

// NewLabeler constructs a Labeler.  A nil logger falls back to the nop logger.
func NewLabeler(log logging.Logger) *Labeler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Labeler{log: log.Named("chirality")}
}

// Label appends "_" plus the concatenated per-atom codes to the structure's
// title and entry name and returns the suffix, or "" when the structure has
// no stereocentre.
//
// An atom qualifies when it has at least four neighbours whose substituent
// branches are pairwise disjoint.  The code is the atom index followed by "r"
// or "s" from the sign of the signed volume spanned by the centroids of the
// three lowest-index branches, so mirror images always receive opposite
// codes.  Codes are emitted in ascending atom index order.
func (l *Labeler) Label(s *structure.Structure) string {
	var codes []string
	for idx := 1; idx <= s.AtomCount(); idx++ {
		code, ok := l.atomCode(s, idx)
		if ok {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return ""
	}

	suffix := "_" + strings.Join(codes, "")
	s.SetTitle(s.Title() + suffix)
	s.SetEntryName(s.EntryName() + suffix)
	l.log.Debug("chirality labelled",
		logging.String("title", s.Title()),
		logging.Int("centres", len(codes)))
	return suffix
}

// LabelAll labels every structure in order.
func (l *Labeler) LabelAll(structs []*structure.Structure) {
	for _, s := range structs {
		l.Label(s)
	}
}

func (l *Labeler) atomCode(s *structure.Structure, idx int) (string, bool) {
	neighbors := s.BondedTo(idx)
	if len(neighbors) < 4 {
		return "", false
	}
	sort.Ints(neighbors)

	branches := make([][]int, len(neighbors))
	seen := map[int]bool{}
	for i, nb := range neighbors {
		branches[i] = branchAtoms(s, idx, nb)
		for _, a := range branches[i] {
			if seen[a] {
				// Two branches meet in a ring, so the substituents are
				// not distinct.
				return "", false
			}
			seen[a] = true
		}
	}

	center, _ := s.Atom(idx)
	v := make([][3]float64, 3)
	for i := 0; i < 3; i++ {
		cx, cy, cz := branchCentroid(s, branches[i])
		v[i] = [3]float64{cx - center.X, cy - center.Y, cz - center.Z}
	}
	vol := signedVolume(v[0], v[1], v[2])
	if vol > volumeEpsilon {
		return fmt.Sprintf("%dr", idx), true
	}
	if vol < -volumeEpsilon {
		return fmt.Sprintf("%ds", idx), true
	}
	return "", false
}

// branchAtoms returns every atom reachable from root without crossing center,
// root included.
func branchAtoms(s *structure.Structure, center, root int) []int {
	visited := map[int]bool{center: true, root: true}
	queue := []int{root}
	out := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range s.BondedTo(cur) {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
				out = append(out, nb)
			}
		}
	}
	return out
}

func branchCentroid(s *structure.Structure, atoms []int) (x, y, z float64) {
	for _, idx := range atoms {
		a, _ := s.Atom(idx)
		x += a.X
		y += a.Y
		z += a.Z
	}
	n := float64(len(atoms))
	return x / n, y / n, z / n
}

// signedVolume is the scalar triple product a · (b × c).
func signedVolume(a, b, c [3]float64) float64 {
	return a[0]*(b[1]*c[2]-b[2]*c[1]) +
		a[1]*(b[2]*c[0]-b[0]*c[2]) +
		a[2]*(b[0]*c[1]-b[1]*c[0])
}
