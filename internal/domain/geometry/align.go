// Package geometry implements the rigid-body alignment step of the merge
// pipeline: superimposing one structure onto another by the Kabsch algorithm
// over a pair of matched atom tuples.  This is the only place coordinate
// geometry is touched outside of enantiomer inversion.
package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// Superimpose computes the rigid rotation and translation that minimise the
// root-mean-square deviation between the atoms of struct1 named by match1
// (fixed) and the atoms of struct2 named by match2 (moving), then applies
// that transform to every atom of struct2 in place.  It returns the residual
// RMSD over the matched atoms.
//
// match1 and match2 must have equal, non-zero length; a length mismatch is a
// CodeMismatchedArity error.  The rotation is always proper (determinant +1):
// when the best orthogonal map would be a reflection, the smallest singular
// direction is flipped, so enantiomers are never silently inverted here.
func Superimpose(struct1 *structure.Structure, match1 []int, struct2 *structure.Structure, match2 []int) (float64, error) {
	n := len(match1)
	if n != len(match2) {
		return 0, errors.Newf(errors.CodeMismatchedArity,
			"match tuples have unequal length: %d vs %d", n, len(match2)).
			WithDetail(fmt.Sprintf("titles=%s,%s", struct1.Title(), struct2.Title()))
	}
	if n == 0 {
		return 0, errors.New(errors.CodeInvalidParam, "cannot superimpose on an empty match")
	}

	fixed, err := coords(struct1, match1)
	if err != nil {
		return 0, err
	}
	moving, err := coords(struct2, match2)
	if err != nil {
		return 0, err
	}

	fc := centroid(fixed)
	mc := centroid(moving)

	// Covariance H = Σ (p - mc)(q - fc)ᵀ over matched pairs, moving → fixed.
	h := mat.NewDense(3, 3, nil)
	for k := 0; k < n; k++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				h.Set(i, j, h.At(i, j)+(moving[k][i]-mc[i])*(fixed[k][j]-fc[j]))
			}
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return 0, errors.New(errors.CodeInternal, "SVD factorisation failed during superimposition").
			WithDetail("title=" + struct2.Title())
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// R = V D Uᵀ with D = diag(1, 1, sign(det(V Uᵀ))) to force a proper rotation.
	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1.0
	}
	dm := mat.NewDiagDense(3, []float64{1, 1, d})
	var vd, r mat.Dense
	vd.Mul(&v, dm)
	r.Mul(&vd, u.T())

	// Apply x' = R (x - mc) + fc to every atom of struct2.
	atoms := struct2.Atoms()
	for i := range atoms {
		p := [3]float64{atoms[i].X - mc[0], atoms[i].Y - mc[1], atoms[i].Z - mc[2]}
		var q [3]float64
		for row := 0; row < 3; row++ {
			q[row] = r.At(row, 0)*p[0] + r.At(row, 1)*p[1] + r.At(row, 2)*p[2] + fc[row]
		}
		atoms[i].X, atoms[i].Y, atoms[i].Z = q[0], q[1], q[2]
	}

	moved, err := coords(struct2, match2)
	if err != nil {
		return 0, err
	}
	return rmsd(fixed, moved), nil
}

// coords gathers the coordinates of the atoms named by match, in match order.
func coords(s *structure.Structure, match []int) ([][3]float64, error) {
	out := make([][3]float64, len(match))
	for i, idx := range match {
		a, err := s.Atom(idx)
		if err != nil {
			return nil, err
		}
		out[i] = [3]float64{a.X, a.Y, a.Z}
	}
	return out, nil
}

func centroid(pts [][3]float64) [3]float64 {
	var c [3]float64
	for _, p := range pts {
		c[0] += p[0]
		c[1] += p[1]
		c[2] += p[2]
	}
	n := float64(len(pts))
	c[0] /= n
	c[1] /= n
	c[2] /= n
	return c
}

func rmsd(a, b [][3]float64) float64 {
	var sum float64
	for i := range a {
		dx := a[i][0] - b[i][0]
		dy := a[i][1] - b[i][1]
		dz := a[i][2] - b[i][2]
		sum += dx*dx + dy*dy + dz*dz
	}
	return math.Sqrt(sum / float64(len(a)))
}
