package xasscan

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SamplePoint is one point of the scan. Index is the 1-based position of the
// point in the output grid.
type SamplePoint struct {
	Index int
	XYZ   [3]float64
}

// LinePoints interpolates n points uniformly between start and end, both
// included. The ordering follows the direction start to end.
func LinePoints(start, end [3]float64, n int) ([]SamplePoint, error) {
	if n < 2 {
		return nil, fmt.Errorf("a line needs at least 2 points (got %d)", n)
	}

	pts := make([]SamplePoint, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		var xyz [3]float64
		for k := 0; k < 3; k++ {
			xyz[k] = start[k] + t*(end[k]-start[k])
		}
		pts[i] = SamplePoint{Index: i + 1, XYZ: xyz}
	}

	return pts, nil
}

// MeshPoints places na*nb*nc points on a regular grid spanning the unit
// cell, at the fractional coordinates i/na, j/nb, k/nc with i varying
// slowest and k fastest. The fractional coordinates are mapped to cartesian
// through the lattice vectors (the rows of cell).
func MeshPoints(na, nb, nc int, cell *mat.Dense) ([]SamplePoint, error) {
	if na < 1 || nb < 1 || nc < 1 {
		return nil, fmt.Errorf("mesh counts must be at least 1 (got %d %d %d)", na, nb, nc)
	}
	if cell == nil {
		return nil, errors.New("no lattice vectors")
	}

	pts := make([]SamplePoint, 0, na*nb*nc)
	frac := mat.NewVecDense(3, nil)
	cart := mat.NewVecDense(3, nil)

	idx := 1
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			for k := 0; k < nc; k++ {
				frac.SetVec(0, float64(i)/float64(na))
				frac.SetVec(1, float64(j)/float64(nb))
				frac.SetVec(2, float64(k)/float64(nc))

				// rows of cell are the lattice vectors, so
				// cart = fa*a1 + fb*a2 + fc*a3 = cellᵀ·frac
				cart.MulVec(cell.T(), frac)

				pts = append(pts, SamplePoint{
					Index: idx,
					XYZ:   [3]float64{cart.AtVec(0), cart.AtVec(1), cart.AtVec(2)},
				})
				idx++
			}
		}
	}

	return pts, nil
}
