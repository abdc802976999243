package xasscan

import (
	"fmt"
	"math"

	"github.com/cpoulain/xastools/pkg/util"
)

// BuildDistances computes the Euclidean distance between every sample point
// and every atom. No cutoff is applied here so that the cutoff radius can be
// changed without recomputing the geometry. A point or atom with undefined
// coordinates is a configuration error.
func BuildDistances(points []SamplePoint, atoms []Atom) ([][]float64, error) {
	for _, p := range points {
		if nan3(p.XYZ) {
			return nil, fmt.Errorf("point %d has undefined coordinates", p.Index)
		}
	}
	for _, a := range atoms {
		if nan3(a.XYZ) {
			return nil, fmt.Errorf("atom %d has undefined coordinates", a.ID)
		}
	}

	dist := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, len(atoms))
		for j, a := range atoms {
			var d float64
			for k := 0; k < 3; k++ {
				d += util.Pow(p.XYZ[k]-a.XYZ[k], 2)
			}
			row[j] = math.Sqrt(d)
		}
		dist[i] = row
	}

	return dist, nil
}

func nan3(v [3]float64) bool {
	return math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsNaN(v[2])
}
