package xasscan

import (
	"errors"
	"log"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Result is the accumulated spectrum at every sample point. Data is indexed
// by point then by energy. Empty marks the points that had no contributing
// atom within the cutoff radius; their row is all zero.
type Result struct {
	Points []SamplePoint
	EInit  float64
	EFinal float64
	NE     int
	Data   [][]float64
	Empty  []bool
}

// Alpha converts a gaussian full width at half maximum into the exponent
// factor of exp(-alpha*d²).
func Alpha(fwhm float64) float64 {
	sigma := fwhm / (2 * math.Sqrt(2*math.Log(2)))
	return 1 / (2 * sigma * sigma)
}

// Accumulate computes the weighted average spectrum at every sample point.
// For one point, every atom whose spectrum is known (central atoms of the
// target element and their periodic images) and whose distance is within
// cutoff contributes with the gaussian weight exp(-alpha*d²); the weights of
// a point are normalized to sum to 1. Points are independent of each other,
// so they are distributed over all the threads available; every point writes
// only its own slot of the result.
func Accumulate(points []SamplePoint, atoms []Atom, dist [][]float64,
	spectra map[int]*Spectrum, cutoff, fwhm float64) (*Result, error) {

	var ref *Spectrum
	for _, sp := range spectra {
		ref = sp
		break
	}
	if ref == nil {
		return nil, errors.New("no spectra to accumulate")
	}

	res := &Result{
		Points: points,
		EInit:  ref.EInit,
		EFinal: ref.EFinal,
		NE:     ref.N,
		Data:   make([][]float64, len(points)),
		Empty:  make([]bool, len(points)),
	}

	alpha := Alpha(fwhm)

	var (
		cursor = -1
		fatal  error
		mux    sync.Mutex
		wg     sync.WaitGroup
	)

	worker := func() {
		defer wg.Done()
		for {
			mux.Lock()
			cursor++
			p := cursor
			stop := fatal != nil
			mux.Unlock()
			if p >= len(points) || stop {
				return
			}

			row, empty, err := accumulatePoint(p, atoms, dist[p], spectra,
				cutoff, alpha, res.NE)
			if err != nil {
				mux.Lock()
				if fatal == nil {
					fatal = err
				}
				mux.Unlock()
				return
			}

			res.Data[p] = row
			res.Empty[p] = empty
			if empty {
				log.Printf("warning: point %d has no atom within %g", points[p].Index, cutoff)
			}
			if (p+1)%500 == 0 {
				log.Printf("accumulated %d/%d points", p+1, len(points))
			}
		}
	}

	for i := 0; i < (runtime.NumCPU() - 1); i++ {
		wg.Add(1)
		go worker()
	}

	wg.Add(1)
	worker()
	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}

	return res, nil
}

// accumulatePoint builds the spectrum of a single point. The returned bool
// reports whether the point had no contributing atom at all, which is a
// defined state (zero spectrum) distinct from a genuinely small one.
func accumulatePoint(p int, atoms []Atom, dist []float64,
	spectra map[int]*Spectrum, cutoff, alpha float64, ne int) ([]float64, bool, error) {

	var (
		contrib []int
		weights []float64
		sum     float64
	)

	for j, a := range atoms {
		if dist[j] > cutoff {
			continue
		}
		if _, ok := spectra[a.Central]; !ok {
			continue
		}
		w := math.Exp(-alpha * dist[j] * dist[j])
		contrib = append(contrib, j)
		weights = append(weights, w)
		sum += w
	}

	row := make([]float64, ne)
	if len(contrib) == 0 {
		return row, true, nil
	}

	for i, j := range contrib {
		sp := spectra[atoms[j].Central]
		if sp.N != ne {
			return nil, false, errors.New("spectrum length changed during accumulation")
		}
		floats.AddScaled(row, weights[i]/sum, sp.Total)
	}

	return row, false, nil
}
