package xasscan

import (
	"bufio"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpoulain/xastools/pkg/util"
)

// Spectrum is the total absorption intensity of one atom on a regular energy
// axis of N points between EInit and EFinal.
type Spectrum struct {
	EInit  float64
	EFinal float64
	N      int
	Total  []float64
}

// EDelta returns the energy step of the axis.
func (s *Spectrum) EDelta() float64 {
	return (s.EFinal - s.EInit) / float64(s.N-1)
}

// Source loads the spectrum of one atom. There are two implementations: one
// file per atom (FileSource) and one column per atom out of a pre-tabulated
// PDOS table (ColumnSource).
type Source interface {
	Load(atomID int) (*Spectrum, error)
}

// FileSource reads the spectrum of atom id from the file
// <dir>/<elem>_<id>.<edge>. The first column of the file is the energy and
// the second the total intensity; further columns (polarization components)
// are ignored here.
type FileSource struct {
	Dir  string
	Elem string
	Edge string
}

// Load implements Source.
func (s FileSource) Load(atomID int) (*Spectrum, error) {
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%d.%s", s.Elem, atomID, s.Edge))

	f, err := util.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := util.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: only %d energy points", path, len(rows))
	}
	if len(rows[0]) < 2 {
		return nil, fmt.Errorf("%s: no total intensity column", path)
	}

	sp := &Spectrum{
		EInit:  rows[0][0],
		EFinal: rows[len(rows)-1][0],
		N:      len(rows),
		Total:  make([]float64, len(rows)),
	}
	for i, row := range rows {
		sp.Total[i] = row[1]
	}

	return sp, nil
}

// ColumnSource serves spectra out of one pre-tabulated density-of-states
// file. The header line names the columns; the column of atom id is the one
// called total.<id>. The first column is the shared energy axis.
type ColumnSource struct {
	File string

	names []string
	rows  [][]float64
}

// NewColumnSource reads and parses the table once; Load then only selects
// columns.
func NewColumnSource(path string) (*ColumnSource, error) {
	f, err := util.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src := &ColumnSource{File: path}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if src.names == nil {
			if fields[0] == "#" {
				fields = fields[1:]
			} else {
				fields[0] = strings.TrimPrefix(fields[0], "#")
			}
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s: header needs an energy column and at least one total column", path)
			}
			src.names = fields
			continue
		}

		if len(fields) != len(src.names) {
			return nil, fmt.Errorf("%s: line %d: %d columns (expected %d)",
				path, line, len(fields), len(src.names))
		}
		row := make([]float64, len(fields))
		for k, v := range fields {
			row[k], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", path, line, err)
			}
		}
		src.rows = append(src.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(src.rows) < 2 {
		return nil, fmt.Errorf("%s: only %d energy points", path, len(src.rows))
	}

	return src, nil
}

// Load implements Source.
func (s *ColumnSource) Load(atomID int) (*Spectrum, error) {
	want := "total." + strconv.Itoa(atomID)
	col := -1
	for k, name := range s.names {
		if name == want {
			col = k
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no column %s", s.File, want)
	}

	sp := &Spectrum{
		EInit:  s.rows[0][0],
		EFinal: s.rows[len(s.rows)-1][0],
		N:      len(s.rows),
		Total:  make([]float64, len(s.rows)),
	}
	for i, row := range s.rows {
		sp.Total[i] = row[col]
	}

	return sp, nil
}

// LoadSpectra loads the spectrum of every central atom of the target
// element. All spectra of a run must share the energy axis of the first one:
// same point count, same initial energy, same final energy. A mismatch makes
// the whole run meaningless and is a fatal error.
func LoadSpectra(atoms []Atom, elem string, src Source) (map[int]*Spectrum, error) {
	spectra := make(map[int]*Spectrum)

	var first *Spectrum
	for _, a := range atoms {
		if a.Name != elem || a.ID != a.Central {
			continue
		}
		if _, ok := spectra[a.ID]; ok {
			continue
		}

		sp, err := src.Load(a.ID)
		if err != nil {
			return nil, err
		}

		if first == nil {
			first = sp
		} else if err := sameAxis(first, sp); err != nil {
			return nil, fmt.Errorf("atom %d: %w", a.ID, err)
		}

		spectra[a.ID] = sp
	}

	if len(spectra) == 0 {
		return nil, fmt.Errorf("no atom of element %s with a spectrum", elem)
	}

	return spectra, nil
}

func sameAxis(ref, sp *Spectrum) error {
	const tol = 1e-8
	if sp.N != ref.N {
		return fmt.Errorf("energy axis mismatch: %d points (expected %d)", sp.N, ref.N)
	}
	if math.Abs(sp.EInit-ref.EInit) > tol || math.Abs(sp.EFinal-ref.EFinal) > tol {
		return fmt.Errorf("energy axis mismatch: range %g..%g (expected %g..%g)",
			sp.EInit, sp.EFinal, ref.EInit, ref.EFinal)
	}
	return nil
}
