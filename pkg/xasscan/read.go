package xasscan

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/cpoulain/xastools/pkg/util"

	"gonum.org/v1/gonum/mat"
)

// Atom is one atom of the structure. Extended atoms (periodic images) carry
// in Central the identifier of the atom of the central cell they were copied
// from; for a central atom Central equals ID.
type Atom struct {
	ID      int
	Name    string
	Species int
	XYZ     [3]float64
	Central int
}

// Structure is the unit cell: three lattice vectors (the rows of Cell) and
// the atom list.
type Structure struct {
	Cell  *mat.Dense
	Atoms []Atom
}

// ReadStructure reads a structure file. The first three data lines are the
// lattice vectors; every following line describes one atom as
// `id name species x y z [central]`. When the central column is omitted the
// atom is its own central atom.
func ReadStructure(path string) (*Structure, error) {
	f, err := util.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		s    Structure
		cell [9]float64
		rows int
	)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if rows < 3 {
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: lattice vector needs 3 components", line)
			}
			for k := 0; k < 3; k++ {
				cell[3*rows+k], err = strconv.ParseFloat(fields[k], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
			rows++
			continue
		}

		a, err := parseAtom(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Atoms = append(s.Atoms, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if rows < 3 {
		return nil, fmt.Errorf("only %d lattice vectors (expected 3)", rows)
	}
	if len(s.Atoms) == 0 {
		return nil, fmt.Errorf("no atoms in structure")
	}

	s.Cell = mat.NewDense(3, 3, cell[:])
	return &s, nil
}

func parseAtom(fields []string) (Atom, error) {
	var a Atom
	if len(fields) != 6 && len(fields) != 7 {
		return a, fmt.Errorf("atom needs 6 or 7 columns (got %d)", len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return a, err
	}
	species, err := strconv.Atoi(fields[2])
	if err != nil {
		return a, err
	}

	a = Atom{ID: id, Name: fields[1], Species: species, Central: id}
	for k := 0; k < 3; k++ {
		a.XYZ[k], err = strconv.ParseFloat(fields[3+k], 64)
		if err != nil {
			return a, err
		}
	}

	if len(fields) == 7 {
		a.Central, err = strconv.Atoi(fields[6])
		if err != nil {
			return a, err
		}
	}

	return a, nil
}

// Extended replicates every central atom over the ±1 shell of lattice
// translations so that contributions across the cell boundary are captured.
// The original atoms keep their identifiers and come first; images get fresh
// identifiers and point back to their central atom.
func (s *Structure) Extended() []Atom {
	ext := make([]Atom, 0, 27*len(s.Atoms))
	ext = append(ext, s.Atoms...)

	next := 0
	for _, a := range s.Atoms {
		if a.ID > next {
			next = a.ID
		}
	}

	for _, a := range s.Atoms {
		if a.ID != a.Central {
			// already an image, don't replicate it again
			continue
		}
		for ta := -1; ta <= 1; ta++ {
			for tb := -1; tb <= 1; tb++ {
				for tc := -1; tc <= 1; tc++ {
					if ta == 0 && tb == 0 && tc == 0 {
						continue
					}
					img := a
					next++
					img.ID = next
					img.Central = a.ID
					for k := 0; k < 3; k++ {
						img.XYZ[k] += float64(ta)*s.Cell.At(0, k) +
							float64(tb)*s.Cell.At(1, k) +
							float64(tc)*s.Cell.At(2, k)
					}
					ext = append(ext, img)
				}
			}
		}
	}

	return ext
}
