// Package structconv converts structure files between the cell format
// (lattice vectors plus an atom table) and the XYZ format. Cartesian
// coordinates can be written as fractional coordinates of the cell.
package structconv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cpoulain/xastools/pkg/util"
	"github.com/cpoulain/xastools/pkg/xasscan"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/mat"
)

// Type is the name of the calculation.
var Type = "struct_conv"

// Conv is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the New
// method. FormatIn and FormatOut must be "cell" or "xyz". Frac only applies
// when writing the cell format: the coordinates are then fractional
// coordinates of the lattice instead of cartesian ones.
type Conv struct {
	FileIn  string `toml:"struct_conv.file_in"`
	FileOut string `toml:"struct_conv.file_out"`

	FormatIn  string `toml:"struct_conv.format_in"`
	FormatOut string `toml:"struct_conv.format_out"`

	Frac bool `toml:"struct_conv.frac"`
}

// New returns an instance of the Conv structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*Conv, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var conv Conv
	dec := toml.NewDecoder(f)
	err = dec.Decode(&conv)
	if err != nil {
		return nil, err
	}

	for _, format := range []string{conv.FormatIn, conv.FormatOut} {
		if format != "cell" && format != "xyz" {
			return nil, fmt.Errorf("unknown format `%s` (cell or xyz)", format)
		}
	}
	if conv.Frac && conv.FormatOut != "cell" {
		return nil, errors.New("fractional coordinates need the cell output format")
	}
	if conv.Frac && conv.FormatIn != "cell" {
		return nil, errors.New("fractional coordinates need the lattice of a cell input")
	}

	return &conv, nil
}

// Start performs the calculation. It is a thread blocking method. It is a
// very fast calculation that only uses one thread.
func (c *Conv) Start() error {
	var (
		s   *xasscan.Structure
		err error
	)

	switch c.FormatIn {
	case "cell":
		s, err = xasscan.ReadStructure(c.FileIn)
	case "xyz":
		s, err = readXYZ(c.FileIn)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", c.FileIn, err)
	}

	f, err := os.Create(c.FileOut)
	if err != nil {
		return err
	}
	defer f.Close()

	switch c.FormatOut {
	case "cell":
		err = c.writeCell(f, s)
	case "xyz":
		err = writeXYZ(f, s)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", c.FileOut, err)
	}

	return nil
}

// readXYZ reads a standard XYZ file. The format carries no lattice, so the
// structure comes back without one; identifiers and species are assigned in
// file order.
func readXYZ(path string) (*xasscan.Structure, error) {
	f, err := util.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	b, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return nil, fmt.Errorf("atom count: %w", err)
	}

	// comment line
	if _, err := r.ReadString('\n'); err != nil {
		return nil, err
	}

	s := &xasscan.Structure{}
	species := make(map[string]int)
	for i := 0; i < n; i++ {
		b, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		fields := strings.Fields(b)
		if len(fields) != 4 {
			return nil, fmt.Errorf("atom %d: 4 columns expected (got %d)", i+1, len(fields))
		}

		if _, ok := species[fields[0]]; !ok {
			species[fields[0]] = len(species) + 1
		}
		a := xasscan.Atom{
			ID:      i + 1,
			Name:    fields[0],
			Species: species[fields[0]],
			Central: i + 1,
		}
		for k := 0; k < 3; k++ {
			a.XYZ[k], err = strconv.ParseFloat(fields[1+k], 64)
			if err != nil {
				return nil, fmt.Errorf("atom %d: %w", i+1, err)
			}
		}
		s.Atoms = append(s.Atoms, a)
	}

	return s, nil
}

func writeXYZ(w io.Writer, s *xasscan.Structure) error {
	fmt.Fprintf(w, "%d\n\n", len(s.Atoms))
	for _, a := range s.Atoms {
		fmt.Fprintf(w, "%s %14.8f %14.8f %14.8f\n", a.Name, a.XYZ[0], a.XYZ[1], a.XYZ[2])
	}
	return nil
}

func (c *Conv) writeCell(w io.Writer, s *xasscan.Structure) error {
	if s.Cell == nil {
		return errors.New("input carries no lattice vectors")
	}

	for k := 0; k < 3; k++ {
		fmt.Fprintf(w, "%14.8f %14.8f %14.8f\n",
			s.Cell.At(k, 0), s.Cell.At(k, 1), s.Cell.At(k, 2))
	}

	var (
		cart = mat.NewVecDense(3, nil)
		frac mat.VecDense
	)
	for _, a := range s.Atoms {
		xyz := a.XYZ
		if c.Frac {
			cart.SetVec(0, xyz[0])
			cart.SetVec(1, xyz[1])
			cart.SetVec(2, xyz[2])
			// rows of Cell are the lattice vectors: solve cellᵀ·f = r
			if err := frac.SolveVec(s.Cell.T(), cart); err != nil {
				return fmt.Errorf("atom %d: singular lattice: %w", a.ID, err)
			}
			xyz = [3]float64{frac.AtVec(0), frac.AtVec(1), frac.AtVec(2)}
		}
		fmt.Fprintf(w, "%d %s %d %14.8f %14.8f %14.8f %d\n",
			a.ID, a.Name, a.Species, xyz[0], xyz[1], xyz[2], a.Central)
	}

	return nil
}
