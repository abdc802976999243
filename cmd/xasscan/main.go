// xasscan is the standalone front end of the xas_scan calculation for quick
// runs without a TOML configuration.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/cpoulain/xastools/pkg/xasscan"
)

const help = `Usage: xasscan [flags] structure-file
The structure file holds the lattice vectors and the atom list; the spectra
are read from one file per atom (<elem>_<id>.<edge> in the spectra
directory) or, with -pdos, from the columns of one pre-tabulated table.
A line scan (-s, -e, -n) and a mesh scan (-mesh) are mutually exclusive.
Flags:
`

// vec3Flag parses three comma-separated coordinates, e.g. -s 0,0,1.5.
type vec3Flag struct {
	set bool
	v   []float64
}

func (f *vec3Flag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprint(f.v)
}

func (f *vec3Flag) Set(s string) error {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return fmt.Errorf("3 coordinates expected (got %d)", len(fields))
	}
	f.v = make([]float64, 3)
	for k, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		f.v[k] = v
	}
	f.set = true
	return nil
}

// meshFlag parses three comma-separated counts, e.g. -mesh 10,10,10.
type meshFlag struct {
	set bool
	n   []int
}

func (f *meshFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprint(f.n)
}

func (f *meshFlag) Set(s string) error {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return fmt.Errorf("3 counts expected (got %d)", len(fields))
	}
	f.n = make([]int, 3)
	for k, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return err
		}
		f.n[k] = v
	}
	f.set = true
	return nil
}

var (
	elem   = flag.String("elem", "", "target element (required)")
	edge   = flag.String("edge", "", "absorption edge (required unless -pdos)")
	pdos   = flag.String("pdos", "", "pre-tabulated PDOS table instead of per-atom files")
	dir    = flag.String("d", ".", "directory of the per-atom spectrum files")
	fwhm   = flag.Float64("g", 3.0, "gaussian FWHM of the distance weights")
	cutoff = flag.Float64("l", 4.0, "cutoff radius of the contributing atoms")
	num    = flag.Int("n", 0, "number of points of a line scan")
	out    = flag.String("o", "output.dat", "output file")
	extend = flag.Bool("x", false, "extend the central atoms over the neighbour cells")

	start, end vec3Flag
	mesh       meshFlag
)

func main() {
	flag.Var(&start, "s", "start point of a line scan, x,y,z")
	flag.Var(&end, "e", "end point of a line scan, x,y,z")
	flag.Var(&mesh, "mesh", "mesh counts na,nb,nc spanning the unit cell")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), help)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("xasscan: one structure file must be given")
	}

	x := xasscan.XAS{
		FileStruct: flag.Arg(0),
		FileOut:    *out,
		SpectraDir: *dir,
		PDOSFile:   *pdos,
		Elem:       *elem,
		Edge:       *edge,
		Cutoff:     *cutoff,
		FWHM:       *fwhm,
		NumPoints:  *num,
		Extend:     *extend,
	}
	if start.set {
		x.From = start.v
	}
	if end.set {
		x.To = end.v
	}
	if mesh.set {
		x.Mesh = mesh.n
	}

	if err := x.Check(); err != nil {
		log.Fatal(fmt.Errorf("xasscan: %w", err))
	}
	if err := x.Start(); err != nil {
		log.Fatal(fmt.Errorf("xasscan: %w", err))
	}
}
