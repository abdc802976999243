package xasscan

import (
	"bufio"
	"fmt"
	"io"
)

// writeMesh writes the result of a mesh scan as a volumetric field: a
// regular-grid header over energy × space points, the flat data block with
// the energies of one point together, and the field trailer. Points without
// any contribution are flagged in a comment so that their zero rows cannot
// be mistaken for real signal.
func (x *XAS) writeMesh(w io.Writer, res *Result) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "# xas mesh scan %d %d %d, elem %s\n",
		x.Mesh[0], x.Mesh[1], x.Mesh[2], x.Elem)
	writeEmpty(b, res)

	np := len(res.Points)
	de := (res.EFinal - res.EInit) / float64(res.NE-1)

	fmt.Fprintf(b, "object 1 class gridpositions counts %d %d\n", res.NE, np)
	fmt.Fprintf(b, "origin %14.8f %14.8f\n", res.EInit, 0.0)
	fmt.Fprintf(b, "delta %14.8f %14.8f\n", de, 0.0)
	fmt.Fprintf(b, "delta %14.8f %14.8f\n", 0.0, 1.0)
	fmt.Fprintf(b, "object 2 class gridconnections counts %d %d\n", res.NE, np)
	fmt.Fprintf(b, "object 3 class array type float rank 0 items %d data follows\n",
		res.NE*np)

	col := 0
	for p := range res.Points {
		for e := 0; e < res.NE; e++ {
			writeVal(b, res.Data[p][e], &col)
		}
	}
	if col != 0 {
		fmt.Fprint(b, "\n")
	}

	fmt.Fprint(b, "attribute \"dep\" string \"positions\"\n")
	fmt.Fprint(b, "object \"regular positions regular connections\" class field\n")
	fmt.Fprint(b, "component \"positions\" value 1\n")
	fmt.Fprint(b, "component \"connections\" value 2\n")
	fmt.Fprint(b, "component \"data\" value 3\n")
	fmt.Fprint(b, "end\n")

	return b.Flush()
}

// writeLine writes the result of a line scan: a small header with the
// lattice vectors and the energy axis, then the data block with all the
// points of one energy together.
func (x *XAS) writeLine(w io.Writer, res *Result, s *Structure) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "# xas line scan, elem %s\n", x.Elem)
	for k := 0; k < 3; k++ {
		fmt.Fprintf(b, "# cell %14.8f %14.8f %14.8f\n",
			s.Cell.At(k, 0), s.Cell.At(k, 1), s.Cell.At(k, 2))
	}
	fmt.Fprintf(b, "# points %d\n", len(res.Points))
	fmt.Fprintf(b, "# energies %d %14.8f %14.8f\n", res.NE, res.EInit, res.EFinal)
	writeEmpty(b, res)

	col := 0
	for e := 0; e < res.NE; e++ {
		for p := range res.Points {
			writeVal(b, res.Data[p][e], &col)
		}
	}
	if col != 0 {
		fmt.Fprint(b, "\n")
	}

	return b.Flush()
}

func writeEmpty(w io.Writer, res *Result) {
	for p, empty := range res.Empty {
		if empty {
			fmt.Fprintf(w, "# point %d: no contributing atom\n", res.Points[p].Index)
		}
	}
}

// writeVal writes one value, five per line.
func writeVal(w io.Writer, v float64, col *int) {
	fmt.Fprintf(w, "%14.8f", v)
	*col++
	if *col == 5 {
		fmt.Fprint(w, "\n")
		*col = 0
	} else {
		fmt.Fprint(w, " ")
	}
}
