package xasscan

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func identCell() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// dataFields returns the whitespace-separated numeric fields of the lines
// that are neither comments nor header/trailer text.
func dataFields(t *testing.T, out string) []float64 {
	t.Helper()
	var vals []float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			continue
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				t.Fatalf("bad value %q in line %q", f, line)
			}
			vals = append(vals, v)
		}
	}
	return vals
}

func lineResult() *Result {
	// 3 points, 2 energies; Data[p][e] = 10*p + e
	res := &Result{
		EInit:  0,
		EFinal: 1,
		NE:     2,
		Empty:  make([]bool, 3),
	}
	for p := 0; p < 3; p++ {
		res.Points = append(res.Points, SamplePoint{Index: p + 1})
		res.Data = append(res.Data, []float64{float64(10 * p), float64(10*p + 1)})
	}
	return res
}

func TestWriteLineOrdering(t *testing.T) {
	x := &XAS{Elem: "Fe"}
	s := &Structure{Cell: identCell()}
	res := lineResult()

	var buf bytes.Buffer
	if err := x.writeLine(&buf, res, s); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "# points 3") {
		t.Error("point count missing from the header")
	}
	if !strings.Contains(out, "# energies 2") {
		t.Error("energy count missing from the header")
	}

	// energy-major, point-minor: all points of energy 0 first
	want := []float64{0, 10, 20, 1, 11, 21}
	vals := dataFields(t, out)
	if len(vals) != len(want) {
		t.Fatalf("%d values, expected %d", len(vals), len(want))
	}
	for i, w := range want {
		if !near(vals[i], w, 1e-7) {
			t.Errorf("value %d = %g, expected %g", i, vals[i], w)
		}
	}
}

func TestWriteMeshHeader(t *testing.T) {
	x := &XAS{Elem: "Fe", Mesh: []int{3, 1, 1}}
	res := lineResult()
	res.Empty[2] = true
	res.Data[2] = []float64{0, 0}

	var buf bytes.Buffer
	if err := x.writeMesh(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// grid dimensions: energy-axis length x space-point count
	if !strings.Contains(out, "object 1 class gridpositions counts 2 3") {
		t.Error("grid header does not declare 2 energies x 3 points")
	}
	if !strings.Contains(out, "items 6 data follows") {
		t.Error("data block does not declare 6 items")
	}
	if !strings.Contains(out, "component \"data\" value 3") {
		t.Error("field trailer missing")
	}
	if !strings.Contains(out, "# point 3: no contributing atom") {
		t.Error("empty point not flagged")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "end") {
		t.Error("output does not finish with the end marker")
	}

	// energy-major within point: both energies of a point together
	want := []float64{0, 1, 10, 11, 0, 0}
	// skip header numbers by reusing dataFields on the block between
	// "data follows" and "attribute"
	block := out[strings.Index(out, "data follows")+len("data follows") : strings.Index(out, "attribute")]
	vals := dataFields(t, block)
	if len(vals) != len(want) {
		t.Fatalf("%d values, expected %d", len(vals), len(want))
	}
	for i, w := range want {
		if !near(vals[i], w, 1e-7) {
			t.Errorf("value %d = %g, expected %g", i, vals[i], w)
		}
	}
}
