package xasscan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Fe_3.K",
		"# energy total x y z\n"+
			"0.0 1.0 0.1 0.2 0.3\n"+
			"0.5 2.0 0.1 0.2 0.3\n"+
			"1.0 3.0 0.1 0.2 0.3\n")

	src := FileSource{Dir: dir, Elem: "Fe", Edge: "K"}
	sp, err := src.Load(3)
	if err != nil {
		t.Fatal(err)
	}

	if sp.N != 3 || sp.EInit != 0 || sp.EFinal != 1 {
		t.Fatalf("axis %d points %g..%g, expected 3 points 0..1", sp.N, sp.EInit, sp.EFinal)
	}
	if !near(sp.EDelta(), 0.5, eps) {
		t.Errorf("EDelta = %g, expected 0.5", sp.EDelta())
	}
	for i, want := range []float64{1, 2, 3} {
		if sp.Total[i] != want {
			t.Errorf("total[%d] = %g, expected %g", i, sp.Total[i], want)
		}
	}
}

func TestFileSourceMissing(t *testing.T) {
	src := FileSource{Dir: t.TempDir(), Elem: "Fe", Edge: "K"}
	if _, err := src.Load(1); err == nil {
		t.Error("missing spectrum file accepted, expected an error")
	}
}

func TestColumnSourceLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pdos.dat",
		"# energy total.1 total.2\n"+
			"0.0 1.0 10.0\n"+
			"1.0 2.0 20.0\n"+
			"2.0 3.0 30.0\n")

	src, err := NewColumnSource(path)
	if err != nil {
		t.Fatal(err)
	}

	sp, err := src.Load(2)
	if err != nil {
		t.Fatal(err)
	}
	if sp.N != 3 || sp.EInit != 0 || sp.EFinal != 2 {
		t.Fatalf("axis %d points %g..%g, expected 3 points 0..2", sp.N, sp.EInit, sp.EFinal)
	}
	if sp.Total[1] != 20 {
		t.Errorf("total[1] = %g, expected 20", sp.Total[1])
	}

	if _, err := src.Load(7); err == nil {
		t.Error("unknown atom column accepted, expected an error")
	}
}

func TestLoadSpectraSharedAxis(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Fe_1.K", "0 1\n1 2\n2 3\n")
	writeFile(t, dir, "Fe_2.K", "0 4\n1 5\n2 6\n")

	atoms := []Atom{
		{ID: 1, Name: "Fe", Central: 1},
		{ID: 2, Name: "Fe", Central: 2},
		{ID: 3, Name: "O", Central: 3},  // other element, no file needed
		{ID: 4, Name: "Fe", Central: 1}, // image of 1, no extra load
	}

	spectra, err := LoadSpectra(atoms, "Fe", FileSource{Dir: dir, Elem: "Fe", Edge: "K"})
	if err != nil {
		t.Fatal(err)
	}
	if len(spectra) != 2 {
		t.Fatalf("loaded %d spectra, expected 2", len(spectra))
	}
	if spectra[2].Total[0] != 4 {
		t.Errorf("atom 2 total[0] = %g, expected 4", spectra[2].Total[0])
	}
}

func TestLoadSpectraAxisMismatch(t *testing.T) {
	cases := []struct{ name, second string }{
		{"point count", "0 4\n1 5\n2 6\n3 7\n"},
		{"energy range", "0 4\n1 5\n2.5 6\n"},
	}
	for _, c := range cases {
		dir := t.TempDir()
		writeFile(t, dir, "Fe_1.K", "0 1\n1 2\n2 3\n")
		writeFile(t, dir, "Fe_2.K", c.second)

		atoms := []Atom{
			{ID: 1, Name: "Fe", Central: 1},
			{ID: 2, Name: "Fe", Central: 2},
		}
		_, err := LoadSpectra(atoms, "Fe", FileSource{Dir: dir, Elem: "Fe", Edge: "K"})
		if err == nil {
			t.Errorf("%s mismatch accepted, expected an error", c.name)
		} else if !strings.Contains(err.Error(), "mismatch") {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
	}
}

func TestLoadSpectraNoAtoms(t *testing.T) {
	atoms := []Atom{{ID: 1, Name: "O", Central: 1}}
	_, err := LoadSpectra(atoms, "Fe", FileSource{Dir: t.TempDir(), Elem: "Fe", Edge: "K"})
	if err == nil {
		t.Error("no target atoms accepted, expected an error")
	}
}
