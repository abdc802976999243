// Package xasscan maps X-ray absorption spectra onto points in space. For
// every sample point of a line or mesh scan, the spectra of the surrounding
// absorbing atoms are averaged with gaussian distance weights, producing the
// local spectrum that a probe at that point would see.
package xasscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Type is the name of the calculation.
var Type = "xas_scan"

// XAS is a structure containing the parameters that can be parsed from a TOML
// configuration file. This structure can be instanced through the New method.
// Either Start/End/NumPoints (line scan) or Mesh (mesh scan) must be set, but
// not both.
type XAS struct {
	FileStruct string `toml:"xas_scan.file_struct"`
	FileOut    string `toml:"xas_scan.file_out"`

	SpectraDir string `toml:"xas_scan.spectra_dir"`
	PDOSFile   string `toml:"xas_scan.pdos_file"`

	Elem string `toml:"xas_scan.elem"`
	Edge string `toml:"xas_scan.edge"`

	Cutoff float64 `toml:"xas_scan.cutoff"`
	FWHM   float64 `toml:"xas_scan.fwhm"`

	From      []float64 `toml:"xas_scan.start"`
	To        []float64 `toml:"xas_scan.end"`
	NumPoints int       `toml:"xas_scan.num_points"`

	Mesh []int `toml:"xas_scan.mesh"`

	Extend bool `toml:"xas_scan.extend"`
}

// New returns an instance of the XAS structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*XAS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var xas XAS
	dec := toml.NewDecoder(f)
	err = dec.Decode(&xas)
	if err != nil {
		return nil, err
	}

	err = xas.Check()
	if err != nil {
		return nil, err
	}

	return &xas, nil
}

// Check fills in the default parameters and validates the configuration. It
// is called by New and must be called before Start when an XAS structure is
// built by hand. No file is touched here: a bad configuration is rejected
// before any I/O.
func (x *XAS) Check() error {
	if x.Cutoff == 0 {
		x.Cutoff = 4.0
	}
	if x.FWHM == 0 {
		x.FWHM = 3.0
	}
	if x.FileOut == "" {
		x.FileOut = "output.dat"
	}

	if x.Elem == "" {
		return errors.New("no target element given")
	}
	if x.PDOSFile == "" {
		if x.Edge == "" {
			return errors.New("no absorption edge given")
		}
		if x.SpectraDir == "" {
			return errors.New("no spectra directory given")
		}
	}
	if x.FileStruct == "" {
		return errors.New("no structure file given")
	}
	if x.Cutoff <= 0 {
		return errors.New("cutoff radius must be positive")
	}
	if x.FWHM <= 0 {
		return errors.New("gaussian FWHM must be positive")
	}

	mesh := len(x.Mesh) > 0
	line := len(x.From) > 0 || len(x.To) > 0 || x.NumPoints != 0

	switch {
	case mesh && line:
		return errors.New("mesh and line scans are mutually exclusive")
	case mesh:
		if len(x.Mesh) != 3 {
			return errors.New("mesh needs three counts")
		}
		for _, n := range x.Mesh {
			if n < 1 {
				return errors.New("mesh counts must be at least 1")
			}
		}
	case line:
		if len(x.From) != 3 || len(x.To) != 3 {
			return errors.New("start and end points need three coordinates")
		}
		if x.NumPoints < 2 {
			return errors.New("a line scan needs at least 2 points")
		}
	default:
		return errors.New("neither a line scan nor a mesh scan is configured")
	}

	return nil
}

// Start performs the calculation. It is a thread blocking method. The
// accumulation over the sample points uses all the threads available.
func (x *XAS) Start() error {
	s, err := ReadStructure(x.FileStruct)
	if err != nil {
		return fmt.Errorf("ReadStructure: %w", err)
	}

	atoms := s.Atoms
	if x.Extend {
		atoms = s.Extended()
	}

	var points []SamplePoint
	if len(x.Mesh) == 3 {
		points, err = MeshPoints(x.Mesh[0], x.Mesh[1], x.Mesh[2], s.Cell)
	} else {
		points, err = LinePoints(vec3(x.From), vec3(x.To), x.NumPoints)
	}
	if err != nil {
		return fmt.Errorf("sample points: %w", err)
	}

	dist, err := BuildDistances(points, atoms)
	if err != nil {
		return fmt.Errorf("BuildDistances: %w", err)
	}

	var src Source
	if x.PDOSFile != "" {
		src, err = NewColumnSource(x.PDOSFile)
		if err != nil {
			return fmt.Errorf("NewColumnSource: %w", err)
		}
	} else {
		src = FileSource{Dir: x.SpectraDir, Elem: x.Elem, Edge: x.Edge}
	}

	spectra, err := LoadSpectra(atoms, x.Elem, src)
	if err != nil {
		return fmt.Errorf("LoadSpectra: %w", err)
	}

	res, err := Accumulate(points, atoms, dist, spectra, x.Cutoff, x.FWHM)
	if err != nil {
		return fmt.Errorf("Accumulate: %w", err)
	}

	out, err := os.Create(x.FileOut)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	defer out.Close()

	if len(x.Mesh) == 3 {
		err = x.writeMesh(out, res)
	} else {
		err = x.writeLine(out, res, s)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", x.FileOut, err)
	}

	return nil
}

func vec3(s []float64) [3]float64 {
	var v [3]float64
	copy(v[:], s)
	return v
}
