// Package spectrim trims columnar spectral data for plotting: it keeps the
// rows inside an energy window, thins them by a stride, and selects the
// wanted intensity columns.
package spectrim

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cpoulain/xastools/pkg/util"

	"github.com/pelletier/go-toml"
)

// Type is the name of the calculation.
var Type = "spec_trim"

// Trim is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the New
// method. EMin must be lower than EMax. Cols holds the 1-based indices of
// the intensity columns to keep; when empty, every column is kept. Every
// must be at least 1 (keep every row).
type Trim struct {
	FileIn  string `toml:"spec_trim.file_in"`
	FileOut string `toml:"spec_trim.file_out"`

	EMin float64 `toml:"spec_trim.e_min"`
	EMax float64 `toml:"spec_trim.e_max"`

	Every int   `toml:"spec_trim.every"`
	Cols  []int `toml:"spec_trim.cols"`
}

// New returns an instance of the Trim structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*Trim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var trim Trim
	dec := toml.NewDecoder(f)
	err = dec.Decode(&trim)
	if err != nil {
		return nil, err
	}

	if trim.Every == 0 {
		trim.Every = 1
	}

	if trim.EMin >= trim.EMax {
		return nil, errors.New("EMin is greater or equal than EMax")
	}
	if trim.Every < 1 {
		return nil, errors.New("Every must be at least 1")
	}
	for _, c := range trim.Cols {
		if c < 1 {
			return nil, errors.New("column indices are 1-based")
		}
	}

	return &trim, nil
}

// Start performs the calculation. It is a thread blocking method. It is a
// very fast calculation that only uses one thread.
func (t *Trim) Start() error {
	f, err := util.Open(t.FileIn)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := util.ReadTable(f)
	if err != nil {
		return fmt.Errorf("ReadTable: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("no data rows in input")
	}

	out, err := util.Write(t.FileOut, t)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	kept, err := t.trim(out, rows)
	if err != nil {
		return err
	}
	if kept == 0 {
		return fmt.Errorf("no row inside the window %g..%g", t.EMin, t.EMax)
	}

	return nil
}

// trim writes the selected rows and returns how many were kept. The first
// column of every row is the energy and is always written.
func (t *Trim) trim(w io.Writer, rows [][]float64) (kept int, err error) {
	for _, c := range t.Cols {
		if c >= len(rows[0]) {
			return 0, fmt.Errorf("column %d out of range (%d intensity columns)",
				c, len(rows[0])-1)
		}
	}

	in := 0
	for _, row := range rows {
		e := row[0]
		if e < t.EMin || e > t.EMax {
			continue
		}

		if in%t.Every == 0 {
			fmt.Fprintf(w, "%g", e)
			if len(t.Cols) == 0 {
				for _, v := range row[1:] {
					fmt.Fprintf(w, " %g", v)
				}
			} else {
				for _, c := range t.Cols {
					fmt.Fprintf(w, " %g", row[c])
				}
			}
			fmt.Fprint(w, "\n")
			kept++
		}
		in++
	}

	return kept, nil
}
