package util

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTable reads a whitespace-separated numeric table. Blank lines and lines
// starting with # are skipped. Every remaining line must hold the same number
// of columns as the first one.
func ReadTable(r io.Reader) ([][]float64, error) {
	var (
		rows [][]float64
		cols int
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if rows == nil {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("line %d: %d columns (expected %d)",
				line, len(fields), cols)
		}

		row := make([]float64, cols)
		for k, v := range fields {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %d: %w", line, k+1, err)
			}
			row[k] = f
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}
