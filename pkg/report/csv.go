// Package report writes the summary CSV tables the analysis tools
// produce.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is a CSV table under construction.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable starts a table with the given column header.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// AddRow appends one row of already formatted cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Write saves the table to path.
func (t *Table) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// F2 formats a float with two decimals, the precision used across the
// summary tables.
func F2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// F4 formats a float with four decimals, used by the comparative
// tables where delay spreads can be sub-millisecond.
func F4(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
