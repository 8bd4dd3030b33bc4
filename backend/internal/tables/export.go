package tables

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the view's columns as a header row followed by one
// formatted row per record.
func WriteCSV(w io.Writer, view View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(view.Columns); err != nil {
		return err
	}
	line := make([]string, len(view.Columns))
	for _, row := range view.Rows {
		for i, col := range view.Columns {
			line[i] = FormatValue(row[col])
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
