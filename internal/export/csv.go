package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/datalk/internal"
)

// WriteCSV writes a result set as CSV, header first, columns in the order
// of the first row.
func WriteCSV(ds internal.Dataset, w io.Writer) error {
	columns := internal.Columns(ds.Data)
	if len(columns) == 0 {
		return &internal.ExportError{Format: "csv", Err: fmt.Errorf("no rows to export")}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return &internal.ExportError{Format: "csv", Err: err}
	}

	record := make([]string, len(columns))
	for _, row := range ds.Data {
		for i, col := range columns {
			v, ok := row.Get(col)
			if !ok || v == nil {
				record[i] = ""
				continue
			}
			record[i] = internal.Stringify(v)
		}
		if err := cw.Write(record); err != nil {
			return &internal.ExportError{Format: "csv", Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &internal.ExportError{Format: "csv", Err: err}
	}
	return nil
}

// WriteBackup writes the settings backup as indented JSON
func WriteBackup(backup *internal.Backup, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return &internal.ExportError{Format: "json", Err: err}
	}
	return nil
}
