package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

// ParseCSV reads a header row followed by data rows.
func ParseCSV(r io.Reader) ([]reconcile.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = trimBOM(rows[0][0])
	}
	return rowsToRecords(rows), nil
}

// Spreadsheet exports often start with a UTF-8 byte order mark.
func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
