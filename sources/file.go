// Package sources turns ingested invoice and purchase order data into reconcile
// records. Adapters only convert cell and field types; values are never trimmed or
// re-cased so that the matcher sees exactly what the source holds.
package sources

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

const (
	FormatCSV  = ".csv"
	FormatXLSX = ".xlsx"
	FormatJSON = ".json"
)

// Batch is one ingestion result: the two collections a reconciliation run needs.
type Batch struct {
	Invoices       []reconcile.Record
	PurchaseOrders []reconcile.Record
}

// ParseFile dispatches on the file extension of name.
func ParseFile(name string, r io.Reader) ([]reconcile.Record, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r, "")
	case FormatJSON:
		return ParseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// rowsToRecords keys every data row by the header row. Fully blank rows are dropped
// and short rows are padded with empty strings.
func rowsToRecords(rows [][]string) []reconcile.Record {
	if len(rows) == 0 {
		return []reconcile.Record{}
	}
	header := rows[0]
	out := make([]reconcile.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := make(reconcile.Record, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
