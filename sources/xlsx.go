package sources

import (
	"fmt"
	"io"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads sheet (the first sheet when empty). Cells are read raw so that
// amounts come through as plain numbers instead of their display format.
func ParseXLSX(r io.Reader, sheet string) ([]reconcile.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheet, err)
	}
	return rowsToRecords(rows), nil
}
