package reports

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary        = "Summary"
	SheetReconciliation = "Reconciliation"
	SheetDiscrepancies  = "Discrepancies"

	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	reconciliationHeadings = []interface{}{"#", "Invoice Number", "PO Number", "Vendor Name", "Invoice Amount", "Match Score", "Status"}
	discrepancyHeadings    = []interface{}{"#", "Invoice Number", "PO Number", "Field", "PO Value", "Invoice Value"}
)

// ExportExcel lays a run out over three sheets: a summary, one row per reconciled
// invoice, and one row per mismatched field.
func ExportExcel(run *Run) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetReconciliation); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetDiscrepancies); err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Run ID", run.ID},
		{"Source", run.Source},
		{"Completed At", run.CompletedAt.Format(time.RFC3339)},
		{"Reconciled", run.Summary.Total},
		{"Matched", run.Summary.Matched},
		{"Needs Review", run.Summary.NeedsReview},
		{"Unmatched Invoices", run.Summary.Unmatched},
		{"Average Score", run.Summary.AverageScore},
	}
	for i, row := range summary {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, SheetReconciliation, 1, reconciliationHeadings); err != nil {
		return nil, err
	}
	if err := setRow(f, SheetDiscrepancies, 1, discrepancyHeadings); err != nil {
		return nil, err
	}

	discrepancyRow := 2
	for i, r := range run.Results {
		amount, _ := r.InvoiceAmount.Float64()
		row := []interface{}{r.Index, r.InvoiceNumber, r.PONumber, r.VendorName, amount, r.Score, string(r.Disposition)}
		if err := setRow(f, SheetReconciliation, i+2, row); err != nil {
			return nil, err
		}
		for _, m := range r.Mismatches() {
			row := []interface{}{r.Index, r.InvoiceNumber, r.PONumber, m.Field, m.PurchaseOrderValue, m.InvoiceValue}
			if err := setRow(f, SheetDiscrepancies, discrepancyRow, row); err != nil {
				return nil, err
			}
			discrepancyRow++
		}
	}
	return f, nil
}

// WriteExcel streams the workbook of run to w.
func WriteExcel(run *Run, w io.Writer) error {
	f, err := ExportExcel(run)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// ExcelBytes renders the workbook in memory, for uploads.
func ExcelBytes(run *Run) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteExcel(run, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExcelFileName(run *Run) string {
	return fmt.Sprintf("reconciliation_%s.xlsx", run.ID)
}

func setRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
