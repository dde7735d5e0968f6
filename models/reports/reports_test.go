package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/mmdatafocus/invoice_reconcile/utils"
	"github.com/xuri/excelize/v2"
)

func sampleRun() *Run {
	invoices := []reconcile.Record{
		{"invoiceNumber": "INV-001", "poNumber": "PO-1", "vendorName": "Sea Shell", "invoiceDate": "2024-01-15",
			"totalAmount": 15750.00, "currency": "AED", "paymentTerms": "Net 30", "shippingAddress": "Dubai Marina", "taxAmount": 1575.00},
		{"invoiceNumber": "INV-002", "poNumber": "PO-2", "vendorName": "Blue Reef", "invoiceDate": "2024-02-01",
			"totalAmount": 900.00, "currency": "USD", "paymentTerms": "Net 45", "shippingAddress": "Abu Dhabi", "taxAmount": 90.00},
		{"invoiceNumber": "INV-003", "poNumber": "PO-404"},
	}
	purchaseOrders := []reconcile.Record{
		{"poNumber": "PO-1", "vendorName": "Sea Shell", "date": "2024-01-15",
			"totalAmount": 15750.00, "currency": "AED", "paymentTerms": "Net 30", "shippingAddress": "Dubai Marina", "taxAmount": 1575.00},
		{"poNumber": "PO-2", "vendorName": "Blue Reef", "date": "2024-02-01",
			"totalAmount": 900.00, "currency": "USD", "paymentTerms": "Net 30", "shippingAddress": "Abu Dhabi", "taxAmount": 90.00},
	}
	return NewRun("run-1", "records", invoices, purchaseOrders)
}

func TestNewRun(t *testing.T) {
	run := sampleRun()
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	if len(run.Unmatched) != 1 || run.Unmatched[0] != "INV-003" {
		t.Fatalf("expected INV-003 unmatched, got %v", run.Unmatched)
	}
	if run.Summary.Matched != 1 || run.Summary.NeedsReview != 1 {
		t.Fatalf("unexpected summary %+v", run.Summary)
	}
	if run.CompletedAt.Before(run.StartedAt) {
		t.Fatalf("completed before started")
	}
}

func TestExportExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExcel(sampleRun(), &buf); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetSummary, SheetReconciliation, SheetDiscrepancies}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	rows, err := f.GetRows(SheetReconciliation)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "INV-001" || rows[1][6] != "matched" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "INV-002" || rows[2][5] != "88" || rows[2][6] != "needs_review" {
		t.Fatalf("unexpected second row %v", rows[2])
	}

	rows, err = f.GetRows(SheetDiscrepancies)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 discrepancy, got %d", len(rows))
	}
	got := rows[1]
	if got[1] != "INV-002" || got[3] != reconcile.FieldPaymentTerms || got[4] != "Net 30" || got[5] != "Net 45" {
		t.Fatalf("unexpected discrepancy row %v", got)
	}

	rows, err = f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if rows[0][1] != "run-1" || rows[6][1] != "1" {
		t.Fatalf("unexpected summary rows %v", rows)
	}
}

func TestExcelFileName(t *testing.T) {
	if got := ExcelFileName(&Run{ID: "abc"}); got != "reconciliation_abc.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestRunCache_WithoutRedis(t *testing.T) {
	config.SetRedisDB(nil)
	ctx := context.Background()

	if err := CacheRun(ctx, sampleRun()); err != nil {
		t.Fatalf("expected no-op without redis, got %v", err)
	}
	_, err := GetCachedRun(ctx, "run-1")
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}
