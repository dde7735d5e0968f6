package models

import (
	"context"
	"testing"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/shopspring/decimal"
)

func TestRecordConversion_SpreadsheetRowsSurviveStorage(t *testing.T) {
	invoice := invoiceRecordFrom("2024-01", reconcile.Record{
		"Invoice Number":   "INV-001",
		"PO Number":        "PO-156",
		"Vendor Name":      "Sea Shell",
		"Invoice Date":     "2024-01-15",
		"Total Amount":     "15750.00",
		"Currency":         "AED",
		"Payment Terms":    "Net 30",
		"Shipping Address": "Dubai Marina",
		"Tax Amount":       "1575",
	})
	if invoice.Batch != "2024-01" || invoice.InvoiceNumber != "INV-001" || invoice.PONumber != "PO-156" {
		t.Fatalf("unexpected invoice row %+v", invoice)
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(15750)) {
		t.Fatalf("unexpected total %s", invoice.TotalAmount)
	}

	po := purchaseOrderRecordFrom(reconcile.Record{
		"poNumber":        "PO-156",
		"vendorName":      "Sea Shell",
		"date":            "2024-01-15",
		"totalAmount":     15750.0,
		"currency":        "AED",
		"paymentTerms":    "Net 30",
		"shippingAddress": "Dubai Marina",
		"taxAmount":       1575.0,
	})

	results := reconcile.Run([]reconcile.Record{invoice.ToRecord()}, []reconcile.Record{po.ToRecord()})
	if len(results) != 1 || results[0].Score != 100 {
		t.Fatalf("expected a full match after storage, got %+v", results)
	}
}

func TestImport_WithoutDatabase(t *testing.T) {
	config.SetDB(nil)
	ctx := context.Background()
	if _, err := ImportInvoices(ctx, "b", []reconcile.Record{{"invoiceNumber": "INV-1"}}); err == nil {
		t.Fatalf("expected error without database")
	}
	if _, err := ImportPurchaseOrders(ctx, []reconcile.Record{{"poNumber": "PO-1"}}); err == nil {
		t.Fatalf("expected error without database")
	}
	if _, err := ListInvoices(ctx, ""); err == nil {
		t.Fatalf("expected error without database")
	}
	MigrateTable()
}
