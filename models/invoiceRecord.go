package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceRecord is a vendor invoice staged for reconciliation by the database source.
type InvoiceRecord struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Batch           string          `gorm:"size:64;index" json:"batch"`
	InvoiceNumber   string          `gorm:"size:100;index;not null" json:"invoice_number"`
	PONumber        string          `gorm:"column:po_number;size:100;index" json:"po_number"`
	VendorName      string          `gorm:"size:255" json:"vendor_name"`
	InvoiceDate     string          `gorm:"size:32" json:"invoice_date"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Currency        string          `gorm:"size:8" json:"currency"`
	PaymentTerms    string          `gorm:"size:100" json:"payment_terms"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ToRecord renders the row with the canonical camelCase keys.
func (r InvoiceRecord) ToRecord() reconcile.Record {
	return reconcile.Record{
		"invoiceNumber":   r.InvoiceNumber,
		"poNumber":        r.PONumber,
		"vendorName":      r.VendorName,
		"invoiceDate":     r.InvoiceDate,
		"totalAmount":     r.TotalAmount,
		"currency":        r.Currency,
		"paymentTerms":    r.PaymentTerms,
		"shippingAddress": r.ShippingAddress,
		"taxAmount":       r.TaxAmount,
	}
}

func invoiceRecordFrom(batch string, rec reconcile.Record) InvoiceRecord {
	return InvoiceRecord{
		Batch:           batch,
		InvoiceNumber:   reconcile.InvoiceNumber(rec),
		PONumber:        reconcile.PONumber(rec),
		VendorName:      reconcile.ResolveString(rec, "vendorName", "Vendor Name"),
		InvoiceDate:     reconcile.ResolveString(rec, "invoiceDate", "Invoice Date"),
		TotalAmount:     reconcile.Amount(reconcile.Resolve(rec, "totalAmount", "Total Amount")),
		Currency:        reconcile.ResolveString(rec, "currency", "Currency"),
		PaymentTerms:    reconcile.ResolveString(rec, "paymentTerms", "Payment Terms"),
		ShippingAddress: reconcile.ResolveString(rec, "shippingAddress", "Shipping Address"),
		TaxAmount:       reconcile.Amount(reconcile.Resolve(rec, "taxAmount", "Tax Amount")),
	}
}

// ImportInvoices stores records under batch in chunks. Returns the number of rows written.
func ImportInvoices(ctx context.Context, batch string, records []reconcile.Record) (int, error) {
	db := config.GetDB()
	if db == nil {
		return 0, errors.New("database not initialized")
	}
	rows := make([]InvoiceRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, invoiceRecordFrom(batch, rec))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, importBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListInvoices returns the invoices of batch in insertion order; an empty batch lists all.
func ListInvoices(ctx context.Context, batch string) ([]InvoiceRecord, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	var rows []InvoiceRecord
	q := db.WithContext(ctx).Order("id")
	if batch != "" {
		q = q.Where("batch = ?", batch)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
