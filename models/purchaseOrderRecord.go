package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// PurchaseOrderRecord is the authoritative order an invoice is reconciled against.
type PurchaseOrderRecord struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PONumber        string          `gorm:"column:po_number;size:100;uniqueIndex;not null" json:"po_number"`
	VendorName      string          `gorm:"size:255" json:"vendor_name"`
	Date            string          `gorm:"size:32" json:"date"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Currency        string          `gorm:"size:8" json:"currency"`
	PaymentTerms    string          `gorm:"size:100" json:"payment_terms"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r PurchaseOrderRecord) ToRecord() reconcile.Record {
	return reconcile.Record{
		"poNumber":        r.PONumber,
		"vendorName":      r.VendorName,
		"date":            r.Date,
		"totalAmount":     r.TotalAmount,
		"currency":        r.Currency,
		"paymentTerms":    r.PaymentTerms,
		"shippingAddress": r.ShippingAddress,
		"taxAmount":       r.TaxAmount,
	}
}

func purchaseOrderRecordFrom(rec reconcile.Record) PurchaseOrderRecord {
	return PurchaseOrderRecord{
		PONumber:        reconcile.PONumber(rec),
		VendorName:      reconcile.ResolveString(rec, "vendorName", "Vendor Name"),
		Date:            reconcile.ResolveString(rec, "date", "Date"),
		TotalAmount:     reconcile.Amount(reconcile.Resolve(rec, "totalAmount", "Total Amount")),
		Currency:        reconcile.ResolveString(rec, "currency", "Currency"),
		PaymentTerms:    reconcile.ResolveString(rec, "paymentTerms", "Payment Terms"),
		ShippingAddress: reconcile.ResolveString(rec, "shippingAddress", "Shipping Address"),
		TaxAmount:       reconcile.Amount(reconcile.Resolve(rec, "taxAmount", "Tax Amount")),
	}
}

// ImportPurchaseOrders upserts records by PO number.
func ImportPurchaseOrders(ctx context.Context, records []reconcile.Record) (int, error) {
	db := config.GetDB()
	if db == nil {
		return 0, errors.New("database not initialized")
	}
	rows := make([]PurchaseOrderRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, purchaseOrderRecordFrom(rec))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "po_number"}},
			UpdateAll: true,
		}).CreateInBatches(&rows, importBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

