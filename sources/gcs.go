package sources

import (
	"bytes"
	"context"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/mmdatafocus/invoice_reconcile/utils"
)

// LoadGCSObject reads a CSV, XLSX or JSON object. uri is "gs://bucket/object" or an
// object key inside GCS_BUCKET.
func LoadGCSObject(ctx context.Context, uri string) ([]reconcile.Record, error) {
	bucket, object := utils.SplitGCSURI(uri)
	data, err := utils.ReadObjectFromGCS(ctx, bucket, object)
	if err != nil {
		return nil, err
	}
	return ParseFile(object, bytes.NewReader(data))
}

// LoadGCS fetches both collections of a batch from cloud storage.
func LoadGCS(ctx context.Context, invoicesURI, purchaseOrdersURI string) (*Batch, error) {
	invoices, err := LoadGCSObject(ctx, invoicesURI)
	if err != nil {
		return nil, err
	}
	purchaseOrders, err := LoadGCSObject(ctx, purchaseOrdersURI)
	if err != nil {
		return nil, err
	}
	return &Batch{Invoices: invoices, PurchaseOrders: purchaseOrders}, nil
}
