package sources

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/invoice_reconcile/middlewares"
	"github.com/mmdatafocus/invoice_reconcile/models"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

// LoadDatabase reads the invoices of batch and only the purchase orders they
// reference, batched through the request's purchase order loader.
func LoadDatabase(ctx context.Context, batch string) (*Batch, error) {
	invoices, err := models.ListInvoices(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	seen := make(map[string]bool, len(invoices))
	poNumbers := make([]string, 0, len(invoices))
	out := &Batch{
		Invoices:       make([]reconcile.Record, 0, len(invoices)),
		PurchaseOrders: make([]reconcile.Record, 0, len(invoices)),
	}
	for _, inv := range invoices {
		out.Invoices = append(out.Invoices, inv.ToRecord())
		if !seen[inv.PONumber] {
			seen[inv.PONumber] = true
			poNumbers = append(poNumbers, inv.PONumber)
		}
	}
	if len(poNumbers) == 0 {
		return out, nil
	}

	purchaseOrders, errs := middlewares.GetPurchaseOrdersByNumber(ctx, poNumbers)
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load purchase orders: %w", err)
		}
	}
	for _, po := range purchaseOrders {
		// absent purchase orders stay absent so the run skips their invoices
		if po == nil {
			continue
		}
		out.PurchaseOrders = append(out.PurchaseOrders, po.ToRecord())
	}
	return out, nil
}
