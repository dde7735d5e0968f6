package middlewares

import (
	"context"
	"errors"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/invoice_reconcile/models"
	"gorm.io/gorm"
)

type purchaseOrderReader struct {
	db *gorm.DB
}

// getPurchaseOrders answers each PO number with its record, or nil when absent.
func (r *purchaseOrderReader) getPurchaseOrders(ctx context.Context, poNumbers []string) []*dataloader.Result[*models.PurchaseOrderRecord] {
	if r.db == nil {
		return handleError[*models.PurchaseOrderRecord](len(poNumbers), errors.New("database not initialized"))
	}
	var results []models.PurchaseOrderRecord
	err := r.db.WithContext(ctx).Where("po_number IN ?", poNumbers).Find(&results).Error
	if err != nil {
		return handleError[*models.PurchaseOrderRecord](len(poNumbers), err)
	}

	resultMap := make(map[string]*models.PurchaseOrderRecord, len(results))
	for i := range results {
		resultMap[results[i].PONumber] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*models.PurchaseOrderRecord], 0, len(poNumbers))
	for _, n := range poNumbers {
		loaderResults = append(loaderResults, &dataloader.Result[*models.PurchaseOrderRecord]{Data: resultMap[n]})
	}
	return loaderResults
}

func GetPurchaseOrdersByNumber(ctx context.Context, poNumbers []string) ([]*models.PurchaseOrderRecord, []error) {
	loaders := For(ctx)
	return loaders.purchaseOrderLoader.LoadMany(ctx, poNumbers)()
}
