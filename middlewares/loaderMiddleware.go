package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	purchaseOrderLoader *dataloader.Loader[string, *models.PurchaseOrderRecord]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	purchaseOrderReader := &purchaseOrderReader{db: conn}

	return &Loaders{
		purchaseOrderLoader: dataloader.NewBatchedLoader(
			purchaseOrderReader.getPurchaseOrders,
			dataloader.WithWait[string, *models.PurchaseOrderRecord](time.Millisecond),
		),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GetDB() == nil {
			c.Next()
			return
		}
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// For returns the request's loaders, or fresh ones bound to the global connection
// when called outside a request (CLIs, background jobs).
func For(ctx context.Context) *Loaders {
	if l, ok := ctx.Value(loadersKey).(*Loaders); ok && l != nil {
		return l
	}
	return NewLoaders(config.GetDB())
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
