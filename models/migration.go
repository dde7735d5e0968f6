package models

import (
	"log"

	"github.com/mmdatafocus/invoice_reconcile/config"
)

func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		log.Printf("database not initialized; skipping migrations")
		return
	}

	err := db.AutoMigrate(
		&InvoiceRecord{}, &PurchaseOrderRecord{}, &ReconcileJob{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
