// seed-records loads a CSV, XLSX or JSON file into the tables behind the database
// source.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-records -kind invoices -file inv.csv -batch 2024-01
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/models"
	"github.com/mmdatafocus/invoice_reconcile/sources"
)

func main() {
	kind := flag.String("kind", "", "Required: invoices or purchase-orders")
	path := flag.String("file", "", "Required: file to import (.csv, .xlsx, .json)")
	batch := flag.String("batch", "", "Optional: batch label for invoices")
	flag.Parse()

	if strings.TrimSpace(*path) == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		os.Exit(1)
	}
	if *kind != "invoices" && *kind != "purchase-orders" {
		fmt.Fprintln(os.Stderr, "--kind must be invoices or purchase-orders")
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", *path, err)
		os.Exit(1)
	}
	records, err := sources.ParseFile(*path, f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse %s: %v\n", *path, err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx := context.Background()
	var n int
	if *kind == "invoices" {
		n, err = models.ImportInvoices(ctx, *batch, records)
	} else {
		n, err = models.ImportPurchaseOrders(ctx, records)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d %s from %s\n", n, *kind, *path)
}
