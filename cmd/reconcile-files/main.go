// reconcile-files reconciles a local invoice file against a local purchase order file
// (CSV, XLSX or JSON) without any database, Redis or cloud dependency.
//
// Usage:
//   go run ./cmd/reconcile-files -invoices invoices.csv -purchase-orders pos.xlsx -out report.xlsx
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mmdatafocus/invoice_reconcile/models/reports"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/mmdatafocus/invoice_reconcile/sources"
	"github.com/sirupsen/logrus"
)

func main() {
	invoicesPath := flag.String("invoices", "", "Required: invoices file (.csv, .xlsx, .json)")
	purchaseOrdersPath := flag.String("purchase-orders", "", "Required: purchase orders file (.csv, .xlsx, .json)")
	outPath := flag.String("out", "", "Optional: write the XLSX report here")
	asJSON := flag.Bool("json", false, "Print the run as JSON instead of a text summary")
	flag.Parse()

	if strings.TrimSpace(*invoicesPath) == "" || strings.TrimSpace(*purchaseOrdersPath) == "" {
		fmt.Fprintln(os.Stderr, "--invoices and --purchase-orders are required")
		os.Exit(1)
	}
	logger := logrus.New()

	invoices, err := readRecords(*invoicesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read invoices: %v\n", err)
		os.Exit(1)
	}
	purchaseOrders, err := readRecords(*purchaseOrdersPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read purchase orders: %v\n", err)
		os.Exit(1)
	}

	run := reports.NewRun(uuid.NewString(), "files", invoices, purchaseOrders)
	logger.WithFields(logrus.Fields{
		"run_id":       run.ID,
		"invoices":     len(invoices),
		"reconciled":   run.Summary.Total,
		"matched":      run.Summary.Matched,
		"needs_review": run.Summary.NeedsReview,
		"unmatched":    run.Summary.Unmatched,
	}).Info("reconciliation finished")

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		if err := reports.WriteExcel(run, f); err != nil {
			_ = f.Close()
			fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close %s: %v\n", *outPath, err)
			os.Exit(1)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode run: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printSummary(os.Stdout, run)
}

func readRecords(path string) ([]reconcile.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sources.ParseFile(path, f)
}

func printSummary(w io.Writer, run *reports.Run) {
	for _, r := range run.Results {
		fmt.Fprintf(w, "#%d %s -> %s  %d%%  %s\n", r.Index, r.InvoiceNumber, r.PONumber, r.Score, r.Disposition)
		for _, m := range r.Mismatches() {
			fmt.Fprintf(w, "    %s: po=%q invoice=%q\n", m.Field, m.PurchaseOrderValue, m.InvoiceValue)
		}
	}
	for _, id := range run.Unmatched {
		fmt.Fprintf(w, "unmatched %s (purchase order not found)\n", id)
	}
	fmt.Fprintf(w, "reconciled=%d matched=%d needs_review=%d unmatched=%d average_score=%d\n",
		run.Summary.Total, run.Summary.Matched, run.Summary.NeedsReview, run.Summary.Unmatched, run.Summary.AverageScore)
}
