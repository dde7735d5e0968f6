package reports

import (
	"time"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

// Run is one finished reconciliation as handed to export and delivery.
type Run struct {
	ID          string              `json:"id"`
	Source      string              `json:"source"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
	Results     []*reconcile.Result `json:"results"`
	Unmatched   []string            `json:"unmatched_invoices"`
	Summary     reconcile.Summary   `json:"summary"`
	ReportURL   string              `json:"report_url,omitempty"`
}

// NewRun reconciles invoices against purchaseOrders and wraps the outcome.
func NewRun(id, source string, invoices, purchaseOrders []reconcile.Record) *Run {
	started := time.Now().UTC()
	results := reconcile.Run(invoices, purchaseOrders)
	unmatched := reconcile.Unmatched(invoices, purchaseOrders)
	return &Run{
		ID:          id,
		Source:      source,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
		Results:     results,
		Unmatched:   unmatched,
		Summary:     reconcile.Summarize(results, unmatched),
	}
}
