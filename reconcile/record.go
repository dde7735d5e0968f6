package reconcile

import "github.com/shopspring/decimal"

// Record is one invoice or purchase order row as supplied by an ingestion adapter.
// Keys may use the internal camelCase spelling or spreadsheet-style headers.
type Record map[string]any

type Disposition string

const (
	DispositionMatched     Disposition = "matched"
	DispositionNeedsReview Disposition = "needs_review"
)

// FieldComparison is the outcome of comparing one canonical field.
type FieldComparison struct {
	Field              string `json:"field"`
	PurchaseOrderValue string `json:"po_value"`
	InvoiceValue       string `json:"invoice_value"`
	Match              bool   `json:"match"`
}

type Result struct {
	// Index is positional within a single run and is not stable across runs.
	Index         int               `json:"index"`
	InvoiceNumber string            `json:"invoice_number"`
	PONumber      string            `json:"po_number"`
	VendorName    string            `json:"vendor_name"`
	InvoiceAmount decimal.Decimal   `json:"invoice_amount"`
	Comparisons   []FieldComparison `json:"comparisons"`
	Score         int               `json:"score"`
	Disposition   Disposition       `json:"disposition"`
}

// Mismatches returns the comparisons that did not match, in field order.
func (r *Result) Mismatches() []FieldComparison {
	out := make([]FieldComparison, 0)
	for _, c := range r.Comparisons {
		if !c.Match {
			out = append(out, c)
		}
	}
	return out
}
