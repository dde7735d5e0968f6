package reconcile

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	ArgumentInvoices       = "invoices"
	ArgumentPurchaseOrders = "purchaseOrders"
)

// Run reconciles every invoice against the purchase order it references.
// Invoices whose purchase order is absent produce no result. Results keep invoice
// order and are indexed from 1.
func Run(invoices, purchaseOrders []Record) []*Result {
	index := indexPurchaseOrders(purchaseOrders)

	results := make([]*Result, 0, len(invoices))
	for _, invoice := range invoices {
		po, ok := index[PONumber(invoice)]
		if !ok {
			continue
		}
		results = append(results, reconcilePair(len(results)+1, invoice, po))
	}
	return results
}

// RunAny is Run for loosely typed input such as decoded JSON. It is the only path
// that can fail: when either argument is not a list of records.
func RunAny(invoices, purchaseOrders any) ([]*Result, error) {
	inv, err := Records(ArgumentInvoices, invoices)
	if err != nil {
		return nil, err
	}
	pos, err := Records(ArgumentPurchaseOrders, purchaseOrders)
	if err != nil {
		return nil, err
	}
	return Run(inv, pos), nil
}

// Unmatched lists the invoices Run skips because their purchase order is absent.
// Invoices without a number are reported by 1-based position as "#n".
func Unmatched(invoices, purchaseOrders []Record) []string {
	index := indexPurchaseOrders(purchaseOrders)

	out := make([]string, 0)
	for i, invoice := range invoices {
		if _, ok := index[PONumber(invoice)]; ok {
			continue
		}
		id := InvoiceNumber(invoice)
		if id == "" {
			id = "#" + strconv.Itoa(i+1)
		}
		out = append(out, id)
	}
	return out
}

// Records converts a loosely typed collection into records. argument names the
// collection in the returned *InvalidInputError.
func Records(argument string, v any) ([]Record, error) {
	switch list := v.(type) {
	case []Record:
		return list, nil
	case []map[string]any:
		out := make([]Record, len(list))
		for i, m := range list {
			out[i] = Record(m)
		}
		return out, nil
	case []any:
		out := make([]Record, len(list))
		for i, item := range list {
			switch m := item.(type) {
			case map[string]any:
				out[i] = Record(m)
			case Record:
				out[i] = m
			default:
				return nil, &InvalidInputError{Argument: argument, Got: fmt.Sprintf("element %d of type %T", i, item)}
			}
		}
		return out, nil
	}
	return nil, &InvalidInputError{Argument: argument, Got: fmt.Sprintf("%T", v)}
}

// first purchase order wins when a PO number repeats
func indexPurchaseOrders(purchaseOrders []Record) map[string]Record {
	index := make(map[string]Record, len(purchaseOrders))
	for _, po := range purchaseOrders {
		key := PONumber(po)
		if _, exists := index[key]; !exists {
			index[key] = po
		}
	}
	return index
}

func reconcilePair(position int, invoice, purchaseOrder Record) *Result {
	comparisons := Compare(invoice, purchaseOrder)
	score, disposition := Score(comparisons)
	return &Result{
		Index:         position,
		InvoiceNumber: InvoiceNumber(invoice),
		PONumber:      PONumber(invoice),
		VendorName:    ResolveString(invoice, vendorNameKeys...),
		InvoiceAmount: Amount(Resolve(invoice, totalAmountKeys...)),
		Comparisons:   comparisons,
		Score:         score,
		Disposition:   disposition,
	}
}

// Summary aggregates one run for dashboards and notifications.
type Summary struct {
	Total        int             `json:"total"`
	Matched      int             `json:"matched"`
	NeedsReview  int             `json:"needs_review"`
	Unmatched    int             `json:"unmatched"`
	AverageScore int             `json:"average_score"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

func Summarize(results []*Result, unmatched []string) Summary {
	s := Summary{Total: len(results), Unmatched: len(unmatched), TotalAmount: decimal.Zero}
	scoreSum := 0
	for _, r := range results {
		if r.Disposition == DispositionMatched {
			s.Matched++
		} else {
			s.NeedsReview++
		}
		scoreSum += r.Score
		s.TotalAmount = s.TotalAmount.Add(r.InvoiceAmount)
	}
	if len(results) > 0 {
		s.AverageScore = int(decimal.NewFromInt(int64(scoreSum)).
			Div(decimal.NewFromInt(int64(len(results)))).Round(0).IntPart())
	}
	return s
}
