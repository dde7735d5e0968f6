package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// amountTolerance is the smallest difference treated as a mismatch (one cent).
var amountTolerance = decimal.New(1, -2)

var amountPrinter = message.NewPrinter(language.English)

// maxAmountExponent bounds the decimal exponent of an accepted amount. Values
// outside the window are treated as malformed; rescaling them is unbounded work.
const maxAmountExponent = 18

// Compare produces one FieldComparison per canonical field, always FieldCount entries
// in canonical order.
func Compare(invoice, purchaseOrder Record) []FieldComparison {
	out := make([]FieldComparison, 0, FieldCount)
	for _, f := range canonicalFields {
		iv := Resolve(invoice, f.invoiceKeys...)
		pv := Resolve(purchaseOrder, f.purchaseKeys...)

		switch f.kind {
		case kindAmount:
			ia, pa := Amount(iv), Amount(pv)
			out = append(out, FieldComparison{
				Field:              f.name,
				PurchaseOrderValue: FormatAmount(pa),
				InvoiceValue:       FormatAmount(ia),
				Match:              ia.Sub(pa).Abs().LessThan(amountTolerance),
			})
		default:
			is, ps := text(iv), text(pv)
			out = append(out, FieldComparison{
				Field:              f.name,
				PurchaseOrderValue: ps,
				InvoiceValue:       is,
				Match:              is == ps,
			})
		}
	}
	return out
}

// Amount converts a raw field value to a decimal. Anything that is not a finite
// number of sane magnitude becomes zero.
func Amount(v any) decimal.Decimal {
	d := amount(v)
	if e := d.Exponent(); e > maxAmountExponent || e < -maxAmountExponent {
		return decimal.Zero
	}
	return d
}

func amount(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		if math.IsInf(float64(n), 0) || math.IsNaN(float64(n)) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		return parseAmount(n.String())
	case string:
		return parseAmount(n)
	}
	return decimal.Zero
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount the way the reconciliation report shows it:
// a dollar sign, thousands separators and exactly two decimals. The record's
// currency code is deliberately not consulted.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return "$" + sign + groupThousands(whole) + "." + frac
}

// groupThousands inserts separators into a run of integer digits.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return amountPrinter.Sprint(number.Decimal(n))
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case decimal.Decimal:
		return s.String()
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
