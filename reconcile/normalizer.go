package reconcile

// Canonical field names, in comparison order.
const (
	FieldPONumber        = "PO Number"
	FieldVendorName      = "Vendor Name"
	FieldInvoiceDate     = "Invoice Date"
	FieldTotalAmount     = "Total Amount"
	FieldCurrency        = "Currency"
	FieldPaymentTerms    = "Payment Terms"
	FieldShippingAddress = "Shipping Address"
	FieldTaxAmount       = "Tax Amount"
)

// FieldCount is the number of canonical fields compared per pair.
const FieldCount = 8

type fieldKind int

const (
	kindString fieldKind = iota
	kindAmount
)

// canonicalField lists the key spellings accepted on each side, in priority order.
type canonicalField struct {
	name         string
	kind         fieldKind
	invoiceKeys  []string
	purchaseKeys []string
}

var canonicalFields = [FieldCount]canonicalField{
	{FieldPONumber, kindString, []string{"poNumber", "PO Number"}, []string{"poNumber", "PO Number"}},
	{FieldVendorName, kindString, []string{"vendorName", "Vendor Name"}, []string{"vendorName", "Vendor Name"}},
	{FieldInvoiceDate, kindString, []string{"invoiceDate", "Invoice Date"}, []string{"date", "Date"}},
	{FieldTotalAmount, kindAmount, []string{"totalAmount", "Total Amount"}, []string{"totalAmount", "Total Amount"}},
	{FieldCurrency, kindString, []string{"currency", "Currency"}, []string{"currency", "Currency"}},
	{FieldPaymentTerms, kindString, []string{"paymentTerms", "Payment Terms"}, []string{"paymentTerms", "Payment Terms"}},
	{FieldShippingAddress, kindString, []string{"shippingAddress", "Shipping Address"}, []string{"shippingAddress", "Shipping Address"}},
	{FieldTaxAmount, kindAmount, []string{"taxAmount", "Tax Amount"}, []string{"taxAmount", "Tax Amount"}},
}

var (
	poNumberKeys      = canonicalFields[0].invoiceKeys
	vendorNameKeys    = canonicalFields[1].invoiceKeys
	totalAmountKeys   = canonicalFields[3].invoiceKeys
	invoiceNumberKeys = []string{"invoiceNumber", "Invoice Number", "invoiceId", "Invoice ID"}
)

// FieldNames returns the canonical field names in comparison order.
func FieldNames() []string {
	names := make([]string, 0, FieldCount)
	for _, f := range canonicalFields {
		names = append(names, f.name)
	}
	return names
}

// Resolve returns the value stored under the first key present in record.
// A record with none of the keys resolves to "" so that the field fails comparison
// instead of aborting the run.
func Resolve(record Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := record[k]; ok {
			return v
		}
	}
	return ""
}

// ResolveString is Resolve rendered as text.
func ResolveString(record Record, keys ...string) string {
	return text(Resolve(record, keys...))
}

// InvoiceNumber resolves the invoice identifier of an invoice record.
func InvoiceNumber(invoice Record) string {
	return ResolveString(invoice, invoiceNumberKeys...)
}

// PONumber resolves the purchase order reference of either side.
func PONumber(record Record) string {
	return ResolveString(record, poNumberKeys...)
}
