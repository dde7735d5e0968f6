package sources

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
)

// ParseJSON reads a JSON array of objects. Numbers are kept as json.Number.
func ParseJSON(r io.Reader) ([]reconcile.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return reconcile.Records("records", raw)
}
