package workflow

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	SourceUpload   = "upload"
	SourceRecords  = "records"
	SourceGCS      = "gcs"
	SourceDatabase = "database"
	SourceERP      = "erp"
)

// Job describes where the invoices and purchase orders of one run come from.
type Job struct {
	Source            string            `json:"source" validate:"required,oneof=gcs database erp"`
	InvoicesURI       string            `json:"invoices_uri" validate:"required_if=Source gcs"`
	PurchaseOrdersURI string            `json:"purchase_orders_uri" validate:"required_if=Source gcs"`
	Batch             string            `json:"batch"`
	Params            map[string]string `json:"params"`
}

var validate = validator.New()

// ValidateJob reports the first invalid field of job in a caller-facing form.
func ValidateJob(job Job) error {
	err := validate.Struct(job)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required", "required_if":
			return fmt.Errorf("%w: %s is required", ErrInvalidJob, jsonName(fe.Field()))
		case "oneof":
			return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalidJob, jsonName(fe.Field()), fe.Param())
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidJob, err)
}

func jsonName(field string) string {
	switch field {
	case "InvoicesURI":
		return "invoices_uri"
	case "PurchaseOrdersURI":
		return "purchase_orders_uri"
	default:
		return strings.ToLower(field)
	}
}

// lockKey identifies the data a job reads, so two jobs over the same data do not
// run at the same time.
func (j Job) lockKey() string {
	switch j.Source {
	case SourceGCS:
		return fmt.Sprintf("lock:reconcile:gcs:%s|%s", j.InvoicesURI, j.PurchaseOrdersURI)
	case SourceDatabase:
		return "lock:reconcile:database:" + j.Batch
	default:
		return "lock:reconcile:" + j.Source + ":" + j.query().Encode()
	}
}

func (j Job) query() url.Values {
	q := url.Values{}
	for k, v := range j.Params {
		q.Set(k, v)
	}
	return q
}
