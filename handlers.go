package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/models/reports"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/mmdatafocus/invoice_reconcile/sources"
	"github.com/mmdatafocus/invoice_reconcile/utils"
	"github.com/mmdatafocus/invoice_reconcile/workflow"
	"github.com/sirupsen/logrus"
)

const (
	formFieldInvoices       = "invoices"
	formFieldPurchaseOrders = "purchaseOrders"
)

type reconcileRequest struct {
	Invoices       any `json:"invoices"`
	PurchaseOrders any `json:"purchaseOrders"`
}

// respondError maps domain errors to status codes. Details of unexpected errors are
// hidden in production.
func respondError(c *gin.Context, err error) {
	var invalid *reconcile.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "argument": invalid.Argument})
	case errors.Is(err, workflow.ErrInvalidJob), errors.Is(err, sources.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrJobInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrDatabaseNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		msg := err.Error()
		if isProduction() {
			msg = "internal server error"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func reconcileHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reconcileRequest
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		invoices, err := reconcile.Records(reconcile.ArgumentInvoices, req.Invoices)
		if err != nil {
			respondError(c, err)
			return
		}
		purchaseOrders, err := reconcile.Records(reconcile.ArgumentPurchaseOrders, req.PurchaseOrders)
		if err != nil {
			respondError(c, err)
			return
		}

		run := workflow.ReconcileRecords(c.Request.Context(), logger, workflow.SourceRecords, invoices, purchaseOrders)
		c.JSON(http.StatusOK, gin.H{"data": run})
	}
}

func uploadHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxSize := config.MaxUploadSizeBytes()
		// two files plus multipart overhead
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*maxSize+1<<20)

		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}

		invoices, status, err := parseUploadedFile(form, formFieldInvoices, maxSize)
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		purchaseOrders, status, err := parseUploadedFile(form, formFieldPurchaseOrders, maxSize)
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		run := workflow.ReconcileRecords(c.Request.Context(), logger, workflow.SourceUpload, invoices, purchaseOrders)
		c.JSON(http.StatusOK, gin.H{"data": run})
	}
}

func parseUploadedFile(form *multipart.Form, field string, maxSize int64) ([]reconcile.Record, int, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, http.StatusBadRequest, fmt.Errorf("%s file is required", field)
	}
	fh := files[0]
	if fh.Size > maxSize {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s file exceeds %d bytes", field, maxSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to open %s file: %w", field, err)
	}
	defer f.Close()

	records, err := sources.ParseFile(fh.Filename, f)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("%s: %w", field, err)
	}
	return records, http.StatusOK, nil
}

func jobHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var job workflow.Job
		if err := c.ShouldBindJSON(&job); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		run, err := workflow.ReconcileIdempotent(c.Request.Context(), logger, job, c.GetHeader("Idempotency-Key"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": run})
	}
}

func runHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := reports.GetCachedRun(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": run})
	}
}

func runExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := reports.GetCachedRun(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		data, err := reports.ExcelBytes(run)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.ExcelFileName(run)))
		c.Data(http.StatusOK, reports.ExcelContentType, data)
	}
}
