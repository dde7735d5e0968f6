package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/models/reports"
	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/mmdatafocus/invoice_reconcile/sources"
	"github.com/mmdatafocus/invoice_reconcile/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("invoice-reconcile/workflow")

const sourceLockTTL = 2 * time.Minute

// loadSource is swapped in tests.
var loadSource = func(ctx context.Context, job Job) (*sources.Batch, error) {
	switch job.Source {
	case SourceGCS:
		return sources.LoadGCS(ctx, job.InvoicesURI, job.PurchaseOrdersURI)
	case SourceDatabase:
		if config.GetDB() == nil {
			return nil, ErrDatabaseNotReady
		}
		return sources.LoadDatabase(ctx, job.Batch)
	case SourceERP:
		client, err := sources.NewERPClientFromEnv()
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return client.Load(ctx, job.query())
	}
	return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidJob, job.Source)
}

// Reconcile loads the collections a job describes and reconciles them.
func Reconcile(ctx context.Context, logger *logrus.Logger, job Job) (*reports.Run, error) {
	ctx, span := tracer.Start(ctx, "workflow.Reconcile")
	defer span.End()
	span.SetAttributes(attribute.String("reconcile.source", job.Source))

	if err := ValidateJob(job); err != nil {
		return nil, err
	}

	lock := obtainSourceLock(ctx, logger, job)
	defer releaseSourceLock(ctx, logger, lock)

	batch, err := loadSource(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load source")
		return nil, fmt.Errorf("failed to load %s source: %w", job.Source, err)
	}
	span.SetAttributes(
		attribute.Int("reconcile.invoices", len(batch.Invoices)),
		attribute.Int("reconcile.purchase_orders", len(batch.PurchaseOrders)),
	)
	return ReconcileRecords(ctx, logger, job.Source, batch.Invoices, batch.PurchaseOrders), nil
}

// ReconcileRecords runs already-loaded collections and hands the finished run to
// export, cache and notification. Those steps are best-effort.
func ReconcileRecords(ctx context.Context, logger *logrus.Logger, source string, invoices, purchaseOrders []reconcile.Record) *reports.Run {
	started := time.Now()
	run := reports.NewRun(uuid.NewString(), source, invoices, purchaseOrders)
	ctx = utils.SetRunIdInContext(ctx, run.ID)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	username, _ := utils.GetUsernameFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)

	logger.WithFields(logrus.Fields{
		"field":          "ReconcileRecords",
		"run_id":         run.ID,
		"username":       username,
		"user_id":        userId,
		"role":           role,
		"source":         source,
		"correlation_id": cid,
		"reconciled":     run.Summary.Total,
		"matched":        run.Summary.Matched,
		"needs_review":   run.Summary.NeedsReview,
		"unmatched":      run.Summary.Unmatched,
	}).Info("reconciliation run completed")

	exportRun(ctx, logger, run)
	if err := reports.CacheRun(ctx, run); err != nil {
		config.LogError(logger, "reconcileWorkflow.go", "ReconcileRecords", "CacheRun", run.ID, err)
	}
	publishRun(ctx, logger, run, cid)
	reports.LogSlowRun(ctx, run, started)
	return run
}

func exportRun(ctx context.Context, logger *logrus.Logger, run *reports.Run) {
	if !config.ExportToGCS() {
		return
	}
	data, err := reports.ExcelBytes(run)
	if err != nil {
		config.LogError(logger, "reconcileWorkflow.go", "exportRun", "ExcelBytes", run.ID, err)
		return
	}
	url, err := utils.UploadBytesToGCS(ctx, "reconciliations/"+reports.ExcelFileName(run), data, reports.ExcelContentType)
	if err != nil {
		config.LogError(logger, "reconcileWorkflow.go", "exportRun", "UploadBytesToGCS", run.ID, err)
		return
	}
	run.ReportURL = url
}

func publishRun(ctx context.Context, logger *logrus.Logger, run *reports.Run, correlationId string) {
	if !config.PubSubEnabled() {
		return
	}
	msgId, err := config.PublishRunCompleted(ctx, config.RunCompletedMessage{
		RunId:         run.ID,
		Source:        run.Source,
		CompletedAt:   run.CompletedAt,
		Total:         run.Summary.Total,
		Matched:       run.Summary.Matched,
		NeedsReview:   run.Summary.NeedsReview,
		Unmatched:     run.Summary.Unmatched,
		AverageScore:  run.Summary.AverageScore,
		ReportURL:     run.ReportURL,
		CorrelationId: correlationId,
	})
	if err != nil {
		config.LogError(logger, "reconcileWorkflow.go", "publishRun", "PublishRunCompleted", run.ID, err)
		return
	}
	logger.WithFields(logrus.Fields{
		"field":      "publishRun",
		"run_id":     run.ID,
		"message_id": msgId,
	}).Info("published reconciliation.completed")
}

// obtainSourceLock is best-effort: without Redis, or when another job holds the
// key, the run proceeds unlocked.
func obtainSourceLock(ctx context.Context, logger *logrus.Logger, job Job) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, job.lockKey(), sourceLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(500*time.Millisecond), 10),
	})
	if err == redislock.ErrNotObtained {
		logger.WithFields(logrus.Fields{
			"field":  "obtainSourceLock",
			"source": job.Source,
		}).Warn("could not obtain redis lock; proceeding without redis lock")
		return nil
	} else if err != nil {
		logger.WithFields(logrus.Fields{
			"field":  "obtainSourceLock",
			"source": job.Source,
		}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
		return nil
	}
	return lock
}

func releaseSourceLock(ctx context.Context, logger *logrus.Logger, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(ctx); err != nil {
		logger.WithFields(logrus.Fields{
			"field": "releaseSourceLock",
			"key":   lock.Key(),
		}).Warn("failed to release redis lock: " + err.Error())
	}
}
