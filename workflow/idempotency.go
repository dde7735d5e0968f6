package workflow

import (
	"context"
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/models"
	"github.com/mmdatafocus/invoice_reconcile/models/reports"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrJobInProgress = errors.New("job with this idempotency key is in progress")

// a STARTED row older than this is treated as abandoned
const staleJobAfter = 5 * time.Minute

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// BeginJob inserts STARTED for key. When key already SUCCEEDED it returns the run id
// of that run so the caller can replay it.
func BeginJob(ctx context.Context, db *gorm.DB, key, source string) (runId string, err error) {
	job := models.ReconcileJob{
		IdempotencyKey: key,
		Source:         source,
		Status:         models.JobStatusStarted,
	}
	if err := db.WithContext(ctx).Create(&job).Error; err == nil {
		return "", nil
	} else if !isDuplicateKeyErr(err) {
		return "", err
	}

	var existing models.ReconcileJob
	if err := db.WithContext(ctx).Where("idempotency_key = ?", key).First(&existing).Error; err != nil {
		return "", err
	}

	switch existing.Status {
	case models.JobStatusSucceeded:
		return existing.RunId, nil
	case models.JobStatusStarted:
		if time.Since(existing.UpdatedAt) < staleJobAfter {
			return "", ErrJobInProgress
		}
	}
	return "", db.WithContext(ctx).Model(&models.ReconcileJob{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"status": models.JobStatusStarted, "last_error": nil}).Error
}

func MarkJobSucceeded(ctx context.Context, db *gorm.DB, key, runId string) error {
	return db.WithContext(ctx).Model(&models.ReconcileJob{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{"status": models.JobStatusSucceeded, "run_id": runId, "last_error": nil}).Error
}

func MarkJobFailed(ctx context.Context, db *gorm.DB, key string, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return db.WithContext(ctx).Model(&models.ReconcileJob{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]interface{}{"status": models.JobStatusFailed, "last_error": &msg}).Error
}

// ReconcileIdempotent is Reconcile guarded by key. A key that already succeeded
// replays its cached run; once that run has expired from the cache the job runs again.
// Without a key or a database it is plain Reconcile.
func ReconcileIdempotent(ctx context.Context, logger *logrus.Logger, job Job, key string) (*reports.Run, error) {
	db := config.GetDB()
	if key == "" || db == nil {
		return Reconcile(ctx, logger, job)
	}
	if err := ValidateJob(job); err != nil {
		return nil, err
	}

	runId, err := BeginJob(ctx, db, key, job.Source)
	if err != nil {
		return nil, err
	}
	if runId != "" {
		if run, err := reports.GetCachedRun(ctx, runId); err == nil {
			logger.WithFields(logrus.Fields{
				"field":           "ReconcileIdempotent",
				"idempotency_key": key,
				"run_id":          runId,
			}).Info("replaying reconciliation run")
			return run, nil
		}
	}

	run, err := Reconcile(ctx, logger, job)
	if err != nil {
		if markErr := MarkJobFailed(ctx, db, key, err); markErr != nil {
			config.LogError(logger, "idempotency.go", "ReconcileIdempotent", "MarkJobFailed", key, markErr)
		}
		return nil, err
	}
	if err := MarkJobSucceeded(ctx, db, key, run.ID); err != nil {
		config.LogError(logger, "idempotency.go", "ReconcileIdempotent", "MarkJobSucceeded", key, err)
	}
	return run, nil
}
