package reports

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/utils"
)

const runCachePrefix = "reconcile:run:"

// Env: RUN_CACHE_TTL_SECONDS (default 3600s)
func runCacheTTL() time.Duration {
	return time.Duration(config.IntFromEnv("RUN_CACHE_TTL_SECONDS", 3600)) * time.Second
}

// Env: RUN_SLOW_MS (default 500ms)
func runSlowMs() int64 {
	return int64(config.IntFromEnv("RUN_SLOW_MS", 500))
}

func runCacheKey(id string) string {
	return runCachePrefix + id
}

// CacheRun stores run for later retrieval and export. It is a no-op without Redis.
func CacheRun(ctx context.Context, run *Run) error {
	return config.SetRedisObject(ctx, runCacheKey(run.ID), run, runCacheTTL())
}

// GetCachedRun returns utils.ErrorRecordNotFound for unknown or expired runs.
func GetCachedRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	found, err := config.GetRedisObject(ctx, runCacheKey(id), &run)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("run %s: %w", id, utils.ErrorRecordNotFound)
	}
	return &run, nil
}

// LogSlowRun reports runs slower than RUN_SLOW_MS.
func LogSlowRun(ctx context.Context, run *Run, started time.Time) {
	d := time.Since(started)
	if d.Milliseconds() < runSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	log.Printf("slow_run id=%s source=%s ms=%d results=%d correlation_id=%s", run.ID, run.Source, d.Milliseconds(), len(run.Results), cid)
}
