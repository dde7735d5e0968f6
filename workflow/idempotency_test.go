package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/invoice_reconcile/config"
	"github.com/mmdatafocus/invoice_reconcile/sources"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{fmt.Errorf("create: %w", &mysqlDriver.MySQLError{Number: 1062}), true},
		{&mysqlDriver.MySQLError{Number: 1213}, false},
		{gorm.ErrDuplicatedKey, true},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := isDuplicateKeyErr(tc.err); got != tc.want {
			t.Fatalf("isDuplicateKeyErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestReconcileIdempotent_WithoutDatabase(t *testing.T) {
	config.SetDB(nil)
	config.SetRedisDB(nil)
	calls := 0
	stubLoadSource(t, func(ctx context.Context, job Job) (*sources.Batch, error) {
		calls++
		return &sources.Batch{}, nil
	})

	for i := 0; i < 2; i++ {
		if _, err := ReconcileIdempotent(context.Background(), quietLogger(), Job{Source: SourceERP}, "key-1"); err != nil {
			t.Fatalf("ReconcileIdempotent: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("without a database every call runs, got %d loads", calls)
	}
}
