package utils

import (
	"context"
	"testing"
	"time"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "s3cret")
	token, err := JwtGenerate(42, "ap.clerk", "AP", time.Minute)
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	claims, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if claims.ID != 42 || claims.Username != "ap.clerk" || claims.Role != "AP" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	t.Setenv("API_SECRET", "other")
	if _, err := JwtValidate(token); err == nil {
		t.Fatalf("expected signature error with a different secret")
	}
}

func TestJwtRequiresSecret(t *testing.T) {
	t.Setenv("API_SECRET", "")
	if _, err := JwtGenerate(1, "u", "r", time.Minute); err == nil {
		t.Fatalf("expected error without API_SECRET")
	}
}

func TestSplitGCSURI(t *testing.T) {
	t.Setenv("GCS_BUCKET", "default-bucket")
	cases := []struct {
		in, bucket, object string
	}{
		{"gs://invoices/2024/jan.csv", "invoices", "2024/jan.csv"},
		{"gs://invoices", "invoices", ""},
		{"/uploads/po.xlsx", "default-bucket", "uploads/po.xlsx"},
		{" uploads/po.json ", "default-bucket", "uploads/po.json"},
	}
	for _, tc := range cases {
		bucket, object := SplitGCSURI(tc.in)
		if bucket != tc.bucket || object != tc.object {
			t.Fatalf("SplitGCSURI(%q) = %q, %q; want %q, %q", tc.in, bucket, object, tc.bucket, tc.object)
		}
	}
}

func TestBuildObjectAccessURL(t *testing.T) {
	cases := []struct {
		base, bucket, want string
	}{
		{"https://cdn.example/{objectKey}", "", "https://cdn.example/reconciliations%2Freport.xlsx"},
		{"https://cdn.example/", "", "https://cdn.example/reconciliations/report.xlsx"},
		{"", "reports", "gs://reports/reconciliations/report.xlsx"},
		{"", "", "reconciliations/report.xlsx"},
	}
	for _, tc := range cases {
		t.Setenv("STORAGE_ACCESS_BASE_URL", tc.base)
		t.Setenv("GCS_BUCKET", tc.bucket)
		if got := BuildObjectAccessURL("reconciliations/report.xlsx"); got != tc.want {
			t.Fatalf("BuildObjectAccessURL with base=%q bucket=%q = %q, want %q", tc.base, tc.bucket, got, tc.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := SetCorrelationIdInContext(context.Background(), "cid")
	ctx = SetRunIdInContext(ctx, "run")
	ctx = SetUserIdInContext(ctx, 9)
	if v, ok := GetCorrelationIdFromContext(ctx); !ok || v != "cid" {
		t.Fatalf("correlation id = %q, %v", v, ok)
	}
	if v, ok := GetRunIdFromContext(ctx); !ok || v != "run" {
		t.Fatalf("run id = %q, %v", v, ok)
	}
	if v, ok := GetUserIdFromContext(ctx); !ok || v != 9 {
		t.Fatalf("user id = %d, %v", v, ok)
	}
	if _, ok := GetUsernameFromContext(ctx); ok {
		t.Fatalf("username must be absent")
	}
}

func TestObjectMetadata(t *testing.T) {
	if md := objectMetadata(context.Background()); md != nil {
		t.Fatalf("expected nil metadata, got %v", md)
	}
	ctx := SetRunIdInContext(SetCorrelationIdInContext(context.Background(), "cid"), "run-1")
	md := objectMetadata(ctx)
	if md["run_id"] != "run-1" || md["correlation_id"] != "cid" || len(md) != 2 {
		t.Fatalf("unexpected metadata %v", md)
	}
}
