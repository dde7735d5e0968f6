package config

import (
	"os"
	"strconv"
	"strings"
)

func flagFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AuthRequired rejects requests without a valid bearer token.
//
// Set via env:
// - AUTH_REQUIRED=true
func AuthRequired() bool {
	return flagFromEnv("AUTH_REQUIRED")
}

// ExportToGCS uploads the XLSX report of every finished run to GCS_BUCKET.
//
// Set via env:
// - EXPORT_TO_GCS=true
func ExportToGCS() bool {
	return flagFromEnv("EXPORT_TO_GCS")
}

// RequireDatabase blocks startup routes until MySQL is connected. Without it the
// database source is simply unavailable.
//
// Set via env:
// - REQUIRE_DATABASE=true
func RequireDatabase() bool {
	return flagFromEnv("REQUIRE_DATABASE")
}

// MaxUploadSizeBytes bounds each uploaded invoice/PO file.
//
// Set via env:
// - MAX_UPLOAD_SIZE_MB (default 10)
func MaxUploadSizeBytes() int64 {
	return int64(intFromEnv("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// IntFromEnv exposes the env integer parser to other packages.
func IntFromEnv(key string, def int) int {
	return intFromEnv(key, def)
}
