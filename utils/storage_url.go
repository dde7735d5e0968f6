package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL turns a stored report key into the URL handed to delivery
// integrations.
func BuildObjectAccessURL(objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			return strings.ReplaceAll(base, "{objectKey}", url.PathEscape(objectKey))
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	if gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET")); gcsBucket != "" {
		return "gs://" + gcsBucket + "/" + objectKey
	}
	return objectKey
}

// SplitGCSURI splits "gs://bucket/object" into its parts. Plain object keys resolve
// against GCS_BUCKET.
func SplitGCSURI(uri string) (bucket string, object string) {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "gs://") {
		parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return parts[0], ""
	}
	return strings.TrimSpace(os.Getenv("GCS_BUCKET")), strings.TrimPrefix(uri, "/")
}
