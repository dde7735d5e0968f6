package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (service account / GOOGLE_APPLICATION_CREDENTIALS).
	// To provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ReadObjectFromGCS downloads an object, failing with ErrorRecordNotFound when it
// does not exist.
func ReadObjectFromGCS(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	if bucketName == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	if objectName == "" {
		return nil, errors.New("object name is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucketName, objectName, ErrorRecordNotFound)
		}
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucketName, objectName, err)
	}
	return data, nil
}

// objectMetadata tags uploaded objects with the run and request they came from.
func objectMetadata(ctx context.Context) map[string]string {
	md := map[string]string{}
	if runId, ok := GetRunIdFromContext(ctx); ok {
		md["run_id"] = runId
	}
	if cid, ok := GetCorrelationIdFromContext(ctx); ok {
		md["correlation_id"] = cid
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// UploadBytesToGCS writes data under objectName in GCS_BUCKET and returns its access URL.
func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	wc.Metadata = objectMetadata(ctx)

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}
	return BuildObjectAccessURL(objectName), nil
}
