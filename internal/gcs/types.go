package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ObjectStore provides an interface for the object storage operations the
// export pipeline needs. This interface enables substitution of the cloud
// bucket with an in-memory store in tests and local development.
type ObjectStore interface {
	// Put writes the object at key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// SignedURL returns a credential-free read URL for key that expires after ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UserObjectKey returns the storage key of a user's file: "{userID}/{fileName}".
func UserObjectKey(userID, fileName string) string {
	return userID + "/" + fileName
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/user-1/Acme_export_2024-06-01.json" → "Acme_export_2024-06-01.json"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
