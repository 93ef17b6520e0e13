package gcsuploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/hikmacash/internal/gcs"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// GCSObjectStore is the concrete implementation of gcs.ObjectStore backed by
// one Google Cloud Storage bucket. It holds a shared client to avoid creating
// a new connection for each operation.
type GCSObjectStore struct {
	client *storage.Client
	bucket string
}

// NewGCSObjectStore creates a store for bucket.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
// Signing URLs additionally needs a service account identity.
func NewGCSObjectStore(ctx context.Context, bucket string) (*GCSObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCSObjectStore: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSObjectStore: create storage client: %w", err)
	}
	return &GCSObjectStore{client: client, bucket: bucket}, nil
}

// Close closes the storage client connection.
func (s *GCSObjectStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Bucket returns the bucket name this store writes to.
func (s *GCSObjectStore) Bucket() string {
	return s.bucket
}

// Put streams r into the object at key. An existing object is overwritten.
func (s *GCSObjectStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		// Cancelling before Close aborts the write instead of committing a partial object.
		cancel()
		_ = w.Close()
		return fmt.Errorf("Put: copy to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("Put: finalize upload of %s: %w", key, err)
	}
	return nil
}

// SignedURL generates a V4 signed GET URL for key.
func (s *GCSObjectStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("SignedURL: generate for %s: %w", key, err)
	}
	return url, nil
}

// UploadFile uploads a local file under the given object name.
func (s *GCSObjectStore) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	return s.Put(ctx, objectName, f, contentType)
}

// Fetch downloads the object bytes from the given GCS URI. The URI may name
// any bucket the credentials can read.
func (s *GCSObjectStore) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := gcs.ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// Ensure GCSObjectStore implements gcs.ObjectStore.
var _ gcs.ObjectStore = (*GCSObjectStore)(nil)
