package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/hikmacash/internal/codec"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/gcs"
	"github.com/dvloznov/hikmacash/internal/logger"
)

// ExportRequest is what a caller asks to export.
type ExportRequest struct {
	Format string `json:"format"`

	// EnterpriseName overrides the stored enterprise setting when non-empty.
	EnterpriseName string `json:"enterpriseName,omitempty"`
}

// ExportResult describes an uploaded artifact and how to download it.
type ExportResult struct {
	FileName    string
	ContentType string
	Key         string
	URL         string
	ExpiresAt   time.Time
}

// Exporter builds a user's export artifact, uploads it and signs a download URL.
type Exporter struct {
	auth    AuthResolver
	store   RecordStore
	objects ObjectStore
	tempDir string
	now     func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithTempDir sets the parent directory for staging artifacts. The default
// is os.TempDir.
func WithTempDir(dir string) ExporterOption {
	return func(e *Exporter) { e.tempDir = dir }
}

// WithClock sets the time source used for file names and URL expiry.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

// NewExporter creates an Exporter.
func NewExporter(auth AuthResolver, store RecordStore, objects ObjectStore, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		auth:    auth,
		store:   store,
		objects: objects,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export resolves the caller, snapshots their records, encodes them in the
// requested format, uploads the artifact to "{userId}/{fileName}" and returns
// a signed URL valid for SignedURLTTL. The staging directory is removed on
// every return path.
func (e *Exporter) Export(ctx context.Context, credential string, req ExportRequest) (*ExportResult, error) {
	userID, err := resolveUser(ctx, e.auth, credential)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With().
		Str("user_id", userID).
		Str("format", req.Format).
		Logger()

	format, err := codec.ParseFormat(req.Format)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected export request")
		return nil, err
	}

	snap, err := e.loadSnapshot(ctx, userID, req.EnterpriseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load records for export")
		return nil, err
	}

	exportedAt := e.now()
	artifact, err := codec.Build(format, snap, exportedAt)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(e.tempDir, stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: create staging directory: %w", domain.ErrStorageFailure, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", dir).Msg("Failed to remove staging directory")
		}
	}()

	staged := filepath.Join(dir, artifact.FileName)
	if err := os.WriteFile(staged, artifact.Data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: stage artifact: %w", domain.ErrStorageFailure, err)
	}

	key := gcs.UserObjectKey(userID, artifact.FileName)
	if err := e.upload(ctx, key, staged, artifact.ContentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload export")
		return nil, fmt.Errorf("%w: upload %s: %w", domain.ErrStorageFailure, key, err)
	}

	url, err := e.objects.SignedURL(ctx, key, SignedURLTTL)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to sign download URL")
		return nil, fmt.Errorf("%w: sign %s: %w", domain.ErrStorageFailure, key, err)
	}

	log.Info().
		Str("key", key).
		Int("transactions", len(snap.Transactions)).
		Int("categories", len(snap.Categories)).
		Msg("Export uploaded")

	return &ExportResult{
		FileName:    artifact.FileName,
		ContentType: artifact.ContentType,
		Key:         key,
		URL:         url,
		ExpiresAt:   exportedAt.Add(SignedURLTTL),
	}, nil
}

// loadSnapshot reads everything the user owns. A non-blank override wins
// over the stored enterprise setting.
func (e *Exporter) loadSnapshot(ctx context.Context, userID, override string) (domain.Snapshot, error) {
	txs, err := e.store.ListTransactions(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: list transactions: %w", domain.ErrPersistenceFailure, err)
	}

	cats, err := e.store.ListCategories(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: list categories: %w", domain.ErrPersistenceFailure, err)
	}

	name := strings.TrimSpace(override)
	if name == "" {
		setting, err := e.store.GetEnterpriseSetting(ctx, userID)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: get enterprise setting: %w", domain.ErrPersistenceFailure, err)
		}
		if setting != nil {
			name = setting.Name
		}
	}

	return domain.Snapshot{
		Transactions:   txs,
		Categories:     cats,
		EnterpriseName: name,
	}, nil
}

func (e *Exporter) upload(ctx context.Context, key, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open staged artifact: %w", err)
	}
	defer f.Close()

	return e.objects.Put(ctx, key, f, contentType)
}
