// Package app opens the record and object stores selected by configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hikmacash/internal/config"
	"github.com/dvloznov/hikmacash/internal/gcs"
	"github.com/dvloznov/hikmacash/internal/gcsuploader"
	bqstore "github.com/dvloznov/hikmacash/internal/infra/bigquery"
	"github.com/dvloznov/hikmacash/internal/infra/inmemory"
	"github.com/dvloznov/hikmacash/internal/infra/postgres"
	"github.com/dvloznov/hikmacash/internal/pipeline"
)

// Backends holds the opened stores. Close releases every connection.
type Backends struct {
	Records pipeline.RecordStore
	Objects gcs.ObjectStore

	// GCS is set when Objects is backed by Cloud Storage.
	GCS *gcsuploader.GCSObjectStore

	closers []func() error
}

// Open connects the stores named in cfg. On error nothing is left open.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.Store.DatabaseURL,
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		b.Records = postgres.NewPostgresRecordStore(pool)
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
	case config.BackendBigQuery:
		store, err := bqstore.NewBigQueryRecordStore(ctx, bqstore.Dataset{
			ProjectID: cfg.Store.ProjectID,
			DatasetID: cfg.Store.Dataset,
		})
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		b.Records = store
		b.closers = append(b.closers, store.Close)
	case config.BackendMemory:
		b.Records = inmemory.NewRecordStore()
	default:
		return nil, fmt.Errorf("Open: unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Storage.Backend {
	case config.ObjectStoreGCS:
		store, err := gcsuploader.NewGCSObjectStore(ctx, cfg.Storage.Bucket)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		b.Objects = store
		b.GCS = store
		b.closers = append(b.closers, store.Close)
	case config.ObjectStoreMemory:
		bucket := cfg.Storage.Bucket
		if bucket == "" {
			bucket = "local"
		}
		b.Objects = inmemory.NewObjectStore(bucket)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("Open: unknown object store %q", cfg.Storage.Backend)
	}

	return b, nil
}

// Close releases the stores in reverse order of opening.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
