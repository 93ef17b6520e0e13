package main

import (
	"context"
	"flag"
	"io/fs"
	"os"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/hikmacash/internal/config"
	"github.com/dvloznov/hikmacash/internal/infra/postgres"
	"github.com/dvloznov/hikmacash/internal/logger"
	"github.com/dvloznov/hikmacash/migrations"
)

var (
	backend       = flag.String("backend", "", "Record store to migrate: postgres or bigquery (defaults to STORE_BACKEND)")
	databaseURL   = flag.String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	projectID     = flag.String("project", "", "GCP project ID (defaults to GCP_PROJECT)")
	datasetID     = flag.String("dataset", "", "BigQuery dataset ID (defaults to BQ_DATASET)")
	appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	migrationsDir = flag.String("migrations", "", "Directory of migration files; the embedded set is used when empty")
	envFile       = flag.String("env-file", ".env", "Optional dotenv file loaded before the environment")
)

func main() {
	flag.Parse()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to load env file")
	}

	// Flags win over the environment.
	opts := resolveOptions(os.LookupEnv)

	fsys, dir := migrationSource(opts.backend)

	var (
		t    target
		vars map[string]string
	)
	switch opts.backend {
	case config.BackendPostgres:
		if opts.databaseURL == "" {
			log.Fatal().Msg("-database-url or DATABASE_URL is required for postgres")
		}
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{URL: opts.databaseURL, MaxConns: 1})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		t = &postgresTarget{db: pool}
		log.Info().Msg("Connected to PostgreSQL")
	case config.BackendBigQuery:
		if opts.projectID == "" {
			log.Fatal().Msg("-project or GCP_PROJECT is required for bigquery")
		}
		client, err := bigquery.NewClient(ctx, opts.projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer client.Close()
		t = &bigQueryTarget{client: client, projectID: opts.projectID, datasetID: opts.datasetID}
		vars = map[string]string{"PROJECT_ID": opts.projectID, "DATASET_ID": opts.datasetID}
		log.Info().Str("project", opts.projectID).Str("dataset", opts.datasetID).Msg("Connected to BigQuery")
	default:
		log.Fatal().Str("backend", opts.backend).Msg("-backend must be postgres or bigquery")
	}

	list, err := readMigrations(fsys, dir, vars, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Int("count", len(list)).Msg("Found migration files")

	applied, err := run(ctx, t, list, *appliedBy, log)
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("Migration failed")
	}

	if applied == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		log.Info().Int("applied", applied).Msg("Successfully applied migrations")
	}
}

type options struct {
	backend     string
	databaseURL string
	projectID   string
	datasetID   string
}

// resolveOptions merges flags with the environment variables the servers read.
func resolveOptions(lookup config.LookupFunc) options {
	pick := func(flagValue string, keys ...string) string {
		if flagValue != "" {
			return flagValue
		}
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v
			}
		}
		return ""
	}

	opts := options{
		backend:     pick(*backend, "STORE_BACKEND"),
		databaseURL: pick(*databaseURL, "DATABASE_URL", "DB_URL"),
		projectID:   pick(*projectID, "GCP_PROJECT", "GOOGLE_CLOUD_PROJECT"),
		datasetID:   pick(*datasetID, "BQ_DATASET"),
	}
	if opts.backend == "" {
		opts.backend = config.BackendPostgres
	}
	if opts.datasetID == "" {
		opts.datasetID = "hikmacash"
	}
	return opts
}

// migrationSource returns the file system and directory holding the
// backend's migrations: -migrations when set, else the embedded files.
func migrationSource(backend string) (fs.FS, string) {
	if *migrationsDir != "" {
		return os.DirFS(*migrationsDir), "."
	}
	return migrations.FS, backend
}
