package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hikmacash/internal/app"
	"github.com/dvloznov/hikmacash/internal/config"
	"github.com/dvloznov/hikmacash/internal/logger"
	"github.com/rs/zerolog"
)

var envFile string

// env is what every command needs: configuration, a logger and open stores.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	backends *app.Backends
}

func openEnv(ctx context.Context) (context.Context, *env, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return ctx, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, err
	}

	log := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)
	ctx = logger.WithContext(ctx, log)

	backends, err := app.Open(ctx, cfg)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, &env{cfg: cfg, log: log, backends: backends}, nil
}

func (e *env) Close() {
	if err := e.backends.Close(); err != nil {
		e.log.Error().Err(err).Msg("Failed to close stores")
	}
}

var errNoGCS = errors.New("command requires OBJECT_STORE=gcs")

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("-user is required")
	}
	return nil
}
