// Package backend builds the service.Service for the configured backend.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"tasktrack/internal/backend/googletasks"
	"tasktrack/internal/backend/postgres"
	"tasktrack/internal/backend/supabase"
	"tasktrack/internal/config"
	"tasktrack/internal/service"
)

// New builds the Service selected by cfg.Settings.Backend.
// Missing settings yield service.ErrServiceUnavailable.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", service.ErrServiceUnavailable)
	}
	s := cfg.Settings
	if err := s.Validate(cfg); err != nil {
		return nil, err
	}

	switch s.Backend {
	case config.BackendGoogleTasks:
		client, err := googletasks.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendPostgres:
		auth := supabase.NewAuth(supabaseOptions(cfg, logger))
		store, err := postgres.New(ctx, s.DatabaseURL, s.Table, s.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return &composite{Identity: auth, Storage: store}, nil

	default:
		client, err := supabase.New(supabaseOptions(cfg, logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func supabaseOptions(cfg *config.Config, logger *slog.Logger) supabase.Options {
	return supabase.Options{
		URL:       cfg.Settings.StoreURL,
		APIKey:    cfg.Settings.APIKey,
		Table:     cfg.Settings.Table,
		TokenPath: cfg.TokenPath(),
		Timeout:   cfg.Settings.Timeout,
		Logger:    logger,
	}
}

// composite pairs an identity service with a separate task store.
type composite struct {
	service.Identity
	service.Storage
}

var (
	// logOutput receives backend debug logs.
	logOutput io.Writer = os.Stderr

	sharedOnce sync.Once
	sharedSvc  service.Service
	sharedErr  error
)

// Shared returns the process-wide Service, building it on first use.
// The handle is never rebuilt; a construction error is returned on every
// later call. Without a config it refuses and nothing is cached.
func Shared(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", service.ErrServiceUnavailable)
	}
	sharedOnce.Do(func() {
		sharedSvc, sharedErr = New(ctx, cfg, cfg.Logger(logOutput))
	})
	return sharedSvc, sharedErr
}
