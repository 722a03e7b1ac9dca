package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ezchat/ezchat-server/internal/config"
	"github.com/ezchat/ezchat-server/internal/core"
	"github.com/ezchat/ezchat-server/internal/store"
	"github.com/ezchat/ezchat-server/internal/store/sqlite"
	transporthttp "github.com/ezchat/ezchat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	purgeInterval   time.Duration
	hub             *core.Hub
	store           store.MessageStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
// A store that cannot be opened is fatal here: the server must not
// accept connections without working persistence.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath, sqlite.Options{
		TTL:        cfg.MessageTTL,
		MaxTextLen: cfg.MaxMessageLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Dur("message_ttl", cfg.MessageTTL).Msg("database initialized")

	hub := core.NewHub(st, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		purgeInterval:   cfg.PurgeInterval,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)
	go a.purgeLoop(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// purgeLoop periodically removes messages that aged out of the
// retention window. Expired rows are already invisible to History;
// this reclaims the space.
func (a *App) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(a.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := a.store.PurgeExpired(ctx)
			if err != nil {
				a.log.Warn().Err(err).Msg("purge expired messages")
				continue
			}
			if deleted > 0 {
				a.log.Debug().Int64("deleted", deleted).Msg("purged expired messages")
			}
		}
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
