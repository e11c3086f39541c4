// Package app assembles the clinic backend: configuration, database, schema,
// reference data and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"clinic/m/internal/api"
	"clinic/m/internal/auth"
	"clinic/m/internal/config"
	"clinic/m/internal/database"
	"clinic/m/internal/migrations"
	"clinic/m/internal/seed"
)

const shutdownTimeout = 15 * time.Second

// App is a bootstrapped clinic backend ready to serve.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	db      *sqlx.DB
	handler http.Handler
	Seeded  seed.Report
}

// Bootstrap connects to the database, creates the schema and seeds the
// reference rows. It is the part of New shared with the seed command.
func Bootstrap(ctx context.Context, cfg config.Config, log zerolog.Logger) (*sqlx.DB, seed.Report, error) {
	db, dialect, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, seed.Report{}, err
	}
	log.Info().Str("dialect", string(dialect)).Str("url", database.Redact(cfg.DatabaseURL)).Msg("connected to database")

	if err := migrations.Run(ctx, db, dialect); err != nil {
		db.Close()
		return nil, seed.Report{}, err
	}

	data, err := seed.Defaults(seed.Admin{Username: cfg.Admin.Username, Password: cfg.Admin.Password})
	if err != nil {
		db.Close()
		return nil, seed.Report{}, err
	}
	report, err := seed.Run(ctx, db, data, log.With().Str("component", "seed").Logger())
	if err != nil {
		db.Close()
		return nil, seed.Report{}, err
	}
	return db, report, nil
}

// New bootstraps the backend once and builds its router.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	for _, warning := range cfg.Warnings {
		log.Warn().Msg(warning)
	}
	if cfg.SecretKey == "dev-change-me" {
		log.Warn().Msg("SECRET_KEY is the development default; set it before exposing the server")
	}

	db, report, err := Bootstrap(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessions(cfg.SecretKey, cfg.Session)
	handler := api.New(db, sessions, log.With().Str("component", "http").Logger())

	return &App{
		cfg:     cfg,
		log:     log,
		db:      db,
		handler: handler.Router(),
		Seeded:  report,
	}, nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// the server down gracefully and closes the database.
func (a *App) Serve(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("clinic server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}
