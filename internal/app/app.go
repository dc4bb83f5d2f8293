// Package app wires the accounts service together and runs it until its
// context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Wang-tianhao/vibrant-accounts/internal/accounts"
	"github.com/Wang-tianhao/vibrant-accounts/internal/api"
	"github.com/Wang-tianhao/vibrant-accounts/internal/config"
	"github.com/Wang-tianhao/vibrant-accounts/internal/password"
	"github.com/Wang-tianhao/vibrant-accounts/internal/storage"
	"github.com/Wang-tianhao/vibrant-accounts/jwtauth"
)

type App struct {
	config *config.Config
	logger zerolog.Logger
	db     *sqlx.DB
	server *http.Server
}

// New opens and migrates the database and builds the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := storage.RunMigrations(ctx, db.DB, cfg.Database.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	tokens, err := jwtauth.NewConfig(
		jwtauth.WithHS256([]byte(cfg.JWT.Secret)),
		jwtauth.WithLogger(logger.With().Str("component", "jwtauth").Logger()),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("jwt config error: %w", err)
	}

	store := storage.NewUserStore(db)
	hashing := password.NewPool(password.NewHasher(), cfg.Hashing.Workers)
	service := accounts.NewService(store, hashing, logger)

	router := api.NewRouter(api.RouterConfig{
		Handler:        api.NewHandler(service, jwtauth.NewIssuer(tokens), store, logger),
		Gate:           jwtauth.NewGate(tokens),
		Logger:         logger,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.ListenHost, strconv.Itoa(cfg.HTTP.ListenPort)),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// the server down gracefully and closes the database.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", a.server.Addr).Msg("starting REST API listener")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
		defer cancel()

		a.logger.Info().Msg("shutting down")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
