package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/repositories"
	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
	"github.com/desertthunder/agentes/internal/supabase"
	"github.com/desertthunder/agentes/internal/telemetry"
	"github.com/desertthunder/agentes/internal/web"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the web server until ctx is canceled, then shuts down gracefully.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	app, db, err := r.buildApp(ctx, config)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	srv := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	r.logger.Info("listening", "addr", srv.Addr, "url", config.Server.BaseURL, "store", config.Database.Driver)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(config.Server.BaseURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildApp wires the auth service, agent store and telemetry chosen by config.
// The returned database is nil unless the SQLite store is in use.
func (r *Runner) buildApp(ctx context.Context, config *shared.Config) (*web.App, *sql.DB, error) {
	factory := supabase.NewFactory(config.Supabase, server.NewCookieStore(config.Server.SecureCookies))

	var auth web.Authenticator
	if factory.Configured() {
		auth = supabase.NewAuthService(factory)
	} else {
		r.logger.Warn("supabase is not configured, sign-in is disabled",
			"missing", "NEXT_PUBLIC_SUPABASE_URL/NEXT_PUBLIC_SUPABASE_ANON_KEY")
	}
	if _, msg := factory.SafeAdmin(); msg != "" {
		r.logger.Debug("service-role client unavailable", "reason", msg)
	}

	agents, db, err := r.agentStore(ctx, config, factory)
	if err != nil {
		return nil, nil, err
	}

	reporter := telemetry.NewReporter(r.logger, r.analytics(config, db))
	app, err := web.New(web.Options{
		Config:   config,
		Auth:     auth,
		Agents:   agents,
		Reporter: reporter,
		Logger:   r.logger,
	})
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}
	return app, db, nil
}

func (r *Runner) agentStore(ctx context.Context, config *shared.Config, factory *supabase.Factory) (web.AgentStore, *sql.DB, error) {
	switch config.Database.Driver {
	case "", "sqlite":
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		if config.Database.Path != ":memory:" {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		}
		if err := shared.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		repo := repositories.NewAgentRepository(db)
		return func(*http.Request) (models.Repository[*models.Agent], error) { return repo, nil }, db, nil

	case "supabase":
		if !factory.Configured() {
			return nil, nil, fmt.Errorf("%w: database.driver = \"supabase\" needs the project URL and anon key",
				shared.ErrInvalidConfig)
		}
		return func(req *http.Request) (models.Repository[*models.Agent], error) {
			client, err := factory.ForRequest(req)
			if err != nil {
				return nil, err
			}
			return supabase.NewAgentStore(client), nil
		}, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown database driver %q", shared.ErrInvalidConfig, config.Database.Driver)
	}
}

// analytics forwards to the configured endpoint, falls back to the local error_events table, or discards.
func (r *Runner) analytics(config *shared.Config, db *sql.DB) telemetry.Analytics {
	switch {
	case config.Analytics.Endpoint != "":
		return telemetry.NewHTTPAnalytics(config.Analytics.Endpoint, config.Analytics.Rate, config.Analytics.Burst, nil)
	case db != nil:
		return telemetry.NewSQLAnalytics(db)
	default:
		return telemetry.NopAnalytics{}
	}
}
