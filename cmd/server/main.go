// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/WarungWareg/internal/api/auth"
	"github.com/codr1/WarungWareg/internal/api/dashboard"
	"github.com/codr1/WarungWareg/internal/api/menu"
	"github.com/codr1/WarungWareg/internal/api/settings"
	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/db"
	"github.com/codr1/WarungWareg/internal/email"
	"github.com/codr1/WarungWareg/internal/ratelimit"
	"github.com/codr1/WarungWareg/internal/scheduler"
	"github.com/codr1/WarungWareg/internal/session"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// app holds the long-lived dependencies main has to close on shutdown.
type app struct {
	database *db.DB
	store    *session.Store
	sched    *scheduler.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := session.NewStore(database.DB, cfg.App.SecretKey, session.Options{
		TTL:          cfg.Session.TTL,
		SecureCookie: !cfg.IsDevelopment(),
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("create session store: %w", err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil)
	limiter := ratelimit.New(ratelimit.Config{
		MaxFailures:       cfg.RateLimit.LoginMaxAttempts,
		Lockout:           cfg.RateLimit.LoginLockout,
		MaxLockout:        cfg.RateLimit.LoginMaxLockout,
		LoginIPPerHour:    cfg.RateLimit.LoginMaxIPPerHour,
		RegisterIPPerHour: cfg.RateLimit.RegisterMaxPerHour,
	})

	auth.InitHandlers(client, store, limiter, cfg)
	dashboard.InitHandlers(client, cfg)
	menu.InitHandlers(client, cfg)
	settings.InitHandlers(client, cfg)

	a := &app{database: database, store: store}
	sched, err := newScheduler(ctx, cfg, store, client)
	if err != nil {
		a.close()
		return nil, err
	}
	a.sched = sched
	return a, nil
}

func newScheduler(ctx context.Context, cfg *config.Config, store *session.Store, client *backend.Client) (*scheduler.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := scheduler.Init(loc); err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	sched, err := scheduler.ServiceInstance()
	if err != nil {
		return nil, err
	}

	if err := scheduler.RegisterSessionPurgeJob(sched, store, cfg.Session.PurgeCron); err != nil {
		return nil, err
	}

	if !cfg.Digest.Enabled {
		log.Info().Msg("Revenue digest disabled")
		return sched, nil
	}
	sender, err := email.NewSESClient(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("create email client: %w", err)
	}
	digest := scheduler.Digest{
		AppName:     cfg.App.Name,
		Recipient:   cfg.Digest.Recipient,
		Token:       cfg.Digest.APIToken,
		Location:    loc,
		LabelLayout: cfg.Dashboard.DateLabelLayout,
		Orders:      client,
		Sender:      sender,
	}
	if err := scheduler.RegisterDigestJob(sched, digest, cfg.Digest.Cron); err != nil {
		return nil, err
	}
	return sched, nil
}

func (a *app) close() {
	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.close()

	server := newServer(cfg, application.store)
	application.sched.Start()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().
			Int("port", cfg.App.Port).
			Str("backend", cfg.Backend.BaseURL).
			Str("environment", cfg.App.Environment).
			Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
