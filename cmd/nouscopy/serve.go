package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/api"
	"github.com/nouscopy/nouscopy/internal/auth"
	"github.com/nouscopy/nouscopy/internal/competitor"
	"github.com/nouscopy/nouscopy/internal/config"
	"github.com/nouscopy/nouscopy/internal/generate"
	"github.com/nouscopy/nouscopy/internal/ratelimit"
	"github.com/nouscopy/nouscopy/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web app and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, flags.dataDir)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, dataDir string) error {
	db, err := openDatabase(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db)

	if n, err := store.DeleteExpiredSessions(ctx, time.Now()); err != nil {
		slog.Warn("failed to delete expired sessions", "error", err)
	} else if n > 0 {
		slog.Info("deleted expired sessions", "count", n)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		slog.Warn("no jwt_secret configured, sessions will not survive a restart")
	}
	authSvc := auth.NewService(store, secret, cfg.Auth.SessionTTL())
	unsubscribe := authSvc.Subscribe(func(ev auth.Event) {
		slog.Info("session changed", "event", string(ev.Type), "user_id", ev.User.ID)
	})
	defer unsubscribe()

	opts := generate.Options{
		MaxQuantity:     cfg.Generation.MaxQuantity,
		DefaultDuration: cfg.Generation.DefaultDurationSeconds,
	}

	limiter, err := ratelimit.New(ctx, cfg.Redis.URL, cfg.Redis.GeneratePerMinute, cfg.Redis.Burst)
	if err != nil {
		return fmt.Errorf("connecting rate limiter: %w", err)
	}
	if limiter != nil {
		defer limiter.Close()
		opts.Limiter = limiter
		slog.Info("generation rate limit enabled", "per_minute", cfg.Redis.GeneratePerMinute, "burst", cfg.Redis.Burst)
	}

	// Without an API key AI features are disabled and copies come from
	// templates.
	if cfg.AI.APIKey != "" {
		provider, err := ai.NewProvider(ai.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			Timeout:  cfg.AI.Timeout(),
		})
		if err != nil {
			return fmt.Errorf("creating AI provider: %w", err)
		}
		opts.Writer = ai.NewWriter(provider, cfg.AI.Model)
		slog.Info("AI provider configured", "provider", provider.Name(), "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, AI features will be disabled")
	}

	router := api.NewRouter(api.Deps{
		Store:       store,
		Auth:        authSvc,
		Generator:   generate.NewService(store, opts),
		Importer:    competitor.NewImporter(0),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.Server.AutoOpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser("http://" + srv.Addr)
		}()
	}

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// randomSecret returns a 64 character hex secret.
func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
