// Command nouscopy serves the Nous.Copy web app and generates copies from
// the command line.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nouscopy/nouscopy/internal/config"
	"github.com/nouscopy/nouscopy/internal/storage"
)

func main() {
	// Variables already set in the environment win over .env.
	_ = godotenv.Load(".env")

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	dataDir    string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "nouscopy",
		Short:         "Marketing copy generator",
		Long:          `Nous.Copy writes hooks, bodies and calls to action from a marketing brief, with templates or an AI provider.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.toml", "path to config file")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "./data", "path to data directory")

	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(newMigrateCommand(flags))
	cmd.AddCommand(newGenerateCommand())

	return cmd
}

// loadConfig loads the configuration and installs the default logger.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	initLogger(cfg.Logging)
	return cfg, nil
}

// initLogger sets the default slog logger from the logging config.
func initLogger(cfg config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openDatabase opens the database in the data directory and applies
// pending migrations.
func openDatabase(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := storage.OpenDatabase(filepath.Join(dataDir, "nouscopy.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
