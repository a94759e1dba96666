package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lavanderia/internal/code"
	"lavanderia/internal/config"
	"lavanderia/internal/database"
	"lavanderia/internal/store"
)

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "lavanderia",
		Short:         "Laundry order management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(os.Getenv("APP_ENV"), debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// setupLogger installs the default slog logger: text in development,
// JSON everywhere else.
func setupLogger(env string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if env == "" || env == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openDB loads configuration and returns a migrated connection pool.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}

// checkCounters fails unless every code kind has its counter row, and logs
// the value each will hand out next.
func checkCounters(ctx context.Context, counters *store.CounterStore) error {
	for _, k := range code.Kinds() {
		next, err := counters.Peek(ctx, k)
		if err != nil {
			return fmt.Errorf("counter %s: %w", k, err)
		}
		slog.Info("counter ready", "kind", string(k), "next", next)
	}
	return nil
}
