package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lavanderia/internal/database"
	"lavanderia/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(db)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			slog.Info("schema up to date", "version", v)
			return checkCounters(cmd.Context(), store.NewCounterStore(db))
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample articles and clients into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Seed(db)
		},
	}
}
