package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/go-kv-crud/internal/config"
	"github.com/deppfellow/go-kv-crud/internal/database"
	"github.com/deppfellow/go-kv-crud/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	var target int32

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded postgres migrations",
		Long: "Apply the embedded postgres migrations. The database settings\n" +
			"are read from the KVCRUD_DATABASE__* variables whatever the store driver.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log := logger.NewLogger(&cfg.Observability)

			if err := database.MigrateTo(cmd.Context(), &log, cfg, target); err != nil {
				log.Error().Err(err).Msg("migration failed")
				return err
			}
			return nil
		},
	}

	cmd.Flags().Int32Var(&target, "to", -1, "target schema version (-1 for latest, 0 to roll back everything)")
	return cmd
}
