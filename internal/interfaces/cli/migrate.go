package cli

import (
	"github.com/spf13/cobra"

	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}

			conn, err := postgres.NewConnection(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.RunMigrations(); err != nil {
				return err
			}
			logger.Info("migrations applied", logging.String("path", cfg.Database.MigrationPath))
			return nil
		},
	}
}
