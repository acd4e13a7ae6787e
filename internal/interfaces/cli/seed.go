package cli

import (
	"github.com/spf13/cobra"

	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres/repositories"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

func newSeedCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default deadline rules into an empty rule store",
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

			repo := repositories.NewPostgresRuleRepo(conn, logger)
			seeded, err := repo.SeedDefaultsIfEmpty(cmd.Context())
			if err != nil {
				return err
			}
			if seeded == 0 {
				logger.Info("rule store already populated, nothing seeded")
				return nil
			}
			logger.Info("default rules seeded", logging.Int("count", seeded))
			return nil
		},
	}
}
