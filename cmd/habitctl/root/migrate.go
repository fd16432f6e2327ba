package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"habitledger/internal/repository"
	"habitledger/pkg/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create routines, habits, habit_completions and outbox tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			pool, err := db.NewConnection(cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
