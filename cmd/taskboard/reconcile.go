package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskboard-api/internal/app"
	"taskboard-api/internal/database"
	"taskboard-api/internal/job"
	"taskboard-api/internal/repository"
)

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair index gaps and stale counts once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := app.OpenDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			fixed, err := job.NewReconcileJob(repository.NewReconcileRepository(db), nil, logger).Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows repaired\n", fixed)
			return nil
		},
	}
}
