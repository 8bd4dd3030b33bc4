package main

import (
	"fmt"

	"archmap/backend/internal/schema"

	"github.com/spf13/cobra"
)

var migrateForce bool

// migrateCmd applies the graph schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply constraints and indexes",
	Long:  `Create the uniqueness constraints on application_id and flow_id, the lookup and full-text indexes, and backfill defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		repo, _, closeFn := openRepository()
		defer closeFn()

		result, err := schema.NewMigrator(repo).Run(ctx, migrateForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Skipped {
			Warn.Fprintf(out, "Schema %s already applied. Use --force to reapply.\n", schema.Version)
			return nil
		}
		fmt.Fprintf(out, "%s Applied %s: %d statements", StatusIcon(result.Failed == 0), schema.Version, result.Statements)
		if result.Failed > 0 {
			Warn.Fprintf(out, " (%d failed, see log)", result.Failed)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "Reapply even if already recorded")
}
