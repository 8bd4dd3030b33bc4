package main

import (
	"fmt"

	"archmap/backend/internal/schema"

	"github.com/spf13/cobra"
)

var seedForce bool

// seedCmd loads the sample landscape
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample applications and flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		repo, _, closeFn := openRepository()
		defer closeFn()

		result, err := schema.Seed(ctx, repo, seedForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Skipped {
			Warn.Fprintln(out, "Graph already has applications. Use --force to add missing samples.")
			return nil
		}
		fmt.Fprintf(out, "%s Created %d applications and %d flows\n", StatusIcon(true), result.Applications, result.Flows)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even if the graph is not empty")
}
