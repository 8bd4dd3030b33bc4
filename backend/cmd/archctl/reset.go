package main

import (
	"bufio"
	"fmt"
	"strings"

	"archmap/backend/internal/schema"

	"github.com/spf13/cobra"
)

var (
	resetYes  bool
	resetSeed bool
)

// resetCmd wipes the landscape and its schema
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all applications and flows, then reapply the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !resetYes {
			Warn.Fprintln(out, "This will DELETE ALL applications and flows. This action cannot be undone.")
			fmt.Fprint(out, "Are you sure you want to continue? (yes/no): ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if !confirmed(answer) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		repo, _, closeFn := openRepository()
		defer closeFn()

		dropped, err := schema.Reset(ctx, repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Deleted data, dropped %d constraints and %d indexes\n", StatusIcon(true), dropped.Constraints, dropped.Indexes)

		migrated, err := schema.NewMigrator(repo).Run(ctx, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s Applied %s\n", StatusIcon(migrated.Failed == 0), schema.Version)

		if resetSeed {
			seeded, err := schema.Seed(ctx, repo, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Created %d applications and %d flows\n", StatusIcon(true), seeded.Applications, seeded.Flows)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	resetCmd.Flags().BoolVar(&resetSeed, "seed", false, "Load the sample landscape afterwards")
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	}
	return false
}
