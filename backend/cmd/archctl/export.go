package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"archmap/backend/internal/graph"
	"archmap/backend/internal/tables"

	"github.com/spf13/cobra"
)

// exportOptions select and order the exported rows
type exportOptions struct {
	filter string
	sort   string
	desc   bool
	out    string
}

var exportOpts exportOptions

// lister is what export reads from the repository
type lister interface {
	ListApplications(ctx context.Context) ([]graph.ApplicationSummary, error)
	ListFlows(ctx context.Context) ([]graph.FlowRecord, error)
}

// exportCmd writes a table as CSV
var exportCmd = &cobra.Command{
	Use:       "export [applications|flows]",
	Short:     "Export a table as CSV",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(tables.TableApplications), string(tables.TableFlows)},
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := tables.ParseTable(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		repo, _, closeFn := openRepository()
		defer closeFn()

		w := cmd.OutOrStdout()
		if exportOpts.out != "" && exportOpts.out != "-" {
			f, err := os.Create(exportOpts.out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		shown, err := runExport(ctx, repo, table, exportOpts, w)
		if err != nil {
			return err
		}
		if exportOpts.out != "" && exportOpts.out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %d %s to %s\n", StatusIcon(true), shown, table, exportOpts.out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.filter, "filter", "", "Case-insensitive text filter")
	exportCmd.Flags().StringVar(&exportOpts.sort, "sort", "name", "Column to sort by")
	exportCmd.Flags().BoolVar(&exportOpts.desc, "desc", false, "Sort descending")
	exportCmd.Flags().StringVarP(&exportOpts.out, "out", "o", "", "Output file (default stdout)")
}

// runExport writes the filtered, sorted table and returns the row count
func runExport(ctx context.Context, repo lister, table tables.Table, opts exportOptions, w io.Writer) (int, error) {
	var rows []tables.Record
	if table == tables.TableFlows {
		flows, err := repo.ListFlows(ctx)
		if err != nil {
			return 0, err
		}
		rows = tables.FlowRecords(flows)
	} else {
		apps, err := repo.ListApplications(ctx)
		if err != nil {
			return 0, err
		}
		rows = tables.ApplicationRecords(apps)
	}

	cfg := tables.SortConfig{Key: opts.sort, Direction: tables.Ascending}
	if opts.desc {
		cfg.Direction = tables.Descending
	}
	view := tables.BuildView(table, rows, opts.filter, cfg)
	if err := tables.WriteCSV(w, view); err != nil {
		return 0, err
	}
	return view.Shown, nil
}
