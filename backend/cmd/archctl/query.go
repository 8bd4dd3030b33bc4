package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"archmap/backend/internal/graph"
	"archmap/backend/pkg/errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	queryParams []string
	queryOutput string
)

// queryCmd runs one Cypher statement
var queryCmd = &cobra.Command{
	Use:   "query [cypher]",
	Short: "Run a Cypher statement",
	Long: `Run a Cypher statement against the graph and print the result rows.
Parameters are given as --param key=value; values are parsed as YAML scalars,
so --param limit=10 binds an integer and --param ids=[a,b] binds a list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(queryParams)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		repo, _, closeFn := openRepository()
		defer closeFn()

		start := time.Now()
		rows, err := repo.RunQuery(ctx, args[0], params)
		if err != nil {
			return fmt.Errorf("%s", errors.Message(err))
		}
		if err := writeRows(cmd.OutOrStdout(), rows, queryOutput); err != nil {
			return err
		}
		Subtle.Fprintf(cmd.ErrOrStderr(), "%d rows in %s\n", len(rows), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "table", "Output format: table, json or yaml")
}

// parseParams turns key=value pairs into query parameters
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationFailed(fmt.Sprintf("invalid parameter %q, expected key=value", pair), nil)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		params[key] = value
	}
	return params, nil
}

// writeRows prints rows in the requested format
func writeRows(w io.Writer, rows []graph.Row, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		// Go through JSON so keys match the API's field names.
		b, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		var plain any
		if err := json.Unmarshal(b, &plain); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(plain)
	case "table", "":
		if len(rows) == 0 {
			Warn.Fprintln(w, "(no rows)")
			return nil
		}
		headers, cells := resultTable(rows)
		printTable(w, headers, cells)
		return nil
	default:
		return errors.NewValidationFailed(fmt.Sprintf("unknown output format %q", format), nil)
	}
}
