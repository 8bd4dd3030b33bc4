package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"archmap/backend/internal/graph"
	"archmap/backend/internal/graphview"
	"archmap/backend/internal/tables"

	"github.com/fatih/color"
)

var (
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// StatusIcon returns a check or cross
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// printTable prints an aligned table with a dimmed header
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := ""
	sepLine := ""
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := ""
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// resultTable lays query rows out under the union of their keys, sorted
func resultTable(rows []graph.Row) ([]string, [][]string) {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = formatCell(row[h])
		}
		cells = append(cells, line)
	}
	return headers, cells
}

func formatCell(v any) string {
	switch val := v.(type) {
	case graph.Node:
		return fmt.Sprintf("(%s:%s)", graphview.NodeLabel(val.Properties), strings.Join(val.Labels, ":"))
	case graph.Relationship:
		if name, ok := val.Properties["name"].(string); ok && name != "" {
			return fmt.Sprintf("[:%s %s]", val.Type, name)
		}
		return fmt.Sprintf("[:%s]", val.Type)
	default:
		return tables.FormatValue(v)
	}
}
