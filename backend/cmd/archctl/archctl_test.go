package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"archmap/backend/internal/graph"
	"archmap/backend/internal/tables"
	"archmap/backend/pkg/errors"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{
		"limit=10",
		"name=CRM",
		"active=true",
		"ids=[a, b]",
		"empty=",
		"expr=a=b",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, params["limit"])
	assert.Equal(t, "CRM", params["name"])
	assert.Equal(t, true, params["active"])
	assert.Equal(t, []any{"a", "b"}, params["ids"])
	assert.Equal(t, "", params["empty"])
	assert.Equal(t, "a=b", params["expr"])
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := parseParams([]string{"novalue"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	_, err = parseParams([]string{"=1"})
	assert.Error(t, err)
}

func sampleRows() []graph.Row {
	crm := graph.Node{ElementID: "n1", Labels: []string{"Application"}, Properties: map[string]any{"name": "CRM"}}
	erp := graph.Node{ElementID: "n2", Labels: []string{"Application"}, Properties: map[string]any{}}
	rel := graph.Relationship{ElementID: "r1", Type: "flow", StartNodeElementID: "n1", EndNodeElementID: "n2", Properties: map[string]any{"name": "Orders"}}
	return []graph.Row{
		{"a": crm, "e": rel, "b": erp},
		{"a": crm, "count": int64(3)},
	}
}

func TestResultTable(t *testing.T) {
	headers, cells := resultTable(sampleRows())
	assert.Equal(t, []string{"a", "b", "count", "e"}, headers)
	assert.Equal(t, []string{"(CRM:Application)", "(Unnamed:Application)", "-", "[:flow Orders]"}, cells[0])
	assert.Equal(t, []string{"(CRM:Application)", "-", "3", "-"}, cells[1])
}

func TestWriteRows_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRows(&buf, sampleRows(), "table"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "a"))
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "[:flow Orders]")
}

func TestWriteRows_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRows(&buf, nil, "table"))
	assert.Equal(t, "(no rows)\n", buf.String())
}

func TestWriteRows_JSONAndYAML(t *testing.T) {
	rows := []graph.Row{{"name": "CRM", "n": 1}}

	var js bytes.Buffer
	require.NoError(t, writeRows(&js, rows, "json"))
	assert.JSONEq(t, `[{"name":"CRM","n":1}]`, js.String())

	var ym bytes.Buffer
	require.NoError(t, writeRows(&ym, rows, "yaml"))
	assert.True(t, strings.HasPrefix(ym.String(), "- "))
	assert.Contains(t, ym.String(), "name: CRM")

	err := writeRows(&ym, rows, "xml")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

type fakeLister struct {
	apps  []graph.ApplicationSummary
	flows []graph.FlowRecord
}

func (f fakeLister) ListApplications(context.Context) ([]graph.ApplicationSummary, error) {
	return f.apps, nil
}

func (f fakeLister) ListFlows(context.Context) ([]graph.FlowRecord, error) {
	return f.flows, nil
}

func TestRunExport(t *testing.T) {
	repo := fakeLister{
		apps: []graph.ApplicationSummary{
			{ElementID: "e1", Application: graph.Application{ApplicationID: "app-1", Name: "CRM", Hosting: "Cloud", Active: true}},
			{ElementID: "e2", Application: graph.Application{ApplicationID: "app-2", Name: "Billing", Hosting: "Cloud"}},
			{ElementID: "e3", Application: graph.Application{ApplicationID: "app-3", Name: "WMS", Hosting: "On Premise"}},
		},
	}

	var buf bytes.Buffer
	shown, err := runExport(context.Background(), repo, tables.TableApplications, exportOptions{filter: "cloud", sort: "name", desc: true}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, shown)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, tables.TableApplications.Columns(), records[0])
	assert.Equal(t, "CRM", records[1][1])
	assert.Equal(t, "Billing", records[2][1])
	assert.Equal(t, "Yes", records[1][5])
}

func TestRunExport_Flows(t *testing.T) {
	repo := fakeLister{
		flows: []graph.FlowRecord{
			{ElementID: "r1", Flow: graph.Flow{FlowID: "flow-1", Name: "Orders", Labels: []string{"seed", "sales"}}},
		},
	}

	var buf bytes.Buffer
	shown, err := runExport(context.Background(), repo, tables.TableFlows, exportOptions{sort: "name"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, shown)
	assert.Contains(t, buf.String(), "Orders")
}

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"query", "migrate", "seed", "export", "reset", "ping"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestConfirmed(t *testing.T) {
	assert.True(t, confirmed("yes\n"))
	assert.True(t, confirmed(" Y "))
	assert.False(t, confirmed("no\n"))
	assert.False(t, confirmed(""))
}
