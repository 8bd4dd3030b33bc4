package schema

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"archmap/backend/internal/graph"
	"archmap/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu         sync.Mutex
	statements []string
	applied    bool
	failOn     string
}

func (r *recordingExecutor) RunQuery(ctx context.Context, query string, params map[string]any) ([]graph.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, query)

	switch {
	case strings.Contains(query, "MATCH (m:Migration"):
		if r.applied {
			return []graph.Row{{"applied_at": "2026-01-01T00:00:00Z"}}, nil
		}
		return nil, nil
	case strings.Contains(query, "MERGE (m:Migration"):
		r.applied = true
		return nil, nil
	case r.failOn != "" && strings.Contains(query, r.failOn):
		return nil, stderrors.New("unsupported")
	}
	return nil, nil
}

func TestSplitStatements(t *testing.T) {
	script := `
		// leading comment
		CREATE INDEX a IF NOT EXISTS FOR (n:A) ON (n.x); /* inline
		block */ CREATE INDEX b IF NOT EXISTS FOR (n:B) ON (n.y);
		;
	`
	assert.Equal(t, []string{
		"CREATE INDEX a IF NOT EXISTS FOR (n:A) ON (n.x)",
		"CREATE INDEX b IF NOT EXISTS FOR (n:B) ON (n.y)",
	}, SplitStatements(script))
	assert.Empty(t, SplitStatements("  // nothing here\n"))
}

func TestMigrations_CoverIdentifiers(t *testing.T) {
	var all []string
	for _, m := range Migrations() {
		all = append(all, SplitStatements(m.Script)...)
	}
	joined := strings.Join(all, "\n")
	assert.Contains(t, joined, "REQUIRE a.application_id IS UNIQUE")
	assert.Contains(t, joined, "REQUIRE f.flow_id IS UNIQUE")
}

func TestMigrator_RunThenSkip(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewMigrator(exec)

	result, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 7, result.Statements)
	assert.Zero(t, result.Failed)
	assert.True(t, exec.applied)

	again, err := m.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	forced, err := m.Run(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, forced.Skipped)
}

func TestMigrator_ContinuesPastFailures(t *testing.T) {
	exec := &recordingExecutor{failOn: "FULLTEXT"}
	result, err := NewMigrator(exec).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, exec.applied)
}

type seedRepo struct {
	apps    []graph.ApplicationSummary
	flows   []graph.Flow
	failApp string
}

func (s *seedRepo) ListApplications(ctx context.Context) ([]graph.ApplicationSummary, error) {
	return s.apps, nil
}

func (s *seedRepo) CreateApplication(ctx context.Context, app graph.Application) (*graph.ApplicationSummary, error) {
	if app.ApplicationID == s.failApp {
		return nil, errors.NewGraphQueryFailed("create_application", stderrors.New("boom"))
	}
	summary := graph.ApplicationSummary{ElementID: "n-" + app.ApplicationID, Application: app}
	s.apps = append(s.apps, summary)
	return &summary, nil
}

func (s *seedRepo) CreateFlow(ctx context.Context, flow graph.Flow) (*graph.FlowRecord, error) {
	s.flows = append(s.flows, flow)
	return &graph.FlowRecord{ElementID: "r-" + flow.FlowID, Flow: flow}, nil
}

func TestSampleApplications_UseFormEncoding(t *testing.T) {
	apps := SampleApplications()
	require.Len(t, apps, 5)
	assert.Equal(t, "seed-crm", apps[0].ApplicationID)
	assert.Equal(t, "Sales, Customer Service", apps[0].Processes)
	assert.Equal(t, `["Rossi, M.","jane.doe@example.com"]`, apps[0].InternalDevelopers)
	assert.True(t, apps[0].Active)
}

func TestSeed_EmptyGraph(t *testing.T) {
	repo := &seedRepo{}
	result, err := Seed(context.Background(), repo, false)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Applications: 5, Flows: 5}, result)
	assert.Equal(t, []string{"seed"}, repo.flows[0].Labels)
}

func TestSeed_SkipsPopulatedGraph(t *testing.T) {
	repo := &seedRepo{apps: []graph.ApplicationSummary{{Application: graph.Application{ApplicationID: "x"}}}}
	result, err := Seed(context.Background(), repo, false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, repo.flows)
}

func TestSeed_ForceAddsOnlyMissing(t *testing.T) {
	repo := &seedRepo{apps: []graph.ApplicationSummary{{Application: graph.Application{ApplicationID: "seed-crm"}}}}
	result, err := Seed(context.Background(), repo, true)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Applications)
	// Orders and Customer Sync touch the existing CRM.
	assert.Equal(t, 3, result.Flows)
}

func TestSeed_StopsOnError(t *testing.T) {
	repo := &seedRepo{failApp: "seed-wms"}
	result, err := Seed(context.Background(), repo, false)
	require.Error(t, err)
	assert.Equal(t, 2, result.Applications)
	assert.Zero(t, result.Flows)
}

type resetExecutor struct {
	statements []string
}

func (r *resetExecutor) RunQuery(ctx context.Context, query string, params map[string]any) ([]graph.Row, error) {
	r.statements = append(r.statements, query)
	switch {
	case strings.HasPrefix(query, "SHOW CONSTRAINTS"):
		return []graph.Row{{"name": "application_id_unique", "type": "UNIQUENESS"}}, nil
	case strings.HasPrefix(query, "SHOW INDEXES"):
		return []graph.Row{
			{"name": "application_name", "type": "RANGE"},
			{"name": "index_343aff4e", "type": "LOOKUP"},
		}, nil
	}
	return nil, nil
}

func TestReset(t *testing.T) {
	exec := &resetExecutor{}
	result, err := Reset(context.Background(), exec)
	require.NoError(t, err)
	assert.Equal(t, ResetResult{Constraints: 1, Indexes: 1}, result)

	assert.Contains(t, exec.statements[0], "DETACH DELETE n")
	assert.Contains(t, exec.statements, "DROP CONSTRAINT `application_id_unique` IF EXISTS")
	assert.Contains(t, exec.statements, "DROP INDEX `application_name` IF EXISTS")
	assert.NotContains(t, exec.statements, "DROP INDEX `index_343aff4e` IF EXISTS")
}
