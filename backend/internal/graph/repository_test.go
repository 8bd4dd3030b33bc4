package graph

import (
	"context"
	stderrors "errors"
	"os"
	"testing"
	"time"

	"archmap/backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleApplication(id, name string) Application {
	return Application{
		ApplicationID:                  id,
		Name:                           name,
		Description:                    "<p>Warehouse management</p>",
		Ownerships:                     "Logistics IT",
		ApplicationType:                "Web Application",
		Complexity:                     "Medium",
		Criticality:                    "High",
		Effort:                         "Low",
		Processes:                      "Finance, Sales",
		Active:                         true,
		InternalApplicationSpecialists: `["Mario Rossi","Jane Doe"]`,
		BusinessContacts:               `["Smith, J.","jane@x.com"]`,
		InternalDevelopers:             `[]`,
		Hosting:                        "Standalone",
		AMS:                            true,
		BI:                             "Partial BI",
		UserLicenseType:                "Licenza nominale",
		AccessType:                     "Utenza Applicativa, Password applicazione",
		AMSExpireDate:                  "2027-01-31",
		AMSContactsPhone:               `["+39 02 1234"]`,
		OrganizationFamily:             "Core Services",
		Scope:                          "TMS",
		AMSService:                     "On Demand",
		Notes:                          "<p>migrating</p>",
	}
}

func TestRepository_ApplicationRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewGateway(newMemoryGraph(), nil))

	app := sampleApplication("app-1", "SGA")
	created, err := repo.CreateApplication(ctx, app)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ElementID)

	fetched, err := repo.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, app, fetched.Application)
	assert.False(t, fetched.HasRelations)
}

func TestRepository_CreateApplicationIssuesID(t *testing.T) {
	repo := NewRepository(NewGateway(newMemoryGraph(), nil))

	created, err := repo.CreateApplication(context.Background(), Application{Name: "No id"})
	require.NoError(t, err)
	assert.Len(t, created.Application.ApplicationID, 36)
}

func TestRepository_EditMissingApplication(t *testing.T) {
	ctx := context.Background()
	graph := newMemoryGraph()
	repo := NewRepository(NewGateway(graph, nil))

	_, err := repo.EditApplication(ctx, sampleApplication("does-not-exist", "Ghost"))
	require.Error(t, err)

	var notFound *errors.ErrApplicationNotFound
	assert.True(t, stderrors.As(err, &notFound))
	assert.Empty(t, graph.apps)
}

func TestRepository_EditApplication(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewGateway(newMemoryGraph(), nil))

	_, err := repo.CreateApplication(ctx, sampleApplication("app-1", "SGA"))
	require.NoError(t, err)

	edited := sampleApplication("app-1", "SGA v2")
	edited.Active = false
	edited.AMSExpireDate = ""

	out, err := repo.EditApplication(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, edited, out.Application)
}

func TestRepository_FlowLifecycle(t *testing.T) {
	ctx := context.Background()
	graph := newMemoryGraph()
	repo := NewRepository(NewGateway(graph, nil))

	_, err := repo.CreateApplication(ctx, sampleApplication("app-1", "SGA"))
	require.NoError(t, err)
	_, err = repo.CreateApplication(ctx, sampleApplication("app-2", "TMS"))
	require.NoError(t, err)

	flow := Flow{
		FlowID:               "flow-1",
		Name:                 "orders",
		InitiatorApplication: "app-1",
		TargetApplication:    "app-2",
		Protocol:             "topic:kafka",
		Intent:               "write:publish",
		APIGateway:           true,
		Labels:               []string{"technical"},
	}
	created, err := repo.CreateFlow(ctx, flow)
	require.NoError(t, err)
	assert.Equal(t, flow, created.Flow)

	apps, err := repo.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	for _, a := range apps {
		assert.True(t, a.HasRelations, a.Application.ApplicationID)
	}

	flow.Notes = "moved to kafka"
	edited, err := repo.EditFlow(ctx, flow)
	require.NoError(t, err)
	assert.Equal(t, "moved to kafka", edited.Flow.Notes)

	deleted, err := repo.DeleteFlow(ctx, "flow-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Both endpoints survive the flow deletion.
	for _, id := range []string{"app-1", "app-2"} {
		got, err := repo.GetApplication(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.HasRelations)
	}

	flows, err := repo.ListFlows(ctx)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestRepository_CreateFlowMissingEndpoint(t *testing.T) {
	ctx := context.Background()
	graph := newMemoryGraph()
	repo := NewRepository(NewGateway(graph, nil))

	_, err := repo.CreateApplication(ctx, sampleApplication("app-1", "SGA"))
	require.NoError(t, err)

	_, err = repo.CreateFlow(ctx, Flow{InitiatorApplication: "app-1", TargetApplication: "missing"})
	var endpoints *errors.ErrFlowEndpointsNotFound
	require.True(t, stderrors.As(err, &endpoints))
	assert.Equal(t, "missing", endpoints.Target)
	assert.Empty(t, graph.flows)
}

func TestRepository_EditFlowRequiresSameEndpoints(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewGateway(newMemoryGraph(), nil))

	for _, id := range []string{"app-1", "app-2", "app-3"} {
		_, err := repo.CreateApplication(ctx, sampleApplication(id, id))
		require.NoError(t, err)
	}
	_, err := repo.CreateFlow(ctx, Flow{FlowID: "flow-1", InitiatorApplication: "app-1", TargetApplication: "app-2"})
	require.NoError(t, err)

	_, err = repo.EditFlow(ctx, Flow{FlowID: "flow-1", InitiatorApplication: "app-1", TargetApplication: "app-3"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestRepository_DeleteApplicationDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	graph := newMemoryGraph()
	repo := NewRepository(NewGateway(graph, nil))

	_, err := repo.CreateApplication(ctx, sampleApplication("app-1", "SGA"))
	require.NoError(t, err)
	_, err = repo.CreateApplication(ctx, sampleApplication("app-2", "TMS"))
	require.NoError(t, err)
	_, err = repo.CreateFlow(ctx, Flow{FlowID: "flow-1", InitiatorApplication: "app-1", TargetApplication: "app-2"})
	require.NoError(t, err)

	_, err = repo.DeleteApplication(ctx, "app-1")
	require.Error(t, err)
	assert.Contains(t, errors.Message(err), "still has relationships")
	assert.Len(t, graph.flows, 1)

	_, err = repo.DeleteFlow(ctx, "flow-1")
	require.NoError(t, err)
	deleted, err := repo.DeleteApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.DeleteApplication(ctx, "app-1")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestRepository_DeleteBindsIdentifierAsParameter(t *testing.T) {
	graph := newMemoryGraph()
	repo := NewRepository(NewGateway(graph, nil))

	_, _ = repo.DeleteFlow(context.Background(), `x" OR 1=1 //`)
	assert.NotContains(t, graph.lastQ, "OR 1=1")
	assert.Equal(t, `x" OR 1=1 //`, graph.lastPs["flow_id"])
}

// Integration tests require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD environment variables.
func TestRepository_Integration_ApplicationRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Skipf("Neo4j not reachable: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(NewGateway(NewNeo4jRunnerWithDriver(driver, "neo4j"), nil))
	appID := "test-app-" + time.Now().Format("20060102150405")

	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (a:Application {application_id: $id}) DETACH DELETE a", map[string]interface{}{"id": appID})
	}()

	app := sampleApplication(appID, "Integration")
	_, err = repo.CreateApplication(ctx, app)
	require.NoError(t, err)

	got, err := repo.GetApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, app, got.Application)
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := envOr("NEO4J_URI", "bolt://localhost:7687")
	user := envOr("NEO4J_USERNAME", "neo4j")
	password := envOr("NEO4J_PASSWORD", "password")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestRepository_ListKeepsStoredProperties(t *testing.T) {
	runner := &scriptedRunner{records: []*neo4j.Record{
		record(
			"a", dbtype.Node{ElementId: "4:a:1", Labels: []string{"Application"}, Props: map[string]any{"application_id": "a1", "name": "Legacy"}},
			"hasRelations", false,
		),
	}}
	repo := NewRepository(NewGateway(runner, nil))

	apps, err := repo.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "", apps[0].Application.Hosting)
	assert.NotContains(t, apps[0].Properties, "hosting")
	assert.Equal(t, "Legacy", apps[0].Properties["name"])
}

func TestRepository_ListFlowsKeepsStoredProperties(t *testing.T) {
	runner := &scriptedRunner{records: []*neo4j.Record{
		record("r", dbtype.Relationship{ElementId: "5:r:1", Type: "flow", Props: map[string]any{"flow_id": "flow-1"}}),
	}}
	repo := NewRepository(NewGateway(runner, nil))

	flows, err := repo.ListFlows(context.Background())
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "flow-1", flows[0].Flow.FlowID)
	assert.Equal(t, map[string]any{"flow_id": "flow-1"}, flows[0].Properties)
}
