package schema

import (
	"context"

	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// SeedRepository is what seeding needs from the graph repository
type SeedRepository interface {
	ListApplications(ctx context.Context) ([]graph.ApplicationSummary, error)
	CreateApplication(ctx context.Context, app graph.Application) (*graph.ApplicationSummary, error)
	CreateFlow(ctx context.Context, flow graph.Flow) (*graph.FlowRecord, error)
}

// SeedResult counts what a seed run created
type SeedResult struct {
	Skipped      bool
	Applications int
	Flows        int
}

type sampleApp struct {
	id, name, appType, hosting, criticality string
	processes                               []string
	owners, developers                      string
}

var sampleApps = []sampleApp{
	{"crm", "CRM", "Web Application", "Cloud", "High", []string{"Sales", "Customer Service"}, "Sales IT", `"Rossi, M.", jane.doe@example.com`},
	{"erp", "ERP", "Package", "On Premise", "Critical", []string{"Finance", "Procurement"}, "Finance IT", "Mario Bianchi"},
	{"wms", "WMS", "Web Application", "Hybrid", "High", []string{"Warehouse", "LTL / B2C"}, "Logistics IT", "Luigi Verdi, Anna Neri"},
	{"billing", "Billing", "Microservice", "Cloud", "Medium", []string{"Finance"}, "Finance IT", "Jane Doe"},
	{"portal", "Customer Portal", "Web Application", "Cloud", "Medium", []string{"Customer Service"}, "Digital", "Paolo Gialli"},
}

type sampleFlow struct {
	name, from, to, mode, protocol, format, frequency string
}

var sampleFlows = []sampleFlow{
	{"Orders", "crm", "erp", "Asynchronous", "topic:kafka", "JSON", "Real Time"},
	{"Invoices", "erp", "billing", "Synchronous", "REST", "JSON", "Daily"},
	{"Shipments", "erp", "wms", "Asynchronous", "SFTP", "CSV", "Hourly"},
	{"Stock Levels", "wms", "portal", "Synchronous", "REST", "JSON", "Real Time"},
	{"Customer Sync", "portal", "crm", "Synchronous", "SOAP", "XML", "Real Time"},
}

// SampleApplications returns the seed applications, encoded the way the
// application form stores them.
func SampleApplications() []graph.Application {
	apps := make([]graph.Application, 0, len(sampleApps))
	for _, s := range sampleApps {
		in := forms.NewApplicationInput()
		in.ApplicationID = "seed-" + s.id
		in.Name = s.name
		in.ApplicationType = s.appType
		in.Hosting = s.hosting
		in.Criticality = s.criticality
		in.Processes = s.processes
		in.Ownerships = s.owners
		in.InternalDevelopers = s.developers
		in.Description = "<p>" + s.name + " sample application</p>"
		apps = append(apps, forms.ApplicationFromInput(in))
	}
	return apps
}

// SampleFlows returns the seed flows between SampleApplications
func SampleFlows() []graph.Flow {
	flows := make([]graph.Flow, 0, len(sampleFlows))
	for _, s := range sampleFlows {
		in := forms.NewFlowInput()
		in.Name = s.name
		in.InitiatorApplication = "seed-" + s.from
		in.TargetApplication = "seed-" + s.to
		in.CommunicationMode = s.mode
		in.Protocol = s.protocol
		in.MessageFormat = s.format
		in.Frequency = s.frequency
		in.Labels = []string{"seed"}
		flows = append(flows, forms.FlowFromInput(in))
	}
	return flows
}

// Seed loads the sample landscape. A graph that already holds applications
// is left alone unless force is set; forced runs add only the sample
// applications that are missing, plus the flows between them.
func Seed(ctx context.Context, repo SeedRepository, force bool) (SeedResult, error) {
	log := logger.Named("seed")
	var result SeedResult

	existing, err := repo.ListApplications(ctx)
	if err != nil {
		return result, err
	}
	if len(existing) > 0 && !force {
		log.Info("Graph already has applications, skipping seed (use --force to add missing samples)",
			zap.Int("applications", len(existing)),
		)
		result.Skipped = true
		return result, nil
	}

	present := make(map[string]bool, len(existing))
	for _, summary := range existing {
		present[summary.Application.ApplicationID] = true
	}

	created := make(map[string]bool)
	for _, app := range SampleApplications() {
		if present[app.ApplicationID] {
			continue
		}
		if _, err := repo.CreateApplication(ctx, app); err != nil {
			return result, err
		}
		created[app.ApplicationID] = true
		result.Applications++
	}
	for _, flow := range SampleFlows() {
		if !created[flow.InitiatorApplication] || !created[flow.TargetApplication] {
			continue
		}
		if _, err := repo.CreateFlow(ctx, flow); err != nil {
			return result, err
		}
		result.Flows++
	}

	log.Info("Seed completed",
		zap.Int("applications", result.Applications),
		zap.Int("flows", result.Flows),
	)
	return result, nil
}
