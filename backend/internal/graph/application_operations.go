package graph

import (
	"context"

	"archmap/backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================================
// Application Operations
// ============================================================================

const createApplicationQuery = `
	CREATE (a:Application {
		application_id: $application_id,
		name: $name,
		description: $description,
		ownerships: $ownerships,
		application_type: $application_type,
		complexity: $complexity,
		criticality: $criticality,
		effort: $effort,
		processes: $processes,
		active: $active,
		internal_application_specialists: $internal_application_specialists,
		business_partner_business_contacts: $business_partner_business_contacts,
		business_contacts: $business_contacts,
		internal_developers: $internal_developers,
		hosting: $hosting,
		ams: $ams,
		bi: $bi,
		disaster_recovery: $disaster_recovery,
		user_license_type: $user_license_type,
		access_type: $access_type,
		sw_supplier: $sw_supplier,
		ams_expire_date: $ams_expire_date,
		ams_contacts_email: $ams_contacts_email,
		ams_contacts_phone: $ams_contacts_phone,
		ams_supplier: $ams_supplier,
		smes_factory: $smes_factory,
		ams_portal: $ams_portal,
		organization_family: $organization_family,
		links_to_documentation: $links_to_documentation,
		scope: $scope,
		ams_service: $ams_service,
		ams_type: $ams_type,
		decommission_date: $decommission_date,
		to_be_decommissioned: $to_be_decommissioned,
		notes: $notes,
		links_to_sharepoint_documentation: $links_to_sharepoint_documentation
	})
	RETURN a
`

const editApplicationQuery = `
	MATCH (a:Application { application_id: $application_id })
	SET
		a.name = $name,
		a.description = $description,
		a.ownerships = $ownerships,
		a.application_type = $application_type,
		a.complexity = $complexity,
		a.criticality = $criticality,
		a.effort = $effort,
		a.processes = $processes,
		a.active = $active,
		a.internal_application_specialists = $internal_application_specialists,
		a.business_partner_business_contacts = $business_partner_business_contacts,
		a.business_contacts = $business_contacts,
		a.internal_developers = $internal_developers,
		a.hosting = $hosting,
		a.ams = $ams,
		a.bi = $bi,
		a.disaster_recovery = $disaster_recovery,
		a.user_license_type = $user_license_type,
		a.access_type = $access_type,
		a.sw_supplier = $sw_supplier,
		a.ams_expire_date = $ams_expire_date,
		a.ams_contacts_email = $ams_contacts_email,
		a.ams_contacts_phone = $ams_contacts_phone,
		a.ams_supplier = $ams_supplier,
		a.smes_factory = $smes_factory,
		a.ams_portal = $ams_portal,
		a.organization_family = $organization_family,
		a.links_to_documentation = $links_to_documentation,
		a.scope = $scope,
		a.ams_service = $ams_service,
		a.ams_type = $ams_type,
		a.decommission_date = $decommission_date,
		a.to_be_decommissioned = $to_be_decommissioned,
		a.notes = $notes,
		a.links_to_sharepoint_documentation = $links_to_sharepoint_documentation
	RETURN a
`

// CreateApplication creates an Application node. An empty ApplicationID is
// replaced by a random UUID.
func (r *Repository) CreateApplication(ctx context.Context, app Application) (*ApplicationSummary, error) {
	if app.ApplicationID == "" {
		app.ApplicationID = uuid.NewString()
	}

	rows, err := r.gateway.run(ctx, "create_application", createApplicationQuery, app.params())
	if err != nil {
		return nil, err
	}
	summary, ok := applicationFromRows(rows, "a")
	if !ok {
		return nil, errors.NewGraphQueryFailed("create_application", nil)
	}

	r.logger.Info("Application created",
		zap.String("application_id", app.ApplicationID),
		zap.String("name", app.Name),
	)
	return summary, nil
}

// GetApplication fetches one Application by id.
func (r *Repository) GetApplication(ctx context.Context, applicationID string) (*ApplicationSummary, error) {
	query := `
		MATCH (a:Application { application_id: $application_id })
		OPTIONAL MATCH (a)-[r]-()
		RETURN a, COUNT(r) > 0 AS hasRelations
	`
	rows, err := r.gateway.run(ctx, "get_application", query, map[string]any{
		"application_id": applicationID,
	})
	if err != nil {
		return nil, err
	}
	summary, ok := applicationFromRows(rows, "a")
	if !ok {
		return nil, errors.NewApplicationNotFound(applicationID)
	}
	summary.HasRelations = rows[0].Bool("hasRelations")
	return summary, nil
}

// EditApplication overwrites every field of an existing Application. An id
// that matches no node yields ErrApplicationNotFound and changes nothing.
func (r *Repository) EditApplication(ctx context.Context, app Application) (*ApplicationSummary, error) {
	rows, err := r.gateway.run(ctx, "edit_application", editApplicationQuery, app.params())
	if err != nil {
		return nil, err
	}
	summary, ok := applicationFromRows(rows, "a")
	if !ok {
		return nil, errors.NewApplicationNotFound(app.ApplicationID)
	}

	r.logger.Info("Application edited", zap.String("application_id", app.ApplicationID))
	return summary, nil
}

// DeleteApplication deletes the Application node. Neo4j refuses to delete a
// node that still has relationships; nothing cascades.
func (r *Repository) DeleteApplication(ctx context.Context, applicationID string) (int64, error) {
	query := `
		MATCH (a:Application { application_id: $application_id })
		DELETE a
		RETURN count(*) AS deleted
	`
	rows, err := r.gateway.run(ctx, "delete_application", query, map[string]any{
		"application_id": applicationID,
	})
	if err != nil {
		return 0, err
	}
	deleted := deletedCount(rows)
	if deleted == 0 {
		return 0, errors.NewApplicationNotFound(applicationID)
	}

	r.logger.Info("Application deleted", zap.String("application_id", applicationID))
	return deleted, nil
}

// ListApplications returns every Application with a flag telling whether it
// has any relationship.
func (r *Repository) ListApplications(ctx context.Context) ([]ApplicationSummary, error) {
	query := "MATCH (a:Application) OPTIONAL MATCH (a)-[r]-() RETURN a, COUNT(r) > 0 AS hasRelations"

	rows, err := r.gateway.run(ctx, "list_applications", query, nil)
	if err != nil {
		return nil, err
	}

	apps := make([]ApplicationSummary, 0, len(rows))
	for _, row := range rows {
		node, ok := row.Node("a")
		if !ok {
			continue
		}
		apps = append(apps, ApplicationSummary{
			ElementID:    node.ElementID,
			Application:  ApplicationFromProperties(node.Properties),
			HasRelations: row.Bool("hasRelations"),
			Properties:   node.Properties,
		})
	}
	return apps, nil
}

func applicationFromRows(rows []Row, key string) (*ApplicationSummary, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	node, ok := rows[0].Node(key)
	if !ok {
		return nil, false
	}
	return &ApplicationSummary{
		ElementID:   node.ElementID,
		Application: ApplicationFromProperties(node.Properties),
		Properties:  node.Properties,
	}, true
}

func deletedCount(rows []Row) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Int("deleted")
}
