package tables

import (
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/errors"
)

// Table names one of the two listings
type Table string

const (
	TableApplications Table = "applications"
	TableFlows        Table = "flows"
)

// IDKey is the record key every row carries its database element id under
const IDKey = "id"

var applicationColumns = []string{
	"application_id",
	"name",
	"description",
	"application_type",
	"ownerships",
	"active",
	"internal_developers",
	"hosting",
	"ams",
	"sw_supplier",
	"disaster_recovery",
	"user_license_type",
	"access_type",
	"ams_expire_date",
	"ams_contacts_email",
	"ams_contacts_phone",
	"ams_portal",
	"ams_service",
	"ams_type",
	"ams_supplier",
	"organization_family",
	"scope",
	"to_be_decommissioned",
	"decommission_date",
	"bi",
	"criticality",
	"complexity",
	"effort",
	"links_to_sharepoint_documentation",
	"links_to_documentation",
	"notes",
	"processes",
	"internal_application_specialists",
	"business_partner_business_contacts",
	"business_contacts",
	"smes_factory",
}

var flowColumns = []string{
	"flow_id",
	"name",
	"description",
	"communication_mode",
	"intent",
	"message_format",
	"data_flow",
	"protocol",
	"frequency",
	"estimated_calls_per_day",
	"average_execution_time_in_sec",
	"average_message_size_in_kb",
	"api_gateway",
	"release_date",
	"notes",
}

// ParseTable accepts "applications" or "flows"
func ParseTable(name string) (Table, error) {
	switch Table(name) {
	case TableApplications, TableFlows:
		return Table(name), nil
	}
	return "", errors.NewValidationFailed("unknown table", map[string]string{"table": name})
}

// Columns returns the displayed columns in display order
func (t Table) Columns() []string {
	if t == TableFlows {
		return append([]string(nil), flowColumns...)
	}
	return append([]string(nil), applicationColumns...)
}

// KeyColumn is the domain id column used to select a row
func (t Table) KeyColumn() string {
	if t == TableFlows {
		return "flow_id"
	}
	return "application_id"
}

// Record is one table row: the element's properties plus its element id.
// Properties the database holds as null are absent.
type Record map[string]any

// Key returns the row's domain id
func (r Record) Key(t Table) string {
	s, _ := r[t.KeyColumn()].(string)
	return s
}

func newRecord(elementID string, props map[string]any) Record {
	r := Record{IDKey: elementID}
	for k, v := range props {
		if v != nil {
			r[k] = v
		}
	}
	return r
}

// ApplicationRecords converts the repository listing into rows. Stored
// properties are used when present so missing fields stay missing.
func ApplicationRecords(apps []graph.ApplicationSummary) []Record {
	rows := make([]Record, 0, len(apps))
	for _, a := range apps {
		props := a.Properties
		if props == nil {
			props = a.Application.Properties()
		}
		rows = append(rows, newRecord(a.ElementID, props))
	}
	return rows
}

// FlowRecords converts the repository listing into rows
func FlowRecords(flows []graph.FlowRecord) []Record {
	rows := make([]Record, 0, len(flows))
	for _, f := range flows {
		props := f.Properties
		if props == nil {
			props = f.Flow.Properties()
		}
		rows = append(rows, newRecord(f.ElementID, props))
	}
	return rows
}
