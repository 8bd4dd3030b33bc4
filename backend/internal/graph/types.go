package graph

// ============================================================================
// Domain Types
// ============================================================================

// Application is a node describing one software system in the inventory.
// Multi-valued fields are stored as strings: contact-like fields hold a JSON
// array (`["a","b"]`), multi-select fields hold a ", "-joined list.
type Application struct {
	ApplicationID                   string `json:"application_id"`
	Name                            string `json:"name"`
	Description                     string `json:"description"`
	Ownerships                      string `json:"ownerships"`
	ApplicationType                 string `json:"application_type"`
	Complexity                      string `json:"complexity"`
	Criticality                     string `json:"criticality"`
	Effort                          string `json:"effort"`
	Processes                       string `json:"processes"`
	Active                          bool   `json:"active"`
	InternalApplicationSpecialists  string `json:"internal_application_specialists"`
	BusinessPartnerBusinessContacts string `json:"business_partner_business_contacts"`
	BusinessContacts                string `json:"business_contacts"`
	InternalDevelopers              string `json:"internal_developers"`
	Hosting                         string `json:"hosting"`
	AMS                             bool   `json:"ams"`
	BI                              string `json:"bi"`
	DisasterRecovery                bool   `json:"disaster_recovery"`
	UserLicenseType                 string `json:"user_license_type"`
	AccessType                      string `json:"access_type"`
	SWSupplier                      string `json:"sw_supplier"`
	AMSExpireDate                   string `json:"ams_expire_date"`
	AMSContactsEmail                string `json:"ams_contacts_email"`
	AMSContactsPhone                string `json:"ams_contacts_phone"`
	AMSSupplier                     string `json:"ams_supplier"`
	SMEsFactory                     string `json:"smes_factory"`
	AMSPortal                       string `json:"ams_portal"`
	OrganizationFamily              string `json:"organization_family"`
	LinksToDocumentation            string `json:"links_to_documentation"`
	Scope                           string `json:"scope"`
	AMSService                      string `json:"ams_service"`
	AMSType                         string `json:"ams_type"`
	DecommissionDate                string `json:"decommission_date"`
	ToBeDecommissioned              bool   `json:"to_be_decommissioned"`
	Notes                           string `json:"notes"`
	LinksToSharepointDocumentation  string `json:"links_to_sharepoint_documentation"`
}

// ApplicationSummary is one row of the application listing.
type ApplicationSummary struct {
	ElementID    string      `json:"element_id"`
	Application  Application `json:"application"`
	HasRelations bool        `json:"has_relations"`

	// Properties are the node's stored properties. Absent and null values
	// stay absent here, unlike in Application.
	Properties map[string]any `json:"-"`
}

// Flow is a directed integration exchange between two applications.
type Flow struct {
	FlowID                    string   `json:"flow_id"`
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	InitiatorApplication      string   `json:"initiator_application"`
	TargetApplication         string   `json:"target_application"`
	CommunicationMode         string   `json:"communication_mode"`
	Intent                    string   `json:"intent"`
	MessageFormat             string   `json:"message_format"`
	DataFlow                  string   `json:"data_flow"`
	Protocol                  string   `json:"protocol"`
	Frequency                 string   `json:"frequency"`
	EstimatedCallsPerDay      string   `json:"estimated_calls_per_day"`
	AverageExecutionTimeInSec string   `json:"average_execution_time_in_sec"`
	AverageMessageSizeInKB    string   `json:"average_message_size_in_kb"`
	APIGateway                bool     `json:"api_gateway"`
	ReleaseDate               string   `json:"release_date"`
	Notes                     string   `json:"notes"`
	Labels                    []string `json:"labels"`
}

// FlowRecord is one row of the flow listing.
type FlowRecord struct {
	ElementID string `json:"element_id"`
	Flow      Flow   `json:"flow"`

	// Properties are the relationship's stored properties
	Properties map[string]any `json:"-"`
}

// ============================================================================
// Plain Record Types
// ============================================================================

// Row is one result record mapped to plain values, keyed by the RETURN aliases.
type Row map[string]any

// Node is a graph node detached from the driver.
type Node struct {
	ElementID  string         `json:"elementId"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a graph relationship detached from the driver.
type Relationship struct {
	ElementID          string         `json:"elementId"`
	Type               string         `json:"type"`
	StartNodeElementID string         `json:"startNodeElementId"`
	EndNodeElementID   string         `json:"endNodeElementId"`
	Properties         map[string]any `json:"properties"`
}

// Path is a graph path detached from the driver.
type Path struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// Node returns the node stored under key.
func (r Row) Node(key string) (Node, bool) {
	n, ok := r[key].(Node)
	return n, ok
}

// Relationship returns the relationship stored under key.
func (r Row) Relationship(key string) (Relationship, bool) {
	rel, ok := r[key].(Relationship)
	return rel, ok
}

// Bool returns the boolean stored under key, false when absent.
func (r Row) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Int returns the integer stored under key, 0 when absent.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
