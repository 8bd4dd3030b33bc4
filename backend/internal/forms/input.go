package forms

import (
	"encoding/json"
	"regexp"
	"strings"

	"archmap/backend/internal/graph"

	"github.com/google/uuid"
)

// ============================================================================
// Payloads
// ============================================================================

// ApplicationInput is the application form payload. Multi-selects arrive as
// lists; contact-like fields arrive as comma-separated text.
type ApplicationInput struct {
	ApplicationID                   string   `json:"application_id"`
	Name                            string   `json:"name"`
	Description                     string   `json:"description"`
	Ownerships                      string   `json:"ownerships" binding:"omitempty,csvlist"`
	ApplicationType                 string   `json:"application_type"`
	Complexity                      string   `json:"complexity"`
	Criticality                     string   `json:"criticality"`
	Effort                          string   `json:"effort"`
	Processes                       []string `json:"processes"`
	Active                          bool     `json:"active"`
	InternalApplicationSpecialists  string   `json:"internal_application_specialists" binding:"omitempty,csvlist"`
	BusinessPartnerBusinessContacts string   `json:"business_partner_business_contacts" binding:"omitempty,csvlist"`
	BusinessContacts                string   `json:"business_contacts" binding:"omitempty,csvlist"`
	InternalDevelopers              string   `json:"internal_developers" binding:"omitempty,csvlist"`
	Hosting                         string   `json:"hosting"`
	AMS                             bool     `json:"ams"`
	BI                              string   `json:"bi"`
	DisasterRecovery                bool     `json:"disaster_recovery"`
	UserLicenseType                 string   `json:"user_license_type"`
	AccessType                      []string `json:"access_type"`
	SWSupplier                      string   `json:"sw_supplier"`
	AMSExpireDate                   string   `json:"ams_expire_date"`
	AMSContactsEmail                string   `json:"ams_contacts_email" binding:"omitempty,csvlist"`
	AMSContactsPhone                string   `json:"ams_contacts_phone" binding:"omitempty,csvlist"`
	AMSSupplier                     string   `json:"ams_supplier"`
	SMEsFactory                     string   `json:"smes_factory" binding:"omitempty,csvlist"`
	AMSPortal                       string   `json:"ams_portal"`
	OrganizationFamily              []string `json:"organization_family"`
	LinksToDocumentation            string   `json:"links_to_documentation"`
	Scope                           string   `json:"scope"`
	AMSService                      string   `json:"ams_service"`
	AMSType                         string   `json:"ams_type"`
	DecommissionDate                string   `json:"decommission_date"`
	ToBeDecommissioned              bool     `json:"to_be_decommissioned"`
	Notes                           string   `json:"notes"`
	LinksToSharepointDocumentation  string   `json:"links_to_sharepoint_documentation" binding:"omitempty,csvlist"`
}

// FlowInput is the flow form payload
type FlowInput struct {
	FlowID                    string   `json:"flow_id"`
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	InitiatorApplication      string   `json:"initiator_application" binding:"required"`
	TargetApplication         string   `json:"target_application" binding:"required"`
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

// DrawingInput is the save-drawing form payload
type DrawingInput struct {
	Filename string          `json:"filename" binding:"required"`
	UserID   string          `json:"user_id"`
	Snapshot json.RawMessage `json:"snapshot" binding:"required"`
	Version  int             `json:"version"`
}

// NewApplicationInput returns the values a blank application form starts with
func NewApplicationInput() ApplicationInput {
	return ApplicationInput{
		ApplicationID:      uuid.NewString(),
		ApplicationType:    "Web Application",
		Active:             true,
		AMSService:         "No",
		Criticality:        "Medium",
		Complexity:         "Medium",
		Effort:             "Medium",
		Processes:          []string{},
		AccessType:         []string{},
		OrganizationFamily: []string{},
	}
}

// NewFlowInput returns the values a blank flow form starts with
func NewFlowInput() FlowInput {
	return FlowInput{
		FlowID: uuid.NewString(),
		Labels: []string{},
	}
}

// ============================================================================
// List encodings
// ============================================================================

// csvItemPattern captures one item: group 1 for quoted, group 2 for bare.
var csvItemPattern = regexp.MustCompile(`"([^"]+)"|([^",]+)`)

// SplitCSV splits a comma-separated list into trimmed, unquoted, non-empty
// items. Quoted items may contain commas.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	if !IsValidCSV(s) {
		return splitPlain(s)
	}

	items := []string{}
	for _, m := range csvItemPattern.FindAllStringSubmatch(s, -1) {
		item := m[2]
		if m[1] != "" {
			item = m[1]
		}
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func splitPlain(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// JoinCSV is the inverse of SplitCSV: items containing a comma are quoted
func JoinCSV(items []string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if strings.Contains(item, ",") {
			item = `"` + item + `"`
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, ", ")
}

// EncodeList stores a list as a JSON array string
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// DecodeList reads a JSON array string. Values that are not JSON arrays are
// treated as comma-separated text.
func DecodeList(s string) []string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return items
		}
	}
	return SplitCSV(s)
}

func joinSelect(values []string) string {
	return strings.Join(values, ", ")
}

func splitSelect(s string) []string {
	return splitPlain(s)
}

// ============================================================================
// Application transforms
// ============================================================================

// ApplicationFromInput converts a submitted form into the stored shape.
// Multi-selects become ", "-joined strings and contact fields become JSON
// arrays. Ownerships and SharePoint links keep their typed text.
func ApplicationFromInput(in ApplicationInput) graph.Application {
	return graph.Application{
		ApplicationID:                   strings.TrimSpace(in.ApplicationID),
		Name:                            strings.TrimSpace(in.Name),
		Description:                     in.Description,
		Ownerships:                      strings.TrimSpace(in.Ownerships),
		ApplicationType:                 in.ApplicationType,
		Complexity:                      in.Complexity,
		Criticality:                     in.Criticality,
		Effort:                          in.Effort,
		Processes:                       joinSelect(in.Processes),
		Active:                          in.Active,
		InternalApplicationSpecialists:  EncodeList(SplitCSV(in.InternalApplicationSpecialists)),
		BusinessPartnerBusinessContacts: EncodeList(SplitCSV(in.BusinessPartnerBusinessContacts)),
		BusinessContacts:                EncodeList(SplitCSV(in.BusinessContacts)),
		InternalDevelopers:              EncodeList(SplitCSV(in.InternalDevelopers)),
		Hosting:                         in.Hosting,
		AMS:                             in.AMS,
		BI:                              in.BI,
		DisasterRecovery:                in.DisasterRecovery,
		UserLicenseType:                 in.UserLicenseType,
		AccessType:                      joinSelect(in.AccessType),
		SWSupplier:                      in.SWSupplier,
		AMSExpireDate:                   in.AMSExpireDate,
		AMSContactsEmail:                EncodeList(SplitCSV(in.AMSContactsEmail)),
		AMSContactsPhone:                EncodeList(SplitCSV(in.AMSContactsPhone)),
		AMSSupplier:                     in.AMSSupplier,
		SMEsFactory:                     EncodeList(SplitCSV(in.SMEsFactory)),
		AMSPortal:                       in.AMSPortal,
		OrganizationFamily:              joinSelect(in.OrganizationFamily),
		LinksToDocumentation:            in.LinksToDocumentation,
		Scope:                           in.Scope,
		AMSService:                      in.AMSService,
		AMSType:                         in.AMSType,
		DecommissionDate:                in.DecommissionDate,
		ToBeDecommissioned:              in.ToBeDecommissioned,
		Notes:                           in.Notes,
		LinksToSharepointDocumentation:  strings.TrimSpace(in.LinksToSharepointDocumentation),
	}
}

// ApplicationFormValues converts a stored application back into form values
// for the edit dialog.
func ApplicationFormValues(app graph.Application) ApplicationInput {
	return ApplicationInput{
		ApplicationID:                   app.ApplicationID,
		Name:                            app.Name,
		Description:                     app.Description,
		Ownerships:                      app.Ownerships,
		ApplicationType:                 app.ApplicationType,
		Complexity:                      app.Complexity,
		Criticality:                     app.Criticality,
		Effort:                          app.Effort,
		Processes:                       splitSelect(app.Processes),
		Active:                          app.Active,
		InternalApplicationSpecialists:  JoinCSV(DecodeList(app.InternalApplicationSpecialists)),
		BusinessPartnerBusinessContacts: JoinCSV(DecodeList(app.BusinessPartnerBusinessContacts)),
		BusinessContacts:                JoinCSV(DecodeList(app.BusinessContacts)),
		InternalDevelopers:              JoinCSV(DecodeList(app.InternalDevelopers)),
		Hosting:                         app.Hosting,
		AMS:                             app.AMS,
		BI:                              app.BI,
		DisasterRecovery:                app.DisasterRecovery,
		UserLicenseType:                 app.UserLicenseType,
		AccessType:                      splitSelect(app.AccessType),
		SWSupplier:                      app.SWSupplier,
		AMSExpireDate:                   app.AMSExpireDate,
		AMSContactsEmail:                JoinCSV(DecodeList(app.AMSContactsEmail)),
		AMSContactsPhone:                JoinCSV(DecodeList(app.AMSContactsPhone)),
		AMSSupplier:                     app.AMSSupplier,
		SMEsFactory:                     JoinCSV(DecodeList(app.SMEsFactory)),
		AMSPortal:                       app.AMSPortal,
		OrganizationFamily:              splitSelect(app.OrganizationFamily),
		LinksToDocumentation:            app.LinksToDocumentation,
		Scope:                           app.Scope,
		AMSService:                      app.AMSService,
		AMSType:                         app.AMSType,
		DecommissionDate:                app.DecommissionDate,
		ToBeDecommissioned:              app.ToBeDecommissioned,
		Notes:                           app.Notes,
		LinksToSharepointDocumentation:  app.LinksToSharepointDocumentation,
	}
}

// ============================================================================
// Flow transforms
// ============================================================================

// FlowFromInput converts a submitted flow form into the stored shape
func FlowFromInput(in FlowInput) graph.Flow {
	labels := in.Labels
	if labels == nil {
		labels = []string{}
	}
	return graph.Flow{
		FlowID:                    strings.TrimSpace(in.FlowID),
		Name:                      strings.TrimSpace(in.Name),
		Description:               in.Description,
		InitiatorApplication:      strings.TrimSpace(in.InitiatorApplication),
		TargetApplication:         strings.TrimSpace(in.TargetApplication),
		CommunicationMode:         in.CommunicationMode,
		Intent:                    in.Intent,
		MessageFormat:             in.MessageFormat,
		DataFlow:                  in.DataFlow,
		Protocol:                  in.Protocol,
		Frequency:                 in.Frequency,
		EstimatedCallsPerDay:      in.EstimatedCallsPerDay,
		AverageExecutionTimeInSec: in.AverageExecutionTimeInSec,
		AverageMessageSizeInKB:    in.AverageMessageSizeInKB,
		APIGateway:                in.APIGateway,
		ReleaseDate:               in.ReleaseDate,
		Notes:                     in.Notes,
		Labels:                    labels,
	}
}

// FlowFormValues converts a stored flow back into form values
func FlowFormValues(f graph.Flow) FlowInput {
	return FlowInput{
		FlowID:                    f.FlowID,
		Name:                      f.Name,
		Description:               f.Description,
		InitiatorApplication:      f.InitiatorApplication,
		TargetApplication:         f.TargetApplication,
		CommunicationMode:         f.CommunicationMode,
		Intent:                    f.Intent,
		MessageFormat:             f.MessageFormat,
		DataFlow:                  f.DataFlow,
		Protocol:                  f.Protocol,
		Frequency:                 f.Frequency,
		EstimatedCallsPerDay:      f.EstimatedCallsPerDay,
		AverageExecutionTimeInSec: f.AverageExecutionTimeInSec,
		AverageMessageSizeInKB:    f.AverageMessageSizeInKB,
		APIGateway:                f.APIGateway,
		ReleaseDate:               f.ReleaseDate,
		Notes:                     f.Notes,
		Labels:                    f.Labels,
	}
}
