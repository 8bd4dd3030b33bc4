package graph

import (
	"fmt"
	"strings"
)

// ============================================================================
// Property Helpers
// ============================================================================

func getStringFromMap(m map[string]any, key string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func getBoolFromMap(m map[string]any, key string) bool {
	val, ok := m[key]
	if !ok || val == nil {
		return false
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func getStringSliceFromMap(m map[string]any, key string) []string {
	val, ok := m[key]
	if !ok || val == nil {
		return []string{}
	}
	switch v := val.(type) {
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case []string:
		return v
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	}
	return []string{}
}

// nullable stores empty strings as null, the convention for optional dates.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNilLabels(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return labels
}

// ============================================================================
// Application <-> properties
// ============================================================================

func (a Application) params() map[string]any {
	return map[string]any{
		"application_id":                     a.ApplicationID,
		"name":                               a.Name,
		"description":                        a.Description,
		"ownerships":                         a.Ownerships,
		"application_type":                   a.ApplicationType,
		"complexity":                         a.Complexity,
		"criticality":                        a.Criticality,
		"effort":                             a.Effort,
		"processes":                          a.Processes,
		"active":                             a.Active,
		"internal_application_specialists":   a.InternalApplicationSpecialists,
		"business_partner_business_contacts": a.BusinessPartnerBusinessContacts,
		"business_contacts":                  a.BusinessContacts,
		"internal_developers":                a.InternalDevelopers,
		"hosting":                            a.Hosting,
		"ams":                                a.AMS,
		"bi":                                 a.BI,
		"disaster_recovery":                  a.DisasterRecovery,
		"user_license_type":                  a.UserLicenseType,
		"access_type":                        a.AccessType,
		"sw_supplier":                        a.SWSupplier,
		"ams_expire_date":                    nullable(a.AMSExpireDate),
		"ams_contacts_email":                 a.AMSContactsEmail,
		"ams_contacts_phone":                 a.AMSContactsPhone,
		"ams_supplier":                       a.AMSSupplier,
		"smes_factory":                       a.SMEsFactory,
		"ams_portal":                         a.AMSPortal,
		"organization_family":                a.OrganizationFamily,
		"links_to_documentation":             a.LinksToDocumentation,
		"scope":                              a.Scope,
		"ams_service":                        a.AMSService,
		"ams_type":                           a.AMSType,
		"decommission_date":                  nullable(a.DecommissionDate),
		"to_be_decommissioned":               a.ToBeDecommissioned,
		"notes":                              a.Notes,
		"links_to_sharepoint_documentation":  a.LinksToSharepointDocumentation,
	}
}

// Properties returns the application as node properties, as written to the
// database.
func (a Application) Properties() map[string]any {
	return a.params()
}

// ApplicationFromProperties maps node properties onto an Application.
func ApplicationFromProperties(p map[string]any) Application {
	return Application{
		ApplicationID:                   getStringFromMap(p, "application_id"),
		Name:                            getStringFromMap(p, "name"),
		Description:                     getStringFromMap(p, "description"),
		Ownerships:                      getStringFromMap(p, "ownerships"),
		ApplicationType:                 getStringFromMap(p, "application_type"),
		Complexity:                      getStringFromMap(p, "complexity"),
		Criticality:                     getStringFromMap(p, "criticality"),
		Effort:                          getStringFromMap(p, "effort"),
		Processes:                       getStringFromMap(p, "processes"),
		Active:                          getBoolFromMap(p, "active"),
		InternalApplicationSpecialists:  getStringFromMap(p, "internal_application_specialists"),
		BusinessPartnerBusinessContacts: getStringFromMap(p, "business_partner_business_contacts"),
		BusinessContacts:                getStringFromMap(p, "business_contacts"),
		InternalDevelopers:              getStringFromMap(p, "internal_developers"),
		Hosting:                         getStringFromMap(p, "hosting"),
		AMS:                             getBoolFromMap(p, "ams"),
		BI:                              getStringFromMap(p, "bi"),
		DisasterRecovery:                getBoolFromMap(p, "disaster_recovery"),
		UserLicenseType:                 getStringFromMap(p, "user_license_type"),
		AccessType:                      getStringFromMap(p, "access_type"),
		SWSupplier:                      getStringFromMap(p, "sw_supplier"),
		AMSExpireDate:                   getStringFromMap(p, "ams_expire_date"),
		AMSContactsEmail:                getStringFromMap(p, "ams_contacts_email"),
		AMSContactsPhone:                getStringFromMap(p, "ams_contacts_phone"),
		AMSSupplier:                     getStringFromMap(p, "ams_supplier"),
		SMEsFactory:                     getStringFromMap(p, "smes_factory"),
		AMSPortal:                       getStringFromMap(p, "ams_portal"),
		OrganizationFamily:              getStringFromMap(p, "organization_family"),
		LinksToDocumentation:            getStringFromMap(p, "links_to_documentation"),
		Scope:                           getStringFromMap(p, "scope"),
		AMSService:                      getStringFromMap(p, "ams_service"),
		AMSType:                         getStringFromMap(p, "ams_type"),
		DecommissionDate:                getStringFromMap(p, "decommission_date"),
		ToBeDecommissioned:              getBoolFromMap(p, "to_be_decommissioned"),
		Notes:                           getStringFromMap(p, "notes"),
		LinksToSharepointDocumentation:  getStringFromMap(p, "links_to_sharepoint_documentation"),
	}
}

// ============================================================================
// Flow <-> properties
// ============================================================================

func (f Flow) params() map[string]any {
	return map[string]any{
		"flow_id":                       f.FlowID,
		"name":                          f.Name,
		"description":                   f.Description,
		"initiator_application":         f.InitiatorApplication,
		"target_application":            f.TargetApplication,
		"communication_mode":            f.CommunicationMode,
		"intent":                        f.Intent,
		"message_format":                f.MessageFormat,
		"data_flow":                     f.DataFlow,
		"protocol":                      f.Protocol,
		"frequency":                     f.Frequency,
		"estimated_calls_per_day":       f.EstimatedCallsPerDay,
		"average_execution_time_in_sec": f.AverageExecutionTimeInSec,
		"average_message_size_in_kb":    f.AverageMessageSizeInKB,
		"api_gateway":                   f.APIGateway,
		"release_date":                  nullable(f.ReleaseDate),
		"notes":                         f.Notes,
		"labels":                        nonNilLabels(f.Labels),
	}
}

// Properties returns the flow as relationship properties.
func (f Flow) Properties() map[string]any {
	return f.params()
}

// FlowFromProperties maps relationship properties onto a Flow.
func FlowFromProperties(p map[string]any) Flow {
	return Flow{
		FlowID:                    getStringFromMap(p, "flow_id"),
		Name:                      getStringFromMap(p, "name"),
		Description:               getStringFromMap(p, "description"),
		InitiatorApplication:      getStringFromMap(p, "initiator_application"),
		TargetApplication:         getStringFromMap(p, "target_application"),
		CommunicationMode:         getStringFromMap(p, "communication_mode"),
		Intent:                    getStringFromMap(p, "intent"),
		MessageFormat:             getStringFromMap(p, "message_format"),
		DataFlow:                  getStringFromMap(p, "data_flow"),
		Protocol:                  getStringFromMap(p, "protocol"),
		Frequency:                 getStringFromMap(p, "frequency"),
		EstimatedCallsPerDay:      getStringFromMap(p, "estimated_calls_per_day"),
		AverageExecutionTimeInSec: getStringFromMap(p, "average_execution_time_in_sec"),
		AverageMessageSizeInKB:    getStringFromMap(p, "average_message_size_in_kb"),
		APIGateway:                getBoolFromMap(p, "api_gateway"),
		ReleaseDate:               getStringFromMap(p, "release_date"),
		Notes:                     getStringFromMap(p, "notes"),
		Labels:                    getStringSliceFromMap(p, "labels"),
	}
}
