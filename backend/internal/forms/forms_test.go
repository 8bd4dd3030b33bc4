package forms

import (
	stderrors "errors"
	"testing"

	"archmap/backend/internal/constants"
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidCSV(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"a", true},
		{"a,b,c", true},
		{" a , b ", true},
		{`"Smith, J.",jane@x.com`, true},
		{`"Smith, J." , "Doe, A."`, true},
		{"+39 02 1234, +39 06 5678", true},
		{`"abc`, false},
		{`""`, false},
		{"a,,b", false},
		{"a,", false},
		{",a", false},
		{`a"b`, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCSV(tt.input))
		})
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"Smith, J.", "jane@x.com"}, SplitCSV(`"Smith, J.",jane@x.com`))
	assert.Equal(t, []string{"Mario Rossi", "Jane Doe"}, SplitCSV(" Mario Rossi ,Jane Doe "))
	assert.Equal(t, []string{}, SplitCSV("   "))
	// Malformed input falls back to a plain comma split.
	assert.Equal(t, []string{`"abc`}, SplitCSV(`"abc`))
}

func TestJoinCSV_InvertsSplit(t *testing.T) {
	items := []string{"Smith, J.", "jane@x.com"}
	joined := JoinCSV(items)
	assert.Equal(t, `"Smith, J.", jane@x.com`, joined)
	assert.True(t, IsValidCSV(joined))
	assert.Equal(t, items, SplitCSV(joined))
}

func TestDecodeList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DecodeList(`["a","b"]`))
	assert.Equal(t, []string{}, DecodeList(`[]`))
	assert.Equal(t, []string{"a", "b"}, DecodeList("a, b"))
	assert.Equal(t, []string{}, DecodeList(""))
}

func TestValidator_ValidateApplication(t *testing.T) {
	v := NewValidator()

	in := NewApplicationInput()
	in.Name = "SGA"
	in.BusinessContacts = `"Smith, J.",jane@x.com`
	require.NoError(t, v.ValidateApplication(in))

	in.AMSContactsPhone = `"abc`
	in.Ownerships = "IT,,Ops"
	err := v.ValidateApplication(in)
	require.Error(t, err)

	var failed *errors.ErrValidationFailed
	require.True(t, stderrors.As(err, &failed))
	assert.Equal(t, constants.InvalidFormatMessage, failed.Message)
	assert.Len(t, failed.Fields, 2)
	assert.Contains(t, failed.Fields, "ams_contacts_phone")
	assert.Contains(t, failed.Fields, "ownerships")
}

func TestValidator_ValidateFlowRequiresEndpoints(t *testing.T) {
	v := NewValidator()

	err := v.ValidateFlow(NewFlowInput())
	var failed *errors.ErrValidationFailed
	require.True(t, stderrors.As(err, &failed))
	assert.Equal(t, "Required", failed.Fields["initiator_application"])
	assert.Equal(t, "Required", failed.Fields["target_application"])
}

func TestValidateValues(t *testing.T) {
	err := ValidateValues("application", map[string]any{
		"name":                "SGA",
		"internal_developers": `"abc`,
		"smes_factory":        "Factory A, Factory B",
		"processes":           []any{"Finance"},
	})
	var failed *errors.ErrValidationFailed
	require.True(t, stderrors.As(err, &failed))
	assert.Equal(t, map[string]string{"internal_developers": "Invalid format"}, failed.Fields)

	assert.NoError(t, ValidateValues("flow", map[string]any{"name": `"abc`}))

	err = ValidateValues("nope", nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestApplicationFromInput(t *testing.T) {
	in := NewApplicationInput()
	in.Name = "  SGA "
	in.Processes = []string{"Finance", "Sales"}
	in.AccessType = []string{"Utenza Applicativa"}
	in.BusinessContacts = `"Smith, J.",jane@x.com`
	in.InternalDevelopers = ""
	in.Ownerships = "Logistics IT, Finance IT"

	app := ApplicationFromInput(in)
	assert.Equal(t, "SGA", app.Name)
	assert.Equal(t, "Finance, Sales", app.Processes)
	assert.Equal(t, "Utenza Applicativa", app.AccessType)
	assert.Equal(t, "", app.OrganizationFamily)
	assert.Equal(t, `["Smith, J.","jane@x.com"]`, app.BusinessContacts)
	assert.Equal(t, `[]`, app.InternalDevelopers)
	assert.Equal(t, "Logistics IT, Finance IT", app.Ownerships)
	assert.Equal(t, "", app.AMSExpireDate)
	assert.True(t, app.Active)
	assert.Equal(t, "Medium", app.Effort)
}

func TestApplicationFormValues_RoundTrip(t *testing.T) {
	in := NewApplicationInput()
	in.Name = "SGA"
	in.Processes = []string{"Finance", "LTL / B2C"}
	in.OrganizationFamily = []string{"Core Services"}
	in.BusinessContacts = `"Smith, J.", jane@x.com`
	in.AMSContactsPhone = "+39 02 1234"
	in.AMSExpireDate = "2027-01-31"

	back := ApplicationFormValues(ApplicationFromInput(in))
	assert.Equal(t, in.Processes, back.Processes)
	assert.Equal(t, in.OrganizationFamily, back.OrganizationFamily)
	assert.Equal(t, in.BusinessContacts, back.BusinessContacts)
	assert.Equal(t, in.AMSContactsPhone, back.AMSContactsPhone)
	assert.Equal(t, in.AMSExpireDate, back.AMSExpireDate)
	assert.Equal(t, []string{}, back.AccessType)
}

func TestApplicationFormValues_LegacyPlainText(t *testing.T) {
	back := ApplicationFormValues(graph.Application{InternalDevelopers: "Mario, Luigi"})
	assert.Equal(t, "Mario, Luigi", back.InternalDevelopers)
}

func TestFlowTransforms(t *testing.T) {
	in := NewFlowInput()
	in.InitiatorApplication = " app-1 "
	in.TargetApplication = "app-2"
	in.Protocol = "topic:kafka"
	in.Labels = nil

	flow := FlowFromInput(in)
	assert.Equal(t, "app-1", flow.InitiatorApplication)
	assert.Equal(t, []string{}, flow.Labels)
	assert.Len(t, flow.FlowID, 36)

	back := FlowFormValues(flow)
	assert.Equal(t, flow.FlowID, back.FlowID)
	assert.Equal(t, "topic:kafka", back.Protocol)
}

func TestDescriptors(t *testing.T) {
	assert.Equal(t, []string{"application", "drawing", "flow"}, Names())

	app, err := Load("application")
	require.NoError(t, err)
	assert.Equal(t, constants.ValidationDebounceMillis, app.ValidationDebounceMs)

	// Every CSV field is flagged in the descriptor.
	for _, name := range CSVFields {
		f, ok := app.Field(name)
		require.True(t, ok, name)
		assert.True(t, f.CSV, name)
	}

	processes, ok := app.Field("processes")
	require.True(t, ok)
	assert.Equal(t, KindSelect, processes.Kind)
	assert.True(t, processes.Multiple)
	assert.Len(t, processes.Options, 12)

	effort, ok := app.Field("effort")
	require.True(t, ok)
	assert.Len(t, effort.Options, 5)

	phone, ok := app.Field("ams_contacts_phone")
	require.True(t, ok)
	assert.Equal(t, "ams", phone.VisibleWhen)

	service, ok := app.Field("ams_service")
	require.True(t, ok)
	assert.Equal(t, "No", service.Options[0].Value)

	flow, err := Load("flow")
	require.NoError(t, err)
	protocol, ok := flow.Field("protocol")
	require.True(t, ok)
	assert.Len(t, protocol.Options, 20)

	drawing, err := Load("drawing")
	require.NoError(t, err)
	assert.Equal(t, []string{"filename"}, drawing.FieldNames())
}
