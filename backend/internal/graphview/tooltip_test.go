package graphview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "Ams Expire Date", FormatKey("ams_expire_date"))
	assert.Equal(t, "Name", FormatKey("name"))
	assert.Equal(t, "Sw Supplier", FormatKey("sw_supplier"))
}

func TestFormatKey_MultiByteInitial(t *testing.T) {
	assert.Equal(t, "École Ünit", FormatKey("école_ünit"))
	assert.Equal(t, "A  B", FormatKey("a__b"))
}

func TestNodeTooltip(t *testing.T) {
	tip := NodeTooltip(map[string]any{
		"name":              "SGA",
		"elementId":         "4:a:1",
		"labels":            []string{"Application"},
		"business_contacts": `["Smith, J.","jane@x.com"]`,
		"decommission_date": nil,
		"notes":             "",
		"active":            true,
	})

	assert.Equal(t,
		`<div style="max-width: 300px; padding: 8px;">`+
			`<strong>Active</strong>: true<br>`+
			`<strong>Business Contacts</strong>: Smith, J., jane@x.com<br>`+
			`<strong>Name</strong>: SGA</div>`,
		tip)
}

func TestNodeTooltip_EscapesValues(t *testing.T) {
	tip := NodeTooltip(map[string]any{"name": "A & B"})
	assert.Contains(t, tip, "A &amp; B")
}

func TestEdgeTooltip(t *testing.T) {
	assert.Equal(t, "", EdgeTooltip(nil))
	assert.Equal(t, "", EdgeTooltip(map[string]any{}))
	assert.Contains(t, EdgeTooltip(map[string]any{"protocol": "REST API"}), "<strong>Protocol</strong>: REST API")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain", PlainText("plain"))
	assert.Equal(t, "First line Second line", PlainText("<p>First line</p><p>Second <b>line</b></p>"))
	assert.Equal(t, "a b", PlainText("a<br>b"))
}
