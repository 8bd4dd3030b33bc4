package constants

// Graph model
const (
	// ApplicationLabel is the node label for applications
	ApplicationLabel = "Application"
	// BusinessFlowLabel is the node label the graph view also expands into
	BusinessFlowLabel = "BUSINESS_FLOW"
	// FlowRelationship is the relationship type for flows between applications
	FlowRelationship = "flow"
)

// Graph view
const (
	// ExpansionRadius is the distance at which expanded neighbours are placed
	ExpansionRadius = 200.0
	// UnnamedLabel is shown for nodes with neither a name nor a nickname
	UnnamedLabel = "Unnamed"
	// OverviewLimit caps the rows fetched for the initial graph
	OverviewLimit = 500
)

// Forms
const (
	// ValidationDebounceMillis is how long clients wait after the last change before validating
	ValidationDebounceMillis = 500
	// InvalidFormatMessage is the root form error for CSV field failures
	InvalidFormatMessage = "Invalid format in one or more fields."
)

// Drawings
const (
	// DefaultDrawingsTable is the row-store table holding drawing snapshots
	DefaultDrawingsTable = "drawings"
	// ApplicationShapeType is the custom canvas shape representing an application
	ApplicationShapeType = "application"
)
