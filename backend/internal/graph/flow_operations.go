package graph

import (
	"context"

	"archmap/backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================================
// Flow Operations
// ============================================================================

const createFlowQuery = `
	MATCH (initiator:Application {application_id: $initiator_application})
	MATCH (target:Application {application_id: $target_application})
	CREATE (initiator)-[f:flow {
		flow_id: $flow_id,
		name: $name,
		description: $description,
		initiator_application: $initiator_application,
		target_application: $target_application,
		communication_mode: $communication_mode,
		intent: $intent,
		message_format: $message_format,
		data_flow: $data_flow,
		protocol: $protocol,
		frequency: $frequency,
		estimated_calls_per_day: $estimated_calls_per_day,
		average_execution_time_in_sec: $average_execution_time_in_sec,
		average_message_size_in_kb: $average_message_size_in_kb,
		api_gateway: $api_gateway,
		release_date: $release_date,
		notes: $notes,
		labels: $labels
	}]->(target)
	RETURN f
`

const editFlowQuery = `
	MATCH (initiator:Application {application_id: $initiator_application})
		-[f:flow {flow_id: $flow_id}]->
		(target:Application {application_id: $target_application})
	SET
		f.name = $name,
		f.description = $description,
		f.communication_mode = $communication_mode,
		f.intent = $intent,
		f.message_format = $message_format,
		f.data_flow = $data_flow,
		f.protocol = $protocol,
		f.frequency = $frequency,
		f.estimated_calls_per_day = $estimated_calls_per_day,
		f.average_execution_time_in_sec = $average_execution_time_in_sec,
		f.average_message_size_in_kb = $average_message_size_in_kb,
		f.api_gateway = $api_gateway,
		f.release_date = $release_date,
		f.notes = $notes,
		f.labels = $labels
	RETURN f
`

// CreateFlow links two existing applications. When either endpoint is missing
// the MATCH yields no rows, nothing is created and ErrFlowEndpointsNotFound is
// returned.
func (r *Repository) CreateFlow(ctx context.Context, flow Flow) (*FlowRecord, error) {
	if flow.FlowID == "" {
		flow.FlowID = uuid.NewString()
	}

	rows, err := r.gateway.run(ctx, "create_flow", createFlowQuery, flow.params())
	if err != nil {
		return nil, err
	}
	record, ok := flowFromRows(rows, "f")
	if !ok {
		return nil, errors.NewFlowEndpointsNotFound(flow.InitiatorApplication, flow.TargetApplication)
	}

	r.logger.Info("Flow created",
		zap.String("flow_id", flow.FlowID),
		zap.String("initiator", flow.InitiatorApplication),
		zap.String("target", flow.TargetApplication),
	)
	return record, nil
}

// GetFlow fetches one flow by id.
func (r *Repository) GetFlow(ctx context.Context, flowID string) (*FlowRecord, error) {
	query := `MATCH ()-[f:flow {flow_id: $flow_id}]->() RETURN f`

	rows, err := r.gateway.run(ctx, "get_flow", query, map[string]any{"flow_id": flowID})
	if err != nil {
		return nil, err
	}
	record, ok := flowFromRows(rows, "f")
	if !ok {
		return nil, errors.NewFlowNotFound(flowID)
	}
	return record, nil
}

// EditFlow overwrites the descriptive fields of the flow with the same id
// between the same two applications. Endpoints cannot be changed.
func (r *Repository) EditFlow(ctx context.Context, flow Flow) (*FlowRecord, error) {
	rows, err := r.gateway.run(ctx, "edit_flow", editFlowQuery, flow.params())
	if err != nil {
		return nil, err
	}
	record, ok := flowFromRows(rows, "f")
	if !ok {
		return nil, errors.NewFlowNotFound(flow.FlowID)
	}

	r.logger.Info("Flow edited", zap.String("flow_id", flow.FlowID))
	return record, nil
}

// DeleteFlow deletes the single relationship carrying flowID. Both endpoint
// applications are left in place.
func (r *Repository) DeleteFlow(ctx context.Context, flowID string) (int64, error) {
	query := `
		MATCH ()-[f:flow {flow_id: $flow_id}]->()
		DELETE f
		RETURN count(*) AS deleted
	`
	rows, err := r.gateway.run(ctx, "delete_flow", query, map[string]any{"flow_id": flowID})
	if err != nil {
		return 0, err
	}
	deleted := deletedCount(rows)
	if deleted == 0 {
		return 0, errors.NewFlowNotFound(flowID)
	}

	r.logger.Info("Flow deleted", zap.String("flow_id", flowID))
	return deleted, nil
}

// ListFlows returns every flow relationship.
func (r *Repository) ListFlows(ctx context.Context) ([]FlowRecord, error) {
	rows, err := r.gateway.run(ctx, "list_flows", "MATCH ()-[r:flow]->() RETURN r", nil)
	if err != nil {
		return nil, err
	}

	flows := make([]FlowRecord, 0, len(rows))
	for _, row := range rows {
		rel, ok := row.Relationship("r")
		if !ok {
			continue
		}
		flows = append(flows, FlowRecord{
			ElementID:  rel.ElementID,
			Flow:       FlowFromProperties(rel.Properties),
			Properties: rel.Properties,
		})
	}
	return flows, nil
}

func flowFromRows(rows []Row, key string) (*FlowRecord, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	rel, ok := rows[0].Relationship(key)
	if !ok {
		return nil, false
	}
	return &FlowRecord{
		ElementID:  rel.ElementID,
		Flow:       FlowFromProperties(rel.Properties),
		Properties: rel.Properties,
	}, true
}
