package graph

import (
	"context"
	stderrors "errors"
	"time"

	"archmap/backend/internal/metrics"
	"archmap/backend/pkg/errors"
	"archmap/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.uber.org/zap"
)

// DefaultBackgroundLimit bounds how long an abandoned statement may keep running.
const DefaultBackgroundLimit = 5 * time.Minute

// Gateway executes literal Cypher with bound parameters and maps every record
// into plain values. Cancellation is cooperative: the caller's context is raced
// against the statement, which keeps running in the background if it loses.
type Gateway struct {
	runner          Runner
	metrics         *metrics.Collector
	logger          *zap.Logger
	backgroundLimit time.Duration
}

// NewGateway creates a gateway over runner. collector may be nil.
func NewGateway(runner Runner, collector *metrics.Collector) *Gateway {
	return &Gateway{
		runner:          runner,
		metrics:         collector,
		logger:          logger.Named("gateway"),
		backgroundLimit: DefaultBackgroundLimit,
	}
}

// Execute runs an ad-hoc statement, as issued from the query console.
func (g *Gateway) Execute(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	return g.run(ctx, "console", query, params)
}

type outcome struct {
	records []*neo4j.Record
	err     error
}

func (g *Gateway) run(ctx context.Context, operation, query string, params map[string]any) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(operation, err)
	}
	if params == nil {
		params = map[string]any{}
	}

	start := time.Now()
	done := make(chan outcome, 1)

	// The statement gets a context that ignores the caller's cancellation.
	background, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.backgroundLimit)
	go func() {
		defer cancel()
		records, err := g.runner.Run(background, query, params)
		done <- outcome{records: records, err: err}
	}()

	select {
	case <-ctx.Done():
		g.metrics.ObserveQuery(operation, ctx.Err(), time.Since(start))
		g.logger.Debug("Query abandoned by caller",
			zap.String("operation", operation),
			zap.Error(ctx.Err()),
		)
		return nil, contextError(operation, ctx.Err())
	case res := <-done:
		g.metrics.ObserveQuery(operation, res.err, time.Since(start))
		if res.err != nil {
			g.logger.Error("Query execution error",
				zap.String("operation", operation),
				zap.Error(res.err),
			)
			return nil, wrapQueryError(operation, res.err)
		}
		rows := make([]Row, 0, len(res.records))
		for _, record := range res.records {
			rows = append(rows, recordToRow(record))
		}
		return rows, nil
	}
}

func contextError(operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewContextTimeout(operation, err)
	}
	return errors.NewContextCancelled(operation, err)
}

// wrapQueryError leaves already-classified errors alone.
func wrapQueryError(operation string, err error) error {
	if errors.TypeOf(err) != "" {
		return err
	}
	return errors.NewGraphQueryFailed(operation, err)
}

// ============================================================================
// Record Mapping
// ============================================================================

func recordToRow(record *neo4j.Record) Row {
	row := make(Row, len(record.Keys))
	for i, key := range record.Keys {
		if i < len(record.Values) {
			row[key] = toPlain(record.Values[i])
		}
	}
	return row
}

func toPlain(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return nodeFromDB(v)
	case *dbtype.Node:
		return nodeFromDB(*v)
	case dbtype.Relationship:
		return relationshipFromDB(v)
	case *dbtype.Relationship:
		return relationshipFromDB(*v)
	case dbtype.Path:
		path := Path{
			Nodes:         make([]Node, 0, len(v.Nodes)),
			Relationships: make([]Relationship, 0, len(v.Relationships)),
		}
		for _, n := range v.Nodes {
			path.Nodes = append(path.Nodes, nodeFromDB(n))
		}
		for _, r := range v.Relationships {
			path.Relationships = append(path.Relationships, relationshipFromDB(r))
		}
		return path
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = toPlain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

func nodeFromDB(n dbtype.Node) Node {
	props := n.Props
	if props == nil {
		props = map[string]any{}
	}
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return Node{ElementID: n.ElementId, Labels: labels, Properties: props}
}

func relationshipFromDB(r dbtype.Relationship) Relationship {
	props := r.Props
	if props == nil {
		props = map[string]any{}
	}
	return Relationship{
		ElementID:          r.ElementId,
		Type:               r.Type,
		StartNodeElementID: r.StartElementId,
		EndNodeElementID:   r.EndElementId,
		Properties:         props,
	}
}
