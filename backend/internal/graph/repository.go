package graph

import (
	"context"

	"archmap/backend/internal/metrics"
	"archmap/backend/pkg/config"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// Repository holds the named domain operations. Each one is a single literal
// Cypher statement executed through the Gateway: no batching and no
// multi-statement transactions.
type Repository struct {
	gateway *Gateway
	logger  *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(gateway *Gateway) *Repository {
	return &Repository{
		gateway: gateway,
		logger:  logger.Named("repository"),
	}
}

// Open builds the repository stack from cfg: a lazily connecting Neo4j
// runner, behind the circuit breaker when enabled, feeding the gateway. The
// runner is returned so the caller can close it.
func Open(cfg *config.Config, collector *metrics.Collector) (*Repository, *Neo4jRunner) {
	neo := NewNeo4jRunner(cfg)
	var runner Runner = neo
	if cfg.BreakerEnabled {
		runner = NewBreakerRunner(neo, DefaultBreakerSettings(), collector)
	}
	return NewRepository(NewGateway(runner, collector)), neo
}

// Gateway exposes the underlying gateway for ad-hoc queries.
func (r *Repository) Gateway() *Gateway {
	return r.gateway
}

// RunQuery executes a console statement with optional parameters.
func (r *Repository) RunQuery(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	return r.gateway.Execute(ctx, query, params)
}

// Overview returns (a, e, b) rows for every application with its outgoing
// flows, plus isolated applications with null e and b.
func (r *Repository) Overview(ctx context.Context, limit int) ([]Row, error) {
	query := `
		MATCH (a:Application)-[e:flow]->(b:Application)
		RETURN a, e, b
		LIMIT $limit
		UNION
		MATCH (a:Application)
		WHERE NOT (a)--()
		RETURN a, null AS e, null AS b
		LIMIT $limit
	`
	return r.gateway.run(ctx, "overview", query, map[string]any{"limit": int64(limit)})
}

// Neighborhood returns every relationship touching the node with the given
// element id whose other end is an Application or a BUSINESS_FLOW node.
func (r *Repository) Neighborhood(ctx context.Context, elementID string) ([]Row, error) {
	query := `
		MATCH (source)-[r]-(target)
		WHERE elementId(source) = $nodeId
		AND (target:Application OR target:BUSINESS_FLOW)
		RETURN source as a, r as e, target as b
		UNION
		MATCH (source)-[r]-(target)
		WHERE elementId(target) = $nodeId
		AND (source:Application OR source:BUSINESS_FLOW)
		RETURN source as a, r as e, target as b
	`
	return r.gateway.run(ctx, "neighborhood", query, map[string]any{"nodeId": elementID})
}
