package schema

import (
	"context"
	"fmt"

	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// ResetResult counts what Reset removed
type ResetResult struct {
	Constraints int
	Indexes     int
}

// Reset deletes every application, flow and migration marker, then drops the
// schema's constraints and indexes so Migrate starts clean. Token lookup
// indexes are kept.
func Reset(ctx context.Context, exec Executor) (ResetResult, error) {
	log := logger.Named("schema")
	var result ResetResult

	if _, err := exec.RunQuery(ctx, `
		MATCH (n)
		WHERE n:Application OR n:Migration
		DETACH DELETE n
	`, nil); err != nil {
		return result, fmt.Errorf("failed to delete data: %w", err)
	}
	log.Info("Applications, flows and migration markers deleted")

	constraints, err := schemaObjects(ctx, exec, "SHOW CONSTRAINTS YIELD name, type RETURN name, type")
	if err != nil {
		return result, fmt.Errorf("failed to list constraints: %w", err)
	}
	for _, name := range constraints {
		if _, err := exec.RunQuery(ctx, fmt.Sprintf("DROP CONSTRAINT `%s` IF EXISTS", name), nil); err != nil {
			log.Warn("Failed to drop constraint", zap.String("name", name), zap.Error(err))
			continue
		}
		result.Constraints++
	}

	// Constraint-backed indexes disappear with their constraint, hence the second listing.
	indexes, err := schemaObjects(ctx, exec, "SHOW INDEXES YIELD name, type RETURN name, type")
	if err != nil {
		return result, fmt.Errorf("failed to list indexes: %w", err)
	}
	for _, name := range indexes {
		if _, err := exec.RunQuery(ctx, fmt.Sprintf("DROP INDEX `%s` IF EXISTS", name), nil); err != nil {
			log.Warn("Failed to drop index", zap.String("name", name), zap.Error(err))
			continue
		}
		result.Indexes++
	}

	log.Info("Dropped constraints and indexes",
		zap.Int("constraints", result.Constraints),
		zap.Int("indexes", result.Indexes),
	)
	return result, nil
}

func schemaObjects(ctx context.Context, exec Executor, query string) ([]string, error) {
	rows, err := exec.RunQuery(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range rows {
		if kind, _ := row["type"].(string); kind == "LOOKUP" {
			continue
		}
		if name, ok := row["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
