package schema

import (
	"context"
	"strings"

	"archmap/backend/internal/graph"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// Version marks the schema revision recorded on the Migration node
const Version = "archmap_schema_v1"

// Executor runs a single Cypher statement
type Executor interface {
	RunQuery(ctx context.Context, query string, params map[string]any) ([]graph.Row, error)
}

// Migration is one named group of statements
type Migration struct {
	Name        string
	Description string
	Script      string
}

// Migrations returns the schema steps in the order they run
func Migrations() []Migration {
	return []Migration{
		{
			Name:        "Create Constraints",
			Description: "Unique identifiers for applications and flows",
			Script: `
				CREATE CONSTRAINT application_id_unique IF NOT EXISTS FOR (a:Application) REQUIRE a.application_id IS UNIQUE;
				CREATE CONSTRAINT flow_id_unique IF NOT EXISTS FOR ()-[f:flow]-() REQUIRE f.flow_id IS UNIQUE;
			`,
		},
		{
			Name:        "Create Indexes",
			Description: "Lookup indexes for the listing and overview queries",
			Script: `
				CREATE INDEX application_name IF NOT EXISTS FOR (a:Application) ON (a.name);
				CREATE INDEX flow_endpoints IF NOT EXISTS FOR ()-[f:flow]-() ON (f.initiator_application, f.target_application);
			`,
		},
		{
			Name:        "Create Full-Text Indexes",
			Description: "Search over application names and descriptions",
			Script: `
				// Requires Neo4j 5
				CREATE FULLTEXT INDEX application_text IF NOT EXISTS FOR (a:Application) ON EACH [a.name, a.description];
			`,
		},
		{
			Name:        "Backfill Defaults",
			Description: "Fill properties older imports left unset",
			Script: `
				MATCH (a:Application) WHERE a.active IS NULL SET a.active = true;
				MATCH ()-[f:flow]->() WHERE f.labels IS NULL SET f.labels = [];
			`,
		},
	}
}

// Result summarises a migration run
type Result struct {
	Skipped    bool
	Statements int
	Failed     int
}

// Migrator applies Migrations through an Executor
type Migrator struct {
	exec   Executor
	logger *zap.Logger
}

// NewMigrator creates a migrator
func NewMigrator(exec Executor) *Migrator {
	return &Migrator{exec: exec, logger: logger.Named("schema")}
}

// Applied reports whether Version has already been recorded
func (m *Migrator) Applied(ctx context.Context) (bool, error) {
	rows, err := m.exec.RunQuery(ctx, `
		MATCH (m:Migration {version: $version})
		RETURN m.applied_at AS applied_at
	`, map[string]any{"version": Version})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Run applies every migration unless Version is already recorded and force is
// false. Statement failures are logged and counted; most statements are
// idempotent so the run continues.
func (m *Migrator) Run(ctx context.Context, force bool) (Result, error) {
	var result Result
	if !force {
		applied, err := m.Applied(ctx)
		if err != nil {
			return result, err
		}
		if applied {
			m.logger.Info("Migration already applied", zap.String("version", Version))
			result.Skipped = true
			return result, nil
		}
	}

	migrations := Migrations()
	for i, migration := range migrations {
		m.logger.Info("Running migration",
			zap.Int("step", i+1),
			zap.Int("total", len(migrations)),
			zap.String("name", migration.Name),
		)

		for j, stmt := range SplitStatements(migration.Script) {
			result.Statements++
			if _, err := m.exec.RunQuery(ctx, stmt, nil); err != nil {
				if ctx.Err() != nil {
					return result, err
				}
				result.Failed++
				m.logger.Warn("Migration statement failed",
					zap.String("migration", migration.Name),
					zap.Int("statement", j+1),
					zap.Error(err),
				)
			}
		}
	}

	if _, err := m.exec.RunQuery(ctx, `
		MERGE (m:Migration {version: $version})
		SET m.applied_at = datetime()
	`, map[string]any{"version": Version}); err != nil {
		m.logger.Warn("Failed to mark migration as applied", zap.Error(err))
	}
	return result, nil
}

// SplitStatements splits a Cypher script on semicolons, dropping // and /* */
// comments and blank statements.
func SplitStatements(script string) []string {
	script = removeBlockComments(script)

	lines := strings.Split(script, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}

	var statements []string
	for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func removeBlockComments(text string) string {
	for {
		start := strings.Index(text, "/*")
		if start < 0 {
			return text
		}
		end := strings.Index(text[start+2:], "*/")
		if end < 0 {
			return text
		}
		text = text[:start] + text[start+end+4:]
	}
}
