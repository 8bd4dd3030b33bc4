package drawing

import (
	"context"
	"encoding/json"
	"fmt"

	"archmap/backend/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps drawings in a Postgres table over a pgx pool
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore connects to dsn and creates the table if needed
func NewPostgresStore(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewDrawingStoreFailed("connect", err)
	}

	store := &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}
	if err := store.initializeTable(ctx); err != nil {
		pool.Close()
		return nil, errors.NewDrawingStoreFailed("initialize", err)
	}
	return store, nil
}

func (s *PostgresStore) initializeTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			snapshot JSONB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			user_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, s.table)
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) columns() string {
	return "id, filename, snapshot, version, user_id, created_at, updated_at"
}

func scanDrawing(row pgx.Row) (*Drawing, error) {
	var d Drawing
	var snapshot []byte
	if err := row.Scan(&d.ID, &d.Filename, &snapshot, &d.Version, &d.UserID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Snapshot = json.RawMessage(snapshot)
	return &d, nil
}

func (s *PostgresStore) Insert(ctx context.Context, d Drawing) (*Drawing, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, filename, snapshot, version, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, s.table, s.columns())

	out, err := scanDrawing(s.pool.QueryRow(ctx, query, d.ID, d.Filename, []byte(d.Snapshot), d.Version, d.UserID))
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("insert", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Drawing, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, s.columns(), s.table)

	out, err := scanDrawing(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.NewDrawingNotFound(id)
		}
		return nil, errors.NewDrawingStoreFailed("get", err)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Drawing, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, version, user_id, created_at, updated_at
		FROM %s
		WHERE $1 = '' OR user_id = $1
		ORDER BY updated_at DESC
	`, s.table)

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("list", err)
	}
	defer rows.Close()

	var out []Drawing
	for rows.Next() {
		var d Drawing
		if err := rows.Scan(&d.ID, &d.Filename, &d.Version, &d.UserID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.NewDrawingStoreFailed("list", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDrawingStoreFailed("list", err)
	}
	if out == nil {
		out = []Drawing{}
	}
	return out, nil
}

// UpdateSnapshot is a single conditional UPDATE; zero affected rows means the
// row is gone or another save bumped the version first.
func (s *PostgresStore) UpdateSnapshot(ctx context.Context, id string, expectedVersion int, filename string, snapshot json.RawMessage) (*Drawing, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET filename = $3, snapshot = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING %s
	`, s.table, s.columns())

	out, err := scanDrawing(s.pool.QueryRow(ctx, query, id, expectedVersion, filename, []byte(snapshot)))
	if err == nil {
		return out, nil
	}
	if err != pgx.ErrNoRows {
		return nil, errors.NewDrawingStoreFailed("update", err)
	}
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, errors.NewDrawingVersionConflict(id, expectedVersion)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
