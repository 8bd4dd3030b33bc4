package drawing

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"time"

	"archmap/backend/pkg/errors"
	"archmap/backend/pkg/logger"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// SupabaseStore keeps drawings in a Supabase table through its REST API
type SupabaseStore struct {
	client *supabase.Client
	table  string
	logger *zap.Logger
}

// supabaseRow is the table's column layout
type supabaseRow struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	Snapshot  json.RawMessage `json:"snapshot"`
	Version   int             `json:"version"`
	UserID    string          `json:"user_id"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func rowFromDrawing(d Drawing) supabaseRow {
	row := supabaseRow{
		ID:       d.ID,
		Filename: d.Filename,
		Snapshot: d.Snapshot,
		Version:  d.Version,
		UserID:   d.UserID,
	}
	if !d.CreatedAt.IsZero() {
		row.CreatedAt = &d.CreatedAt
	}
	if !d.UpdatedAt.IsZero() {
		row.UpdatedAt = &d.UpdatedAt
	}
	return row
}

func (r supabaseRow) drawing() Drawing {
	d := Drawing{
		ID:       r.ID,
		Filename: r.Filename,
		Snapshot: r.Snapshot,
		Version:  r.Version,
		UserID:   r.UserID,
	}
	if r.CreatedAt != nil {
		d.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		d.UpdatedAt = *r.UpdatedAt
	}
	return d
}

// NewSupabaseStore creates a client for the given project
func NewSupabaseStore(url, key, table string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("connect", err)
	}
	return &SupabaseStore{
		client: client,
		table:  table,
		logger: logger.Named("drawing.supabase"),
	}, nil
}

// checkContext stops a call before it reaches the REST client, which takes
// no context of its own.
func checkContext(ctx context.Context, operation string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewContextTimeout("drawing "+operation, err)
	default:
		return errors.NewContextCancelled("drawing "+operation, err)
	}
}

func (s *SupabaseStore) Insert(ctx context.Context, d Drawing) (*Drawing, error) {
	if err := checkContext(ctx, "insert"); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Insert(rowFromDrawing(d), false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("insert", err)
	}
	if len(rows) == 0 {
		return &d, nil
	}
	out := rows[0].drawing()
	return &out, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id string) (*Drawing, error) {
	if err := checkContext(ctx, "get"); err != nil {
		return nil, err
	}
	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("get", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewDrawingNotFound(id)
	}
	out := rows[0].drawing()
	return &out, nil
}

func (s *SupabaseStore) List(ctx context.Context, userID string) ([]Drawing, error) {
	if err := checkContext(ctx, "list"); err != nil {
		return nil, err
	}
	query := s.client.From(s.table).Select("id,filename,version,user_id,created_at,updated_at", "", false)
	if userID != "" {
		query = query.Eq("user_id", userID)
	}

	var rows []supabaseRow
	if _, err := query.ExecuteTo(&rows); err != nil {
		return nil, errors.NewDrawingStoreFailed("list", err)
	}

	out := make([]Drawing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.drawing())
	}
	sortByUpdated(out)
	return out, nil
}

// UpdateSnapshot filters on both id and version, so a concurrent save
// matches no row. The row is then re-read to tell a conflict from a miss.
func (s *SupabaseStore) UpdateSnapshot(ctx context.Context, id string, expectedVersion int, filename string, snapshot json.RawMessage) (*Drawing, error) {
	if err := checkContext(ctx, "update"); err != nil {
		return nil, err
	}
	patch := map[string]any{
		"filename":   filename,
		"snapshot":   snapshot,
		"version":    expectedVersion + 1,
		"updated_at": time.Now().UTC(),
	}

	var rows []supabaseRow
	_, err := s.client.From(s.table).
		Update(patch, "representation", "").
		Eq("id", id).
		Eq("version", strconv.Itoa(expectedVersion)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, errors.NewDrawingStoreFailed("update", err)
	}

	if len(rows) == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		s.logger.Warn("Drawing version moved", zap.String("drawing_id", id), zap.Int("expected_version", expectedVersion))
		return nil, errors.NewDrawingVersionConflict(id, expectedVersion)
	}
	out := rows[0].drawing()
	return &out, nil
}

func (s *SupabaseStore) Close() {}
