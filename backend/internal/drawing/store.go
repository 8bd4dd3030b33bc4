package drawing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"archmap/backend/pkg/errors"
)

// Store persists drawings as rows
type Store interface {
	// Insert writes a new row. The drawing's ID and Version must be set.
	Insert(ctx context.Context, d Drawing) (*Drawing, error)
	Get(ctx context.Context, id string) (*Drawing, error)
	// List returns the user's drawings, most recently updated first. An
	// empty userID lists every drawing.
	List(ctx context.Context, userID string) ([]Drawing, error)
	// UpdateSnapshot overwrites filename and snapshot and sets the version to
	// expectedVersion+1, but only while the row is still at expectedVersion.
	UpdateSnapshot(ctx context.Context, id string, expectedVersion int, filename string, snapshot json.RawMessage) (*Drawing, error)
	Close()
}

func sortByUpdated(ds []Drawing) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].UpdatedAt.After(ds[j].UpdatedAt)
	})
}

// MemoryStore keeps drawings in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	drawings map[string]Drawing
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drawings: make(map[string]Drawing),
		now:      time.Now,
	}
}

func (m *MemoryStore) Insert(_ context.Context, d Drawing) (*Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.drawings[d.ID]; exists {
		return nil, errors.NewDrawingStoreFailed("insert", fmt.Errorf("duplicate drawing id %s", d.ID))
	}
	now := m.now()
	d.CreatedAt, d.UpdatedAt = now, now
	m.drawings[d.ID] = d.clone()

	out := d.clone()
	return &out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drawings[id]
	if !ok {
		return nil, errors.NewDrawingNotFound(id)
	}
	out := d.clone()
	return &out, nil
}

func (m *MemoryStore) List(_ context.Context, userID string) ([]Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Drawing, 0, len(m.drawings))
	for _, d := range m.drawings {
		if userID == "" || d.UserID == userID {
			out = append(out, d.clone())
		}
	}
	sortByUpdated(out)
	return out, nil
}

func (m *MemoryStore) UpdateSnapshot(_ context.Context, id string, expectedVersion int, filename string, snapshot json.RawMessage) (*Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drawings[id]
	if !ok {
		return nil, errors.NewDrawingNotFound(id)
	}
	if d.Version != expectedVersion {
		return nil, errors.NewDrawingVersionConflict(id, expectedVersion)
	}
	d.Filename = filename
	d.Snapshot = append(json.RawMessage(nil), snapshot...)
	d.Version = expectedVersion + 1
	d.UpdatedAt = m.now()
	m.drawings[id] = d

	out := d.clone()
	return &out, nil
}

func (m *MemoryStore) Close() {}
