package state

import (
	"sync"
	"testing"
	"time"

	"archmap/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ViewState
		want     bool
	}{
		{StateIdle, StateLoading, true},
		{StateIdle, StateRendered, false},
		{StateLoading, StateRendered, true},
		{StateLoading, StateIdle, true},
		{StateRendered, StateExpanding, true},
		{StateRendered, StateEditing, true},
		{StateRendered, StateDeleting, true},
		{StateRendered, StateLoading, true},
		{StateExpanding, StateRendered, true},
		{StateExpanding, StateEditing, false},
		{StateEditing, StateDeleting, false},
		{StateDeleting, StateRendered, true},
		{StateDeleting, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSession_TransitionRejectsInvalidStep(t *testing.T) {
	sess := NewSession("s1")

	err := sess.Transition(StateEditing)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
	assert.Equal(t, StateIdle, sess.State)
}

func TestSession_ReturningToRenderedClearsPending(t *testing.T) {
	sess := NewSession("s1")
	require.NoError(t, sess.Transition(StateLoading))
	require.NoError(t, sess.Transition(StateRendered))
	sess.Nodes["4:a:1"] = NodeView{ID: "4:a:1"}

	require.NoError(t, sess.Transition(StateEditing))
	sess.Editing = &PendingElement{ID: "4:a:1", Kind: ElementNode}
	require.NoError(t, sess.Validate())

	require.NoError(t, sess.Transition(StateRendered))
	assert.Nil(t, sess.Editing)
	assert.Nil(t, sess.Deleting)
}

func TestSession_Validate(t *testing.T) {
	sess := NewSession("s1")
	sess.State = StateRendered
	sess.Editing = &PendingElement{ID: "4:a:1", Kind: ElementNode}

	var invalid ErrInvalidSession
	err := sess.Validate()
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "editing", invalid.Field)

	sess = NewSession("")
	require.ErrorAs(t, sess.Validate(), &invalid)
	assert.Equal(t, "id", invalid.Field)
}

func TestSession_SnapshotAndReset(t *testing.T) {
	sess := NewSession("s1")
	sess.Nodes["a"] = NodeView{ID: "a"}
	sess.Nodes["b"] = NodeView{ID: "b"}
	sess.Edges["e"] = EdgeView{ID: "e", From: "a", To: "b"}

	snap := sess.Snapshot()
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)

	sess.Reset()
	snap = sess.Snapshot()
	assert.Empty(t, snap.Nodes)
	assert.NotNil(t, snap.Nodes)
}

func TestSessionStore_CreateUpdateDelete(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := store.Create()
	assert.Equal(t, 1, store.Len())

	err := store.Update(sess.ID, func(s *Session) error {
		return s.Transition(StateLoading)
	})
	require.NoError(t, err)

	require.NoError(t, store.View(sess.ID, func(s *Session) error {
		assert.Equal(t, StateLoading, s.State)
		return nil
	}))

	store.Delete(sess.ID)
	err = store.Update(sess.ID, func(*Session) error { return nil })
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestSessionStore_SweepExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.now = func() time.Time { return clock }

	stale := store.Create()
	clock = clock.Add(45 * time.Minute)
	fresh := store.Create()

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	assert.Error(t, store.View(stale.ID, func(*Session) error { return nil }))
	assert.NoError(t, store.View(fresh.ID, func(*Session) error { return nil }))

	// Touching keeps a session alive.
	require.NoError(t, store.Update(fresh.ID, func(*Session) error { return nil }))
	clock = clock.Add(50 * time.Minute)
	assert.Equal(t, 0, store.Sweep())
}

func TestSessionStore_ConcurrentUpdates(t *testing.T) {
	store := NewSessionStore(time.Minute)
	sess := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Update(sess.ID, func(s *Session) error {
				id := string(rune('a' + i%26))
				s.Nodes[id] = NodeView{ID: id}
				return nil
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.View(sess.ID, func(s *Session) error {
		assert.Len(t, s.Nodes, 26)
		return nil
	}))
}
