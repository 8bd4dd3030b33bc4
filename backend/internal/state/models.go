package state

import (
	"fmt"
	"time"

	"archmap/backend/pkg/errors"
)

// ViewState is the lifecycle state of a rendered graph view
type ViewState string

const (
	StateIdle      ViewState = "idle"
	StateLoading   ViewState = "loading"
	StateRendered  ViewState = "rendered"
	StateExpanding ViewState = "expanding"
	StateEditing   ViewState = "editing"
	StateDeleting  ViewState = "deleting"
)

// transitions lists the states reachable from each state.
// A failed load falls back to idle; every interaction returns to rendered.
var transitions = map[ViewState][]ViewState{
	StateIdle:      {StateLoading},
	StateLoading:   {StateRendered, StateIdle},
	StateRendered:  {StateLoading, StateExpanding, StateEditing, StateDeleting},
	StateExpanding: {StateRendered},
	StateEditing:   {StateRendered},
	StateDeleting:  {StateRendered},
}

// CanTransition reports whether to is reachable from from in one step
func CanTransition(from, to ViewState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ElementKind tells nodes and edges apart for the pending delete
type ElementKind string

const (
	ElementNode ElementKind = "node"
	ElementEdge ElementKind = "edge"
)

// Position is a canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeView is one node as handed to the layout component
type NodeView struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Title string   `json:"title"`
	Group string   `json:"group"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`

	// Properties of the backing node, kept for edit and delete lookups.
	Properties map[string]any `json:"-"`
}

// EdgeView is one edge as handed to the layout component
type EdgeView struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label"`
	Arrows string `json:"arrows"`
	Title  string `json:"title"`

	Properties map[string]any `json:"-"`
}

// GraphDelta is a set of nodes and edges, either a full render or an expansion
type GraphDelta struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// PendingElement is the element an edit or delete dialog is open for
type PendingElement struct {
	ID   string      `json:"id"`
	Kind ElementKind `json:"kind"`
}

// Session is the server-side state of one open graph view.
// Nodes and edges are keyed by database element id.
type Session struct {
	ID        string              `json:"id"`
	State     ViewState           `json:"state"`
	Query     string              `json:"query,omitempty"`
	Nodes     map[string]NodeView `json:"-"`
	Edges     map[string]EdgeView `json:"-"`
	Editing   *PendingElement     `json:"editing,omitempty"`
	Deleting  *PendingElement     `json:"deleting,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	TouchedAt time.Time           `json:"touched_at"`
}

// NewSession returns an idle session with empty element maps
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		State:     StateIdle,
		Nodes:     make(map[string]NodeView),
		Edges:     make(map[string]EdgeView),
		CreatedAt: now,
		TouchedAt: now,
	}
}

// Transition moves the session to next or fails with ErrInvalidTransition
func (s *Session) Transition(next ViewState) error {
	if !CanTransition(s.State, next) {
		return errors.NewInvalidTransition(string(s.State), string(next))
	}
	s.State = next
	if next == StateRendered {
		s.Editing = nil
		s.Deleting = nil
	}
	return nil
}

// Reset drops every rendered element, used before a fresh render
func (s *Session) Reset() {
	s.Nodes = make(map[string]NodeView)
	s.Edges = make(map[string]EdgeView)
}

// Snapshot returns every rendered element
func (s *Session) Snapshot() GraphDelta {
	delta := GraphDelta{
		Nodes: make([]NodeView, 0, len(s.Nodes)),
		Edges: make([]EdgeView, 0, len(s.Edges)),
	}
	for _, n := range s.Nodes {
		delta.Nodes = append(delta.Nodes, n)
	}
	for _, e := range s.Edges {
		delta.Edges = append(delta.Edges, e)
	}
	return delta
}

// Validate checks that pending elements match the state and are still rendered
func (s *Session) Validate() error {
	if s.ID == "" {
		return ErrInvalidSession{Field: "id", Reason: "cannot be empty"}
	}
	if s.Editing != nil {
		if s.State != StateEditing {
			return ErrInvalidSession{Field: "editing", Reason: fmt.Sprintf("set while %s", s.State)}
		}
		if _, ok := s.Nodes[s.Editing.ID]; !ok {
			return ErrInvalidSession{Field: "editing", Reason: "node is not rendered"}
		}
	}
	if s.Deleting != nil && s.State != StateDeleting {
		return ErrInvalidSession{Field: "deleting", Reason: fmt.Sprintf("set while %s", s.State)}
	}
	return nil
}

// Errors

type ErrInvalidSession struct {
	Field  string
	Reason string
}

func (e ErrInvalidSession) Error() string {
	return fmt.Sprintf("invalid session: %s - %s", e.Field, e.Reason)
}
