package graphview

import (
	"context"
	"fmt"

	"archmap/backend/internal/constants"
	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/internal/state"
	"archmap/backend/pkg/errors"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
)

// GraphSource supplies the rows a view renders
type GraphSource interface {
	Overview(ctx context.Context, limit int) ([]graph.Row, error)
	Neighborhood(ctx context.Context, elementID string) ([]graph.Row, error)
	RunQuery(ctx context.Context, query string, params map[string]any) ([]graph.Row, error)
}

// ElementStore performs the edits and deletes started from the view
type ElementStore interface {
	GetApplication(ctx context.Context, applicationID string) (*graph.ApplicationSummary, error)
	EditApplication(ctx context.Context, app graph.Application) (*graph.ApplicationSummary, error)
	DeleteApplication(ctx context.Context, applicationID string) (int64, error)
	DeleteFlow(ctx context.Context, flowID string) (int64, error)
}

// Service drives graph view sessions through their states
type Service struct {
	source    GraphSource
	elements  ElementStore
	sessions  *state.SessionStore
	validator *forms.Validator
	logger    *zap.Logger
}

// NewService creates a graph view service
func NewService(source GraphSource, elements ElementStore, sessions *state.SessionStore) *Service {
	return &Service{
		source:    source,
		elements:  elements,
		sessions:  sessions,
		validator: forms.NewValidator(),
		logger:    logger.Named("graphview"),
	}
}

// SessionView is what clients receive when they open or reload a view
type SessionView struct {
	Session *state.Session   `json:"session"`
	Graph   state.GraphDelta `json:"graph"`
}

// ExpandResult carries the added elements and the stabilization to apply
type ExpandResult struct {
	Added         state.GraphDelta `json:"added"`
	Stabilization map[string]any   `json:"stabilization,omitempty"`
}

// DeletePrompt is the confirmation shown before a delete
type DeletePrompt struct {
	ElementID string            `json:"element_id"`
	Kind      state.ElementKind `json:"kind"`
	Label     string            `json:"label"`
	Message   string            `json:"message"`
}

// Open creates a session and renders either the overview or query
func (s *Service) Open(ctx context.Context, query string, params map[string]any) (*SessionView, error) {
	sess := s.sessions.Create()
	view, err := s.Load(ctx, sess.ID, query, params)
	if err != nil {
		s.sessions.Delete(sess.ID)
		return nil, err
	}
	return view, nil
}

// Load (re)renders a session. An empty query loads the overview.
func (s *Service) Load(ctx context.Context, sessionID, query string, params map[string]any) (*SessionView, error) {
	if err := s.sessions.Update(sessionID, func(sess *state.Session) error {
		return sess.Transition(state.StateLoading)
	}); err != nil {
		return nil, err
	}

	var rows []graph.Row
	var err error
	if query == "" {
		rows, err = s.source.Overview(ctx, constants.OverviewLimit)
	} else {
		rows, err = s.source.RunQuery(ctx, query, params)
	}

	var view *SessionView
	updateErr := s.sessions.Update(sessionID, func(sess *state.Session) error {
		if err != nil {
			return sess.Transition(state.StateIdle)
		}
		sess.Query = query
		delta := Render(sess, rows)
		if tErr := sess.Transition(state.StateRendered); tErr != nil {
			return tErr
		}
		view = &SessionView{Session: detached(sess), Graph: delta}
		return nil
	})
	if err != nil {
		s.logger.Warn("Graph load failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	if updateErr != nil {
		return nil, updateErr
	}

	s.logger.Debug("Graph rendered",
		zap.String("session_id", sessionID),
		zap.Int("nodes", len(view.Graph.Nodes)),
		zap.Int("edges", len(view.Graph.Edges)),
	)
	return view, nil
}

// Get returns the session and everything it has rendered
func (s *Service) Get(sessionID string) (*SessionView, error) {
	var view *SessionView
	err := s.sessions.View(sessionID, func(sess *state.Session) error {
		view = &SessionView{Session: detached(sess), Graph: sess.Snapshot()}
		return nil
	})
	return view, err
}

// detached copies the session header without the element maps, which stay
// behind the store's lock.
func detached(sess *state.Session) *state.Session {
	c := *sess
	c.Nodes, c.Edges = nil, nil
	return &c
}

// Close discards a session
func (s *Service) Close(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Expand adds the neighbourhood of nodeID. Expansion never removes anything.
func (s *Service) Expand(ctx context.Context, sessionID, nodeID string, origin state.Position) (*ExpandResult, error) {
	if err := s.sessions.Update(sessionID, func(sess *state.Session) error {
		if _, ok := sess.Nodes[nodeID]; !ok {
			return errors.NewElementNotFound(nodeID)
		}
		return sess.Transition(state.StateExpanding)
	}); err != nil {
		return nil, err
	}

	rows, err := s.source.Neighborhood(ctx, nodeID)

	result := &ExpandResult{}
	updateErr := s.sessions.Update(sessionID, func(sess *state.Session) error {
		if err == nil {
			result.Added = Expand(sess, origin, rows)
		}
		return sess.Transition(state.StateRendered)
	})
	if err != nil {
		return nil, err
	}
	if updateErr != nil {
		return nil, updateErr
	}

	if len(result.Added.Nodes) > 0 || len(result.Added.Edges) > 0 {
		result.Stabilization = ExpansionStabilization()
	}
	return result, nil
}

// ============================================================================
// Edit
// ============================================================================

func applicationIDOf(n state.NodeView) (string, bool) {
	id, ok := n.Properties["application_id"].(string)
	return id, ok && id != ""
}

// BeginEdit opens the edit dialog for an application node and returns its
// current form values.
func (s *Service) BeginEdit(ctx context.Context, sessionID, nodeID string) (*forms.ApplicationInput, error) {
	var appID string
	if err := s.sessions.Update(sessionID, func(sess *state.Session) error {
		node, ok := sess.Nodes[nodeID]
		if !ok {
			return errors.NewElementNotFound(nodeID)
		}
		id, ok := applicationIDOf(node)
		if !ok {
			return errors.NewValidationFailed("only applications can be edited", map[string]string{"node_id": nodeID})
		}
		if err := sess.Transition(state.StateEditing); err != nil {
			return err
		}
		appID = id
		sess.Editing = &state.PendingElement{ID: nodeID, Kind: state.ElementNode}
		return nil
	}); err != nil {
		return nil, err
	}

	summary, err := s.elements.GetApplication(ctx, appID)
	if err != nil {
		_ = s.CancelEdit(sessionID)
		return nil, err
	}
	values := forms.ApplicationFormValues(summary.Application)
	return &values, nil
}

// SubmitEdit saves the edit dialog. A failed save keeps the dialog open.
func (s *Service) SubmitEdit(ctx context.Context, sessionID string, in forms.ApplicationInput) (*state.NodeView, error) {
	var nodeID, appID string
	if err := s.sessions.View(sessionID, func(sess *state.Session) error {
		if sess.State != state.StateEditing || sess.Editing == nil {
			return errors.NewInvalidTransition(string(sess.State), string(state.StateRendered))
		}
		nodeID = sess.Editing.ID
		appID, _ = applicationIDOf(sess.Nodes[nodeID])
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateApplication(in); err != nil {
		return nil, err
	}
	app := forms.ApplicationFromInput(in)
	app.ApplicationID = appID

	summary, err := s.elements.EditApplication(ctx, app)
	if err != nil {
		return nil, err
	}

	// The save has landed, so the session only closes the dialog if it is
	// still open for this node. A cancel during the save already did that.
	var updated state.NodeView
	err = s.sessions.Update(sessionID, func(sess *state.Session) error {
		refreshed := nodeView(graph.Node{
			ElementID:  nodeID,
			Labels:     []string{constants.ApplicationLabel},
			Properties: applicationProperties(summary.Application),
		})
		if node, ok := sess.Nodes[nodeID]; ok {
			refreshed.X, refreshed.Y = node.X, node.Y
			sess.Nodes[nodeID] = refreshed
		}
		updated = refreshed
		if sess.State != state.StateEditing || sess.Editing == nil || sess.Editing.ID != nodeID {
			return nil
		}
		return sess.Transition(state.StateRendered)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application edited from graph", zap.String("application_id", appID))
	return &updated, nil
}

// CancelEdit closes the edit dialog without saving
func (s *Service) CancelEdit(sessionID string) error {
	return s.sessions.Update(sessionID, func(sess *state.Session) error {
		if sess.State != state.StateEditing {
			return errors.NewInvalidTransition(string(sess.State), string(state.StateRendered))
		}
		return sess.Transition(state.StateRendered)
	})
}

// ============================================================================
// Delete
// ============================================================================

// BeginDelete asks for confirmation before deleting a node or edge
func (s *Service) BeginDelete(sessionID, elementID string) (*DeletePrompt, error) {
	var prompt *DeletePrompt
	err := s.sessions.Update(sessionID, func(sess *state.Session) error {
		var kind state.ElementKind
		var label, noun string
		if node, ok := sess.Nodes[elementID]; ok {
			if _, ok := applicationIDOf(node); !ok {
				return errors.NewValidationFailed("only applications can be deleted", map[string]string{"element_id": elementID})
			}
			kind, label, noun = state.ElementNode, node.Label, "application"
		} else if edge, ok := sess.Edges[elementID]; ok {
			if _, ok := edge.Properties["flow_id"].(string); !ok {
				return errors.NewValidationFailed("only flows can be deleted", map[string]string{"element_id": elementID})
			}
			kind, label, noun = state.ElementEdge, edge.Label, "flow"
		} else {
			return errors.NewElementNotFound(elementID)
		}

		if err := sess.Transition(state.StateDeleting); err != nil {
			return err
		}
		sess.Deleting = &state.PendingElement{ID: elementID, Kind: kind}
		prompt = &DeletePrompt{
			ElementID: elementID,
			Kind:      kind,
			Label:     label,
			Message:   fmt.Sprintf("Are you sure you want to delete %s %q? This action cannot be undone.", noun, label),
		}
		return nil
	})
	return prompt, err
}

// ConfirmDelete deletes the pending element and removes it from the view.
// On failure the dialog closes and nothing is removed.
func (s *Service) ConfirmDelete(ctx context.Context, sessionID string) (*state.PendingElement, error) {
	var pending state.PendingElement
	var domainID string
	if err := s.sessions.View(sessionID, func(sess *state.Session) error {
		if sess.State != state.StateDeleting || sess.Deleting == nil {
			return errors.NewInvalidTransition(string(sess.State), string(state.StateRendered))
		}
		pending = *sess.Deleting
		if pending.Kind == state.ElementNode {
			domainID, _ = applicationIDOf(sess.Nodes[pending.ID])
		} else {
			domainID, _ = sess.Edges[pending.ID].Properties["flow_id"].(string)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	var err error
	if pending.Kind == state.ElementNode {
		_, err = s.elements.DeleteApplication(ctx, domainID)
	} else {
		_, err = s.elements.DeleteFlow(ctx, domainID)
	}

	updateErr := s.sessions.Update(sessionID, func(sess *state.Session) error {
		if err == nil {
			removeElement(sess, pending)
		}
		return sess.Transition(state.StateRendered)
	})
	if err != nil {
		s.logger.Warn("Delete from graph failed",
			zap.String("element_id", pending.ID),
			zap.String("kind", string(pending.Kind)),
			zap.Error(err),
		)
		return nil, err
	}
	if updateErr != nil {
		return nil, updateErr
	}
	return &pending, nil
}

// CancelDelete closes the confirmation without deleting
func (s *Service) CancelDelete(sessionID string) error {
	return s.sessions.Update(sessionID, func(sess *state.Session) error {
		if sess.State != state.StateDeleting {
			return errors.NewInvalidTransition(string(sess.State), string(state.StateRendered))
		}
		return sess.Transition(state.StateRendered)
	})
}

func removeElement(sess *state.Session, el state.PendingElement) {
	if el.Kind == state.ElementEdge {
		delete(sess.Edges, el.ID)
		return
	}
	delete(sess.Nodes, el.ID)
	for id, e := range sess.Edges {
		if e.From == el.ID || e.To == el.ID {
			delete(sess.Edges, id)
		}
	}
}

// applicationProperties flattens an application into node properties for
// tooltips, dropping empty values the way the database drops nulls.
func applicationProperties(app graph.Application) map[string]any {
	props := make(map[string]any)
	for k, v := range app.Properties() {
		if v != nil {
			props[k] = v
		}
	}
	return props
}
