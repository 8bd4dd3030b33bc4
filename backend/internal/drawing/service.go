package drawing

import (
	"context"
	"sort"
	"strings"

	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/internal/metrics"
	"archmap/backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationLister feeds the shape palette
type ApplicationLister interface {
	ListApplications(ctx context.Context) ([]graph.ApplicationSummary, error)
}

// Service saves and loads drawings
type Service struct {
	store     Store
	apps      ApplicationLister
	validator *forms.Validator
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewService creates a drawing service. apps may be nil, in which case the
// palette only offers the blank application shape.
func NewService(store Store, apps ApplicationLister, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		apps:      apps,
		validator: forms.NewValidator(),
		collector: collector,
		logger:    logger.Named("drawing"),
	}
}

// Save inserts a new drawing at version 1
func (s *Service) Save(ctx context.Context, in forms.DrawingInput) (*Drawing, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.store.Insert(ctx, Drawing{
		ID:       uuid.NewString(),
		Filename: strings.TrimSpace(in.Filename),
		Snapshot: in.Snapshot,
		Version:  1,
		UserID:   in.UserID,
	})
	s.collector.ObserveDrawingWrite("insert", err)
	if err != nil {
		s.logger.Error("Failed to save drawing", zap.String("filename", in.Filename), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Drawing saved",
		zap.String("drawing_id", d.ID),
		zap.String("filename", d.Filename),
		zap.String("user_id", d.UserID),
	)
	return d, nil
}

// Update overwrites the snapshot and bumps the version by exactly one.
// in.Version is the version the editor loaded; zero means whatever is
// current. A save that lost the race fails with a version conflict.
func (s *Service) Update(ctx context.Context, id string, in forms.DrawingInput) (*Drawing, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	expected := in.Version
	if expected == 0 {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		expected = current.Version
	}

	d, err := s.store.UpdateSnapshot(ctx, id, expected, strings.TrimSpace(in.Filename), in.Snapshot)
	s.collector.ObserveDrawingWrite("update", err)
	if err != nil {
		s.logger.Warn("Failed to update drawing",
			zap.String("drawing_id", id),
			zap.Int("expected_version", expected),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Drawing updated", zap.String("drawing_id", id), zap.Int("version", d.Version))
	return d, nil
}

// Load returns the drawing with its snapshot
func (s *Service) Load(ctx context.Context, id string) (*Drawing, error) {
	return s.store.Get(ctx, id)
}

// List returns summaries of the user's drawings
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	ds, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Summary())
	}
	return out, nil
}

// Palette lists the shapes that can be dragged onto the canvas: the blank
// application shape first, then one per application whose name contains
// search.
func (s *Service) Palette(ctx context.Context, search string) ([]ShapeTemplate, error) {
	palette := []ShapeTemplate{NewApplicationShape()}
	if s.apps == nil {
		return palette, nil
	}

	apps, err := s.apps.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Application.Name) < strings.ToLower(apps[j].Application.Name)
	})

	needle := strings.ToLower(strings.TrimSpace(search))
	for _, a := range apps {
		if needle != "" && !strings.Contains(strings.ToLower(a.Application.Name), needle) {
			continue
		}
		shape := NewApplicationShape()
		shape.Props.Name = a.Application.Name
		shape.Props.ApplicationID = a.Application.ApplicationID
		palette = append(palette, shape)
	}
	return palette, nil
}
