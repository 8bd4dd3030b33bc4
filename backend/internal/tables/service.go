package tables

import (
	"context"

	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repository is the subset of the domain repository the tables need
type Repository interface {
	ListApplications(ctx context.Context) ([]graph.ApplicationSummary, error)
	ListFlows(ctx context.Context) ([]graph.FlowRecord, error)
	GetApplication(ctx context.Context, applicationID string) (*graph.ApplicationSummary, error)
	GetFlow(ctx context.Context, flowID string) (*graph.FlowRecord, error)
	EditApplication(ctx context.Context, app graph.Application) (*graph.ApplicationSummary, error)
	EditFlow(ctx context.Context, flow graph.Flow) (*graph.FlowRecord, error)
	DeleteApplication(ctx context.Context, applicationID string) (int64, error)
	DeleteFlow(ctx context.Context, flowID string) (int64, error)
}

// Service serves the application and flow tables
type Service struct {
	repo      Repository
	validator *forms.Validator
	logger    *zap.Logger
}

// NewService creates a table service
func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		validator: forms.NewValidator(),
		logger:    logger.Named("tables"),
	}
}

// Data holds both tables' rows
type Data struct {
	Applications []Record `json:"applications"`
	Flows        []Record `json:"flows"`
}

// Rows returns the rows of one table
func (d Data) Rows(t Table) []Record {
	if t == TableFlows {
		return d.Flows
	}
	return d.Applications
}

// Load fetches applications and flows concurrently. Either failure fails the load.
func (s *Service) Load(ctx context.Context) (*Data, error) {
	g, gctx := errgroup.WithContext(ctx)

	var data Data
	g.Go(func() error {
		apps, err := s.repo.ListApplications(gctx)
		if err != nil {
			return err
		}
		data.Applications = ApplicationRecords(apps)
		return nil
	})
	g.Go(func() error {
		flows, err := s.repo.ListFlows(gctx)
		if err != nil {
			return err
		}
		data.Flows = FlowRecords(flows)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Table load failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("Tables loaded",
		zap.Int("applications", len(data.Applications)),
		zap.Int("flows", len(data.Flows)),
	)
	return &data, nil
}

// View loads one table and applies filter and sort
func (s *Service) View(ctx context.Context, t Table, filter string, cfg SortConfig) (*View, error) {
	var rows []Record
	if t == TableFlows {
		flows, err := s.repo.ListFlows(ctx)
		if err != nil {
			return nil, err
		}
		rows = FlowRecords(flows)
	} else {
		apps, err := s.repo.ListApplications(ctx)
		if err != nil {
			return nil, err
		}
		rows = ApplicationRecords(apps)
	}
	view := BuildView(t, rows, filter, cfg)
	return &view, nil
}

// Select returns the edit form values of the row with the given domain id.
// The result is an *forms.ApplicationInput or *forms.FlowInput.
func (s *Service) Select(ctx context.Context, t Table, id string) (any, error) {
	if t == TableFlows {
		rec, err := s.repo.GetFlow(ctx, id)
		if err != nil {
			return nil, err
		}
		values := forms.FlowFormValues(rec.Flow)
		return &values, nil
	}

	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	values := forms.ApplicationFormValues(app.Application)
	return &values, nil
}

// EditApplication validates and saves the application with the given id
func (s *Service) EditApplication(ctx context.Context, id string, in forms.ApplicationInput) (*graph.ApplicationSummary, error) {
	if err := s.validator.ValidateApplication(in); err != nil {
		return nil, err
	}
	app := forms.ApplicationFromInput(in)
	app.ApplicationID = id
	return s.repo.EditApplication(ctx, app)
}

// EditFlow validates and saves the flow with the given id
func (s *Service) EditFlow(ctx context.Context, id string, in forms.FlowInput) (*graph.FlowRecord, error) {
	if err := s.validator.ValidateFlow(in); err != nil {
		return nil, err
	}
	flow := forms.FlowFromInput(in)
	flow.FlowID = id
	return s.repo.EditFlow(ctx, flow)
}

// Delete removes the row with the given domain id
func (s *Service) Delete(ctx context.Context, t Table, id string) error {
	var err error
	if t == TableFlows {
		_, err = s.repo.DeleteFlow(ctx, id)
	} else {
		_, err = s.repo.DeleteApplication(ctx, id)
	}
	return err
}
