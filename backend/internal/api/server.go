package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"archmap/backend/internal/drawing"
	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/internal/graphview"
	"archmap/backend/internal/metrics"
	"archmap/backend/internal/state"
	"archmap/backend/internal/tables"
	"archmap/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Repository is everything the HTTP surface needs from the domain repository
type Repository interface {
	graphview.GraphSource
	tables.Repository
	CreateApplication(ctx context.Context, app graph.Application) (*graph.ApplicationSummary, error)
	CreateFlow(ctx context.Context, flow graph.Flow) (*graph.FlowRecord, error)
}

// Deps wires the server's collaborators
type Deps struct {
	Repository   Repository
	Drawings     drawing.Store
	Sessions     *state.SessionStore
	Collector    *metrics.Collector
	QueryTimeout time.Duration
	Production   bool
}

// Server is the HTTP API
type Server struct {
	repo         Repository
	graphView    *graphview.Service
	tables       *tables.Service
	drawings     *drawing.Service
	collector    *metrics.Collector
	queryTimeout time.Duration
	production   bool
	logger       *zap.Logger
}

var registerOnce sync.Once

// registerBindings adds the csvlist rule and json field names to gin's
// validator so ShouldBindJSON enforces form rules.
func registerBindings() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := forms.RegisterValidations(v); err != nil {
				logger.Get().Error("Failed to register form validations", zap.Error(err))
			}
		}
	})
}

// NewServer builds the services on top of deps
func NewServer(deps Deps) *Server {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = state.NewSessionStore(state.DefaultSessionTTL)
	}
	timeout := deps.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Server{
		repo:         deps.Repository,
		graphView:    graphview.NewService(deps.Repository, deps.Repository, sessions),
		tables:       tables.NewService(deps.Repository),
		drawings:     drawing.NewService(deps.Drawings, deps.Repository, deps.Collector),
		collector:    deps.Collector,
		queryTimeout: timeout,
		production:   deps.Production,
		logger:       logger.Named("api"),
	}
}

// Router returns the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	registerBindings()
	if s.production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors())
	router.Use(metricsMiddleware(s.collector))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(s.collector.Handler()))

	api := router.Group("/api")
	{
		api.POST("/query", s.runQuery)

		apps := api.Group("/applications")
		apps.GET("", s.listApplications)
		apps.POST("", s.createApplication)
		apps.GET("/:id", s.getApplication)
		apps.PUT("/:id", s.editApplication)
		apps.DELETE("/:id", s.deleteApplication)

		flows := api.Group("/flows")
		flows.GET("", s.listFlows)
		flows.POST("", s.createFlow)
		flows.GET("/:id", s.getFlow)
		flows.PUT("/:id", s.editFlow)
		flows.DELETE("/:id", s.deleteFlow)

		api.GET("/forms/:name", s.getForm)
		api.POST("/forms/:name/validate", s.validateForm)

		g := api.Group("/graph")
		g.GET("/options", s.graphOptions)
		g.POST("/sessions", s.openSession)
		g.GET("/sessions/:sid", s.getSession)
		g.DELETE("/sessions/:sid", s.closeSession)
		g.POST("/sessions/:sid/reload", s.reloadSession)
		g.POST("/sessions/:sid/expand", s.expandNode)
		g.POST("/sessions/:sid/nodes/:nid/edit", s.beginEdit)
		g.PUT("/sessions/:sid/nodes/:nid/edit", s.submitEdit)
		g.POST("/sessions/:sid/edit/cancel", s.cancelEdit)
		g.POST("/sessions/:sid/elements/:eid/delete", s.beginDelete)
		g.POST("/sessions/:sid/delete/confirm", s.confirmDelete)
		g.POST("/sessions/:sid/delete/cancel", s.cancelDelete)

		api.GET("/tables/:table", s.viewTable)
		api.GET("/tables/:table/export", s.exportTable)
		api.GET("/tables/:table/:id/form", s.tableRowForm)

		drawings := api.Group("/drawings")
		drawings.GET("", s.listDrawings)
		drawings.POST("", s.saveDrawing)
		drawings.GET("/palette", s.drawingPalette)
		drawings.GET("/:id", s.loadDrawing)
		drawings.PUT("/:id", s.updateDrawing)
	}

	return router
}
