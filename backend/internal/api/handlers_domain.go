package api

import (
	"context"
	"net/http"
	"time"

	"archmap/backend/internal/forms"
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// queryRequest is the ad-hoc console payload
type queryRequest struct {
	Query     string         `json:"query" binding:"required"`
	Params    map[string]any `json:"params"`
	TimeoutMs int            `json:"timeout_ms"`
}

func (s *Server) runQuery(c *gin.Context) {
	var req queryRequest
	if !bindJSON(c, &req) {
		return
	}

	timeout := s.queryTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.repo.RunQuery(ctx, req.Query, req.Params)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []graph.Row{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":       rows,
		"count":      len(rows),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// ============================================================================
// Applications
// ============================================================================

func (s *Server) listApplications(c *gin.Context) {
	apps, err := s.repo.ListApplications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) createApplication(c *gin.Context) {
	in := forms.NewApplicationInput()
	if !bindJSON(c, &in) {
		return
	}

	created, err := s.repo.CreateApplication(c.Request.Context(), forms.ApplicationFromInput(in))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getApplication(c *gin.Context) {
	app, err := s.repo.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"application": app,
		"form":        forms.ApplicationFormValues(app.Application),
	})
}

func (s *Server) editApplication(c *gin.Context) {
	var in forms.ApplicationInput
	if !bindJSON(c, &in) {
		return
	}

	updated, err := s.tables.EditApplication(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteApplication(c *gin.Context) {
	id := c.Param("id")
	deleted, err := s.repo.DeleteApplication(c.Request.Context(), id)
	if err != nil {
		s.logger.Warn("Application delete refused", zap.String("application_id", id), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ============================================================================
// Flows
// ============================================================================

func (s *Server) listFlows(c *gin.Context) {
	flows, err := s.repo.ListFlows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flows)
}

func (s *Server) createFlow(c *gin.Context) {
	in := forms.NewFlowInput()
	if !bindJSON(c, &in) {
		return
	}

	created, err := s.repo.CreateFlow(c.Request.Context(), forms.FlowFromInput(in))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getFlow(c *gin.Context) {
	flow, err := s.repo.GetFlow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flow": flow,
		"form": forms.FlowFormValues(flow.Flow),
	})
}

func (s *Server) editFlow(c *gin.Context) {
	var in forms.FlowInput
	if !bindJSON(c, &in) {
		return
	}

	updated, err := s.tables.EditFlow(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteFlow(c *gin.Context) {
	deleted, err := s.repo.DeleteFlow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ============================================================================
// Forms
// ============================================================================

func (s *Server) getForm(c *gin.Context) {
	name := c.Param("name")
	d, err := forms.Load(name)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"descriptor": d}
	switch name {
	case "application":
		body["defaults"] = forms.NewApplicationInput()
	case "flow":
		body["defaults"] = forms.NewFlowInput()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) validateForm(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		respondError(c, errors.NewValidationFailed(err.Error(), nil))
		return
	}

	if err := forms.ValidateValues(c.Param("name"), values); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
