package api

import (
	"fmt"
	"net/http"

	"archmap/backend/internal/drawing"
	"archmap/backend/internal/forms"
	"archmap/backend/internal/graphview"
	"archmap/backend/internal/state"
	"archmap/backend/internal/tables"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// Graph view
// ============================================================================

type loadRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params"`
}

type expandRequest struct {
	NodeID string  `json:"node_id" binding:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) graphOptions(c *gin.Context) {
	c.JSON(http.StatusOK, graphview.NetworkOptions())
}

// openSession accepts an empty body for the overview
func (s *Server) openSession(c *gin.Context) {
	var req loadRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	view, err := s.graphView.Open(c.Request.Context(), req.Query, req.Params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) reloadSession(c *gin.Context) {
	var req loadRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	view, err := s.graphView.Load(c.Request.Context(), c.Param("sid"), req.Query, req.Params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getSession(c *gin.Context) {
	view, err := s.graphView.Get(c.Param("sid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) closeSession(c *gin.Context) {
	s.graphView.Close(c.Param("sid"))
	c.Status(http.StatusNoContent)
}

func (s *Server) expandNode(c *gin.Context) {
	var req expandRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := s.graphView.Expand(c.Request.Context(), c.Param("sid"), req.NodeID, state.Position{X: req.X, Y: req.Y})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) beginEdit(c *gin.Context) {
	values, err := s.graphView.BeginEdit(c.Request.Context(), c.Param("sid"), c.Param("nid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

func (s *Server) submitEdit(c *gin.Context) {
	var in forms.ApplicationInput
	if !bindJSON(c, &in) {
		return
	}

	node, err := s.graphView.SubmitEdit(c.Request.Context(), c.Param("sid"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (s *Server) cancelEdit(c *gin.Context) {
	if err := s.graphView.CancelEdit(c.Param("sid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) beginDelete(c *gin.Context) {
	prompt, err := s.graphView.BeginDelete(c.Param("sid"), c.Param("eid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (s *Server) confirmDelete(c *gin.Context) {
	deleted, err := s.graphView.ConfirmDelete(c.Request.Context(), c.Param("sid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (s *Server) cancelDelete(c *gin.Context) {
	if err := s.graphView.CancelDelete(c.Param("sid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ============================================================================
// Tables
// ============================================================================

func tableQuery(c *gin.Context) (tables.Table, string, tables.SortConfig, error) {
	t, err := tables.ParseTable(c.Param("table"))
	if err != nil {
		return "", "", tables.SortConfig{}, err
	}
	cfg := tables.DefaultSort()
	if key := c.Query("sort"); key != "" {
		cfg.Key = key
	}
	cfg.Direction = tables.ParseDirection(c.Query("direction"))
	return t, c.Query("filter"), cfg, nil
}

func (s *Server) viewTable(c *gin.Context) {
	t, filter, cfg, err := tableQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := s.tables.View(c.Request.Context(), t, filter, cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) exportTable(c *gin.Context) {
	t, filter, cfg, err := tableQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := s.tables.View(c.Request.Context(), t, filter, cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(t)+".csv"))
	c.Status(http.StatusOK)
	if err := tables.WriteCSV(c.Writer, *view); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) tableRowForm(c *gin.Context) {
	t, err := tables.ParseTable(c.Param("table"))
	if err != nil {
		respondError(c, err)
		return
	}

	values, err := s.tables.Select(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// ============================================================================
// Drawings
// ============================================================================

func (s *Server) listDrawings(c *gin.Context) {
	list, err := s.drawings.List(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) saveDrawing(c *gin.Context) {
	var in forms.DrawingInput
	if !bindJSON(c, &in) {
		return
	}

	d, err := s.drawings.Save(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) loadDrawing(c *gin.Context) {
	d, err := s.drawings.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) updateDrawing(c *gin.Context) {
	var in forms.DrawingInput
	if !bindJSON(c, &in) {
		return
	}

	d, err := s.drawings.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) drawingPalette(c *gin.Context) {
	palette, err := s.drawings.Palette(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shape":   drawing.NewApplicationShape(),
		"palette": palette,
	})
}
