package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"archmap/backend/internal/api"
	"archmap/backend/internal/drawing"
	"archmap/backend/internal/graph"
	"archmap/backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUnconfiguredRouter wires the real stack without Neo4j credentials
func newUnconfiguredRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, _ := graph.Open(&config.Config{BreakerEnabled: true}, nil)
	server := api.NewServer(api.Deps{
		Repository: repo,
		Drawings:   drawing.NewMemoryStore(),
	})
	return server.Router()
}

func TestHealthEndpoint(t *testing.T) {
	router := newUnconfiguredRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestQueryEndpoint_MissingCredentials(t *testing.T) {
	router := newUnconfiguredRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/query", bytes.NewBufferString(`{"query":"RETURN 1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "config", response["type"])
	assert.Contains(t, response["error"], "NEO4J_URI")
}

func TestDrawingsServeWithoutGraph(t *testing.T) {
	router := newUnconfiguredRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/drawings", bytes.NewBufferString(`{"filename":"Landscape","snapshot":{"shapes":[]}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, float64(1), saved["version"])
}
