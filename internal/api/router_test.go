package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetupRouterRegistersHealthzAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DanceType: "2", Environment: "test"}
	router := SetupRouter(cfg, "v0.0.0-test")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRouterRegistersCompileRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DanceType: "2", Environment: "test"}
	router := SetupRouter(cfg, "v0.0.0-test")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compile", nil))
	// Malformed (empty) body is a client error, not a 404 - confirms the
	// route is wired rather than falling through to gin's default.
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}

func TestSetupRouterUnknownRouteReturnsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DanceType: "2", Environment: "test"}
	router := SetupRouter(cfg, "v0.0.0-test")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
