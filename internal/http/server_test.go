package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/urbantwin/citytwin-backend/internal/http/handlers"
)

func TestServerServesConfiguredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(RouterConfig{
		ServiceName:   "citytwin-test",
		HealthHandler: httpH.NewHealthHandler(),
	})
	if srv == nil || srv.Engine == nil {
		t.Fatal("NewServer returned nil engine")
	}

	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("healthcheck body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map/styles", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured route status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
