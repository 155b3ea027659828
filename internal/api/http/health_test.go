package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(t *testing.T, h *HealthHandler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	h.RegisterRoutes(router)

	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	rr := serve(t, NewHealthHandler("test-service", "1.0.0", fakePinger{}), "GET", "/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var response HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %s", response.Status)
	}
	if response.Service != "test-service" {
		t.Errorf("expected service 'test-service', got %s", response.Service)
	}
	if response.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %s", response.Version)
	}
	if response.DB != "up" {
		t.Errorf("expected db 'up', got %s", response.DB)
	}
	if response.Uptime == "" {
		t.Errorf("expected uptime to be set")
	}
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	rr := serve(t, NewHealthHandler("svc", "1", fakePinger{err: errors.New("refused")}), "GET", "/healthz")

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusServiceUnavailable)
	}
	var response HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.DB != "down" || response.Status != "degraded" {
		t.Errorf("expected degraded/down, got %s/%s", response.Status, response.DB)
	}
}

func TestHealthCheckWithoutDatabase(t *testing.T) {
	rr := serve(t, NewHealthHandler("svc", "1", nil), "GET", "/health")

	var response HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.DB != "disabled" {
		t.Errorf("expected db 'disabled', got %s", response.DB)
	}
}

func TestRoot(t *testing.T) {
	rr := serve(t, NewHealthHandler("svc", "1", nil), "GET", "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["message"] != "Backend ok" {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	rr := serve(t, NewHealthHandler("svc", "1", nil), "POST", "/health")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusMethodNotAllowed)
	}
}
