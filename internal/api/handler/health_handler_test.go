package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Readiness(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	handler := NewHealthHandler(map[string]Pinger{"redis": ok})
	_, c, rec := newContext(http.MethodGet, "/health/ready", "", domain.Projection{})
	if err := handler.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	handler = NewHealthHandler(map[string]Pinger{"redis": ok, "mongodb": down})
	_, c, rec = newContext(http.MethodGet, "/health/ready", "", domain.Projection{})
	if err := handler.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["mongodb"].Status != "unhealthy" || resp.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected readiness payload: %+v", resp)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(nil)
	_, c, rec := newContext(http.MethodGet, "/health", "", domain.Projection{})
	if err := handler.Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
