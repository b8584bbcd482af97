package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
}

func TestHealthStoreDown(t *testing.T) {
	handler := Health(pingerFunc(func(context.Context) error { return errors.New("down") }), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestWelcome(t *testing.T) {
	rec := httptest.NewRecorder()
	Welcome("/api/v1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp WelcomeResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "Welcome to Student Management API" || resp.API != "/api/v1" || resp.Health != "/health" {
		t.Fatalf("unexpected welcome %+v", resp)
	}
}
