package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accountd/account-service/internal/core/ports"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp 10.0.0.7:6379: connection refused") })

	tests := []struct {
		name     string
		deps      map[string]ports.Pinger
		wantCode  int
		wantRedis string
	}{
		{"all healthy", map[string]ports.Pinger{"directory": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]ports.Pinger{"directory": ok, "redis": down}, http.StatusServiceUnavailable, "unhealthy"},
		{"nil probe skipped", map[string]ports.Pinger{"directory": ok, "redis": nil}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewHealthDependenciesHandler(tt.deps, zerolog.Nop()).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if _, ok := resp.Dependencies["directory"]; !ok {
				t.Fatalf("directory missing from %+v", resp.Dependencies)
			}
			if got := resp.Dependencies["redis"].Status; got != tt.wantRedis {
				t.Fatalf("redis status: expected %q, got %q", tt.wantRedis, got)
			}
			if body := rec.Body.String(); strings.Contains(body, "10.0.0.7") || strings.Contains(body, "refused") {
				t.Fatalf("ping error leaked into response: %s", body)
			}
		})
	}
}
