package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/storefront-map/internal/app"
	"github.com/mohammed-shakir/storefront-map/internal/core/health"
	"github.com/mohammed-shakir/storefront-map/internal/store/redisstore"
)

type noSessions struct{}

func (noSessions) Create(context.Context) (*app.Controller, error) { return nil, context.Canceled }
func (noSessions) Get(string) (*app.Controller, error)             { return nil, context.Canceled }

type ready bool

func (r ready) Readiness() (bool, int) { return bool(r), 0 }

func TestNewHandler_Routes(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Sessions: noSessions{},
		Ready:    ready(false),
	})

	cases := []struct {
		path     string
		want     int
		contains string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusServiceUnavailable, "not_ready"},
		{"/metrics", http.StatusOK, "go_goroutines"},
		{"/", http.StatusOK, `id="filter-buttons"`},
		{"/app.js", http.StatusOK, "/api/sessions"},
		{"/style.css", http.StatusOK, "button.active"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.want {
				t.Fatalf("status=%d want %d", rr.Code, tc.want)
			}
			if !strings.Contains(rr.Body.String(), tc.contains) {
				t.Fatalf("body missing %q", tc.contains)
			}
		})
	}
}

func TestNewHandler_ReadyzFollowsRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rc.Close() }()

	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Sessions: noSessions{},
		Ready:    ready(true),
		Checks:   []health.Check{health.Named("redis", rc.Ping)},
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200 (%s)", rr.Code, rr.Body.String())
	}

	mr.Close()
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), `"redis"`) {
		t.Fatalf("status=%d body=%s, want 503 naming redis", rr.Code, rr.Body.String())
	}
}
