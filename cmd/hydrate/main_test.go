package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/hydrate/internal/config"
	"github.com/vango-dev/hydrate/pkg/hydrate"
)

func TestBuildServerStoreModeWithMetrics(t *testing.T) {
	cfg := config.New()
	cfg.Hydration.Mode = config.ModeStore
	cfg.Metrics.Enabled = true

	s, err := buildServer(context.Background(), cfg, nil, false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<p id="death">€a true</p>`) {
		t.Errorf("page missing kill result:\n%s", body)
	}
	_, src, ok := hydrate.ExtractPayload(body)
	if !ok || src == "" {
		t.Fatalf("store mode page has no payload reference")
	}

	payload := httptest.NewRecorder()
	s.ServeHTTP(payload, httptest.NewRequest(http.MethodGet, src, nil))
	if payload.Code != http.StatusOK {
		t.Errorf("payload status = %d", payload.Code)
	}

	metrics := httptest.NewRecorder()
	s.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(metrics.Body.String(), "hydrate_page_renders_total") {
		t.Error("metrics endpoint does not expose page renders")
	}
}

func TestBuildServerWebSocketDisabledByDefault(t *testing.T) {
	s, err := buildServer(context.Background(), config.New(), nil, false, slog.Default())
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_fn/_ws", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != config.DefaultAddr {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	cmd := initCmd()
	cmd.SetArgs([]string{"--dir", dir})
	cmd.SetOut(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := config.Load(dir); err != nil {
		t.Fatalf("Load after init: %v", err)
	}

	again := initCmd()
	again.SetArgs([]string{"--dir", dir})
	again.SetOut(io.Discard)
	again.SetErr(io.Discard)
	if err := again.Execute(); err == nil {
		t.Error("init should refuse to overwrite without --force")
	}
}

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}
