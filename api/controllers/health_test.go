package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ledgerline/ledgerline-backend/pkg/config"
)

type testPinger struct {
	err error
}

func (p *testPinger) Ping(ctx context.Context) error {
	return p.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if resp.Header().Get("X-Ledgerline-Env") != "test" {
		t.Fatal("missing env header")
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, newTestLogger(), &testPinger{}, &testPinger{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != "ready" {
		t.Fatalf("unexpected status %q", envelope.Data.Status)
	}
	if envelope.Data.Dependencies["database"] != "ok" || envelope.Data.Dependencies["redis"] != "ok" {
		t.Fatalf("unexpected dependencies %+v", envelope.Data.Dependencies)
	}
	// optional clients that were never wired report skipped, not down
	if envelope.Data.Dependencies["storage"] != "skipped" || envelope.Data.Dependencies["bigquery"] != "skipped" {
		t.Fatalf("unexpected optional dependencies %+v", envelope.Data.Dependencies)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, newTestLogger(), &testPinger{err: errors.New("no connection")}, &testPinger{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
