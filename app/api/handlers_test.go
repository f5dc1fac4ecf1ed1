package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskwire/riskwire/app/alert"
	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/resilience"
	"github.com/riskwire/riskwire/app/store"
)

func newTestServer(t *testing.T, apiAccessKey string) (*httptest.Server, *store.AlertRepository) {
	t.Helper()

	db, err := store.NewDB(":memory:")
	if err != nil {
		t.Fatalf("Expected in-memory database to open, got: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := store.RunMigrations(db); err != nil {
		t.Fatalf("Expected migrations to apply, got: %v", err)
	}
	repo := store.NewAlertRepository(db)

	registry := resilience.NewRegistry(resilience.ServiceConfig{TokensPerMinute: 60}, nil)
	handler := NewHandler(repo, metrics.NewCollector(), registry, "test")
	server := httptest.NewServer(NewServer(handler, apiAccessKey))
	t.Cleanup(server.Close)

	return server, repo
}

func TestGetHealth(t *testing.T) {
	server, _ := newTestServer(t, "")

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Expected health request to succeed, got: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestAPIListAlerts_RequiresKey(t *testing.T) {
	server, _ := newTestServer(t, "secret")

	resp, err := http.Get(server.URL + "/api/alerts")
	if err != nil {
		t.Fatalf("Expected request to complete, got: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/alerts", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Expected request to complete, got: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 with key, got %d", resp.StatusCode)
	}
}

func TestAPIListAlerts_ReturnsStored(t *testing.T) {
	server, repo := newTestServer(t, "secret")

	saved, err := repo.SaveBatch(context.Background(), []*alert.Alert{{
		UUID:      "alert-1",
		Title:     "Explosion reported near port",
		Link:      "https://example.com/story",
		Source:    "example.com",
		Published: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Country:   "Lebanon",
	}})
	if err != nil || saved != 1 {
		t.Fatalf("Expected 1 alert saved, got %d (err: %v)", saved, err)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/alerts?country=Lebanon", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Expected request to complete, got: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count  int            `json:"count"`
		Alerts []*alert.Alert `json:"alerts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON body, got: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("Expected 1 alert, got %d", body.Count)
	}
	if body.Alerts[0].Country != "Lebanon" {
		t.Errorf("Expected country Lebanon, got %q", body.Alerts[0].Country)
	}
}
