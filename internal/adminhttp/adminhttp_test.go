package adminhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wparse/internal/routing"
)

func TestHealthHandlerReportsHealthyWithNoSampler(t *testing.T) {
	srv := NewServer(Deps{Stats: &routing.StatRecord{}, Version: "test"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("expected healthy status, got %v", body["status"])
	}
}

func TestStatsHandlerReportsAdmittedCounters(t *testing.T) {
	stats := &routing.StatRecord{}
	stats.IncOK()
	stats.IncMiss()
	srv := NewServer(Deps{Stats: stats, Version: "test"})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["admitted"].(float64) != 2 {
		t.Fatalf("expected admitted=2, got %v", body["admitted"])
	}
}
