package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandler_AllComponentsHealthy(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return nil
	}))
	handler.RegisterChecker("kafka", NewSimpleChecker("kafka", func() error {
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Status != StatusHealthy {
		t.Errorf("overall status = %s, want %s", response.Status, StatusHealthy)
	}
	if response.Version != "1.2.0" {
		t.Errorf("version = %q, want %q", response.Version, "1.2.0")
	}
	if len(response.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(response.Checks))
	}
}

func TestHandler_UnhealthyStorageFailsOverall(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("kafka", NewSimpleChecker("kafka", func() error {
		return nil
	}))
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Status != StatusUnhealthy {
		t.Errorf("overall status = %s, want %s", response.Status, StatusUnhealthy)
	}
	if msg := response.Checks["postgres"].Message; msg != "connection refused" {
		t.Errorf("postgres check message = %q, want %q", msg, "connection refused")
	}
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	LivenessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", w.Body.String(), "ok")
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	handler.ReadinessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ready" {
		t.Errorf("body = %q, want %q", w.Body.String(), "ready")
	}
}

func TestReadinessHandler_NotReadyWhenStorageDown(t *testing.T) {
	handler := NewHandler("1.2.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("dial tcp: connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	handler.ReadinessHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if w.Body.String() != "not ready" {
		t.Errorf("body = %q, want %q", w.Body.String(), "not ready")
	}
}

func TestSimpleChecker_MeasuresDuration(t *testing.T) {
	checker := NewSimpleChecker("slow-component", func() error {
		time.Sleep(15 * time.Millisecond)
		return nil
	})

	check := checker.Check()

	if check.Status != StatusHealthy {
		t.Errorf("status = %s, want %s", check.Status, StatusHealthy)
	}
	if check.Name != "slow-component" {
		t.Errorf("name = %q, want %q", check.Name, "slow-component")
	}
	if check.DurationMs < 10 {
		t.Errorf("duration = %dms, want >= 10ms", check.DurationMs)
	}
}

func TestSimpleChecker_Error(t *testing.T) {
	checker := NewSimpleChecker("postgres", func() error {
		return errors.New("ping failed")
	})

	check := checker.Check()

	if check.Status != StatusUnhealthy {
		t.Errorf("status = %s, want %s", check.Status, StatusUnhealthy)
	}
	if check.Message != "ping failed" {
		t.Errorf("message = %q, want %q", check.Message, "ping failed")
	}
}
