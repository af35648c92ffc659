package observability

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckerWithoutDatabase(t *testing.T) {
	checker := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	checker.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}
