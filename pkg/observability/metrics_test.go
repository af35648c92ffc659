package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordHTTPRequest("GET", "/v1/services", 200, 5*time.Millisecond)
	m.RecordLogin("granted")
	m.RecordTicketIssued("granting")
	m.RecordValidation("success")
	m.RecordRegistryOperation("save", "ok")
	m.TicketsInvalidatedTotal.Inc()
	m.TicketsReclaimedTotal.Add(3)
	m.LiveTickets.Set(12)
	m.RegisteredServices.Set(2)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"gatehouse_http_requests_total",
		"gatehouse_logins_total",
		"gatehouse_tickets_issued_total",
		"gatehouse_ticket_validations_total",
		"gatehouse_tickets_invalidated_total",
		"gatehouse_tickets_reclaimed_total",
		"gatehouse_live_tickets",
		"gatehouse_registered_services",
		"gatehouse_registry_operations_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestNewMetricsNilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	if m == nil {
		t.Fatal("nil metrics")
	}
	// a second nil-registry construction must not collide
	_ = NewMetrics(nil)
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.RecordLogin("granted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "gatehouse_logins_total") {
		t.Error("exposition output missing gatehouse_logins_total")
	}
}
