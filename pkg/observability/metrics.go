package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the authority.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Login metrics
	LoginsTotal *prometheus.CounterVec

	// Ticket metrics
	TicketsIssuedTotal      *prometheus.CounterVec
	TicketValidationsTotal  *prometheus.CounterVec
	TicketsInvalidatedTotal prometheus.Counter
	TicketsReclaimedTotal   prometheus.Counter
	LiveTickets             prometheus.Gauge

	// Registry metrics
	RegistryOperationsTotal *prometheus.CounterVec
	RegisteredServices      prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatehouse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TicketsIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_tickets_issued_total",
				Help: "Total number of tickets issued by kind",
			},
			[]string{"kind"},
		),
		TicketValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_ticket_validations_total",
				Help: "Total number of service-ticket validations by status",
			},
			[]string{"status"},
		),
		TicketsInvalidatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_tickets_invalidated_total",
				Help: "Total number of explicit ticket invalidations",
			},
		),
		TicketsReclaimedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gatehouse_tickets_reclaimed_total",
				Help: "Total number of tickets removed by expiration sweeps",
			},
		),
		LiveTickets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gatehouse_live_tickets",
				Help: "Current number of live ticket records",
			},
		),
		RegistryOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_registry_operations_total",
				Help: "Total number of service-registry operations",
			},
			[]string{"operation", "status"},
		),
		RegisteredServices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gatehouse_registered_services",
				Help: "Current number of registered service definitions",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.TicketsIssuedTotal,
		m.TicketValidationsTotal,
		m.TicketsInvalidatedTotal,
		m.TicketsReclaimedTotal,
		m.LiveTickets,
		m.RegistryOperationsTotal,
		m.RegisteredServices,
	)
	return m
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordLogin records one login attempt. Successful attempts use "granted".
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordTicketIssued records one issued ticket by kind.
func (m *Metrics) RecordTicketIssued(kind string) {
	m.TicketsIssuedTotal.WithLabelValues(kind).Inc()
}

// RecordValidation records one service-ticket validation by status.
func (m *Metrics) RecordValidation(status string) {
	m.TicketValidationsTotal.WithLabelValues(status).Inc()
}

// RecordRegistryOperation records one service-registry operation.
func (m *Metrics) RecordRegistryOperation(operation, status string) {
	m.RegistryOperationsTotal.WithLabelValues(operation, status).Inc()
}

// Handler returns the HTTP handler serving this metric registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
